// Package catalog holds the built-in defaults for every configuration field:
// content patterns, valid extensions, and prohibited file names and paths.
// It is pure data; callers receive copies and may modify them freely.
package catalog

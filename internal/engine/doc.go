// Package engine contains the core scanning logic for SecureGit. It checks a
// list of repository files for prohibited names, then scans the remaining
// text files line by line with the configured patterns and returns a
// structured verdict. This package is internal; external consumers should use
// the stable facade in pkg/core.
package engine

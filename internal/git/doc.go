// Package git discovers the repository around a directory and lists the
// files a scan should look at: staged additions and modifications for a
// pre-commit run, or every tracked file for a full-repository run.
package git

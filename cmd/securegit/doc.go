// Package securegit implements the securegit command line. The root command
// scans, so the installed binary can be run directly by git as a pre-commit
// hook; subcommands install the hook and manage configuration, baselines and
// the ignore file.
package securegit

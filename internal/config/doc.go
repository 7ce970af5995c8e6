// Package config resolves the effective configuration for a run: it probes
// repo-local and global config files, and merges the first one found into the
// built-in catalog with direct, "_exclude" and "_expand" keys.
package config

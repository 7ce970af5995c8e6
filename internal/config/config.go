package config

import (
	"fmt"

	"github.com/securegit/securegit/internal/catalog"
)

// Config is the effective configuration for one run. It is resolved once and
// then passed read-only to every component.
type Config struct {
	Enabled            bool      `yaml:"enabled" json:"enabled"`
	ScanEntireRepo     bool      `yaml:"scan_entire_repo" json:"scan_entire_repo"`
	ValidExtensions    []string  `yaml:"valid_extensions" json:"valid_extensions"`
	ProhibitedFiles    []string  `yaml:"prohibited_files" json:"prohibited_files"`
	ProhibitedPatterns []string  `yaml:"prohibited_patterns" json:"prohibited_patterns"`
	Patterns           []string  `yaml:"patterns" json:"patterns"`
	Allowlist          Allowlist `yaml:"allowlist" json:"allowlist"`
}

// Allowlist holds four independent suppression lists. Any one of them may
// suppress a finding.
type Allowlist struct {
	Files    []string `yaml:"files" json:"files"`
	Paths    []string `yaml:"paths" json:"paths"`
	Lines    []string `yaml:"lines" json:"lines"`
	Patterns []string `yaml:"patterns" json:"patterns"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Enabled:            true,
		ScanEntireRepo:     false,
		ValidExtensions:    catalog.ValidExtensions(),
		ProhibitedFiles:    catalog.ProhibitedFiles(),
		ProhibitedPatterns: catalog.ProhibitedPatterns(),
		Patterns:           catalog.Patterns(),
		Allowlist: Allowlist{
			Files:    []string{},
			Paths:    []string{},
			Lines:    []string{},
			Patterns: []string{},
		},
	}
}

// Document renders c as a generic mapping, the shape override documents are
// merged into.
func (c Config) Document() map[string]any {
	return map[string]any{
		"enabled":             c.Enabled,
		"scan_entire_repo":    c.ScanEntireRepo,
		"valid_extensions":    toList(c.ValidExtensions),
		"prohibited_files":    toList(c.ProhibitedFiles),
		"prohibited_patterns": toList(c.ProhibitedPatterns),
		"patterns":            toList(c.Patterns),
		"allowlist": map[string]any{
			"files":    toList(c.Allowlist.Files),
			"paths":    toList(c.Allowlist.Paths),
			"lines":    toList(c.Allowlist.Lines),
			"patterns": toList(c.Allowlist.Patterns),
		},
	}
}

func toList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// fileConfig is the decoded shape of a merged document. Pointer and nil
// slice fields mark values that are absent or null so they can fall back to
// the built-in default.
type fileConfig struct {
	Enabled            *bool          `yaml:"enabled"`
	ScanEntireRepo     *bool          `yaml:"scan_entire_repo"`
	ValidExtensions    []string       `yaml:"valid_extensions"`
	ProhibitedFiles    []string       `yaml:"prohibited_files"`
	ProhibitedPatterns []string       `yaml:"prohibited_patterns"`
	Patterns           []string       `yaml:"patterns"`
	Allowlist          *fileAllowlist `yaml:"allowlist"`
}

type fileAllowlist struct {
	Files    []string `yaml:"files"`
	Paths    []string `yaml:"paths"`
	Lines    []string `yaml:"lines"`
	Patterns []string `yaml:"patterns"`
}

// resolve fills every absent field from def.
func (fc fileConfig) resolve(def Config) Config {
	out := def
	if fc.Enabled != nil {
		out.Enabled = *fc.Enabled
	}
	if fc.ScanEntireRepo != nil {
		out.ScanEntireRepo = *fc.ScanEntireRepo
	}
	out.ValidExtensions = pickList(fc.ValidExtensions, def.ValidExtensions)
	out.ProhibitedFiles = pickList(fc.ProhibitedFiles, def.ProhibitedFiles)
	out.ProhibitedPatterns = pickList(fc.ProhibitedPatterns, def.ProhibitedPatterns)
	out.Patterns = pickList(fc.Patterns, def.Patterns)
	if fc.Allowlist != nil {
		out.Allowlist = Allowlist{
			Files:    pickList(fc.Allowlist.Files, def.Allowlist.Files),
			Paths:    pickList(fc.Allowlist.Paths, def.Allowlist.Paths),
			Lines:    pickList(fc.Allowlist.Lines, def.Allowlist.Lines),
			Patterns: pickList(fc.Allowlist.Patterns, def.Allowlist.Patterns),
		}
	}
	return out
}

func pickList(v, def []string) []string {
	if v == nil {
		return append([]string{}, def...)
	}
	return v
}

// ParseError reports a configuration file that exists but cannot be used.
// A run that hits it must stop before scanning.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// schemaDocument lists every key an override document may contain, including
// the list patch keys, so the generated schema can drive editor completion.
type schemaDocument struct {
	Enabled        *bool `json:"enabled,omitempty" jsonschema:"description=Run the pre-commit checks"`
	ScanEntireRepo *bool `json:"scan_entire_repo,omitempty" jsonschema:"description=Scan every tracked file instead of staged changes"`

	ValidExtensions        []string `json:"valid_extensions,omitempty" jsonschema:"description=File name suffixes eligible for content scanning"`
	ValidExtensionsExclude []string `json:"valid_extensions_exclude,omitempty"`
	ValidExtensionsExpand  []string `json:"valid_extensions_expand,omitempty"`

	ProhibitedFiles        []string `json:"prohibited_files,omitempty" jsonschema:"description=Exact base names that must never be committed"`
	ProhibitedFilesExclude []string `json:"prohibited_files_exclude,omitempty"`
	ProhibitedFilesExpand  []string `json:"prohibited_files_expand,omitempty"`

	ProhibitedPatterns        []string `json:"prohibited_patterns,omitempty" jsonschema:"description=Regular expressions matched from the start of the relative path"`
	ProhibitedPatternsExclude []string `json:"prohibited_patterns_exclude,omitempty"`
	ProhibitedPatternsExpand  []string `json:"prohibited_patterns_expand,omitempty"`

	Patterns        []string `json:"patterns,omitempty" jsonschema:"description=Content regular expressions; the first capture group is reported when present"`
	PatternsExclude []string `json:"patterns_exclude,omitempty"`
	PatternsExpand  []string `json:"patterns_expand,omitempty"`

	Allowlist *schemaAllowlist `json:"allowlist,omitempty" jsonschema:"description=Suppressions; replaces the default allowlist as a whole"`
}

type schemaAllowlist struct {
	Files    []string `json:"files,omitempty" jsonschema:"description=Exact relative paths"`
	Paths    []string `json:"paths,omitempty" jsonschema:"description=Path prefixes or regular expressions"`
	Lines    []string `json:"lines,omitempty" jsonschema:"description=path:line entries"`
	Patterns []string `json:"patterns,omitempty" jsonschema:"description=Regular expressions searched in matched text"`
}

// Schema returns the JSON schema of the config file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{AllowAdditionalProperties: true, DoNotReference: true}
	s := r.Reflect(&schemaDocument{})
	s.Title = "securegit configuration"
	return json.MarshalIndent(s, "", "  ")
}

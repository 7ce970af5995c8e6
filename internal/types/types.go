package types

import "sort"

// Finding describes a content pattern match at a path and line that was not
// suppressed by the allowlist.
type Finding struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Match   string `json:"match"`
	Pattern string `json:"pattern,omitempty"` // source of the content pattern that matched
}

// Reason explains why a file is prohibited.
type Reason string

const (
	ReasonName    Reason = "name"
	ReasonPattern Reason = "pattern"
)

// Message returns the human-readable explanation for a prohibited hit.
func (r Reason) Message() string {
	if r == ReasonPattern {
		return "File matches prohibited pattern"
	}
	return "File should not be committed"
}

// ProhibitedHit is a file that must not be committed regardless of content.
type ProhibitedHit struct {
	Path   string `json:"path"`
	Reason Reason `json:"reason"`
	Rule   string `json:"rule"` // the basename or pattern that matched
}

// WarningKind classifies recoverable problems encountered during a run.
type WarningKind string

const (
	WarnPatternCompile WarningKind = "pattern-compile"
	WarnFileRead       WarningKind = "file-read"
	WarnBinary         WarningKind = "binary"
	WarnTruncated      WarningKind = "truncated"
	// WarnPatternTimeout means a pattern gave up on a file, so matches in it
	// may be missing.
	WarnPatternTimeout WarningKind = "pattern-timeout"
)

// Warning is a non-fatal diagnostic. Path is set for per-file problems and
// Pattern for per-pattern problems.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Path    string      `json:"path,omitempty"`
	Pattern string      `json:"pattern,omitempty"`
	Message string      `json:"message"`
}

// Verdict is the outcome of one scan run.
type Verdict struct {
	Disabled     bool `json:"disabled,omitempty"`
	FilesScanned int  `json:"files_scanned"`
	// Ignored counts files dropped by the ignore file before any check.
	Ignored    int                  `json:"ignored,omitempty"`
	Prohibited []ProhibitedHit      `json:"prohibited,omitempty"`
	Findings   map[string][]Finding `json:"findings,omitempty"`
	Warnings   []Warning            `json:"warnings,omitempty"`
}

// Passed reports whether the run should let the commit through.
func (v Verdict) Passed() bool {
	return len(v.Prohibited) == 0 && v.FindingCount() == 0
}

// FindingCount returns the total number of findings across files.
func (v Verdict) FindingCount() int {
	n := 0
	for _, fs := range v.Findings {
		n += len(fs)
	}
	return n
}

// Paths returns the paths with findings in lexical order.
func (v Verdict) Paths() []string {
	out := make([]string, 0, len(v.Findings))
	for p := range v.Findings {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// AllFindings flattens findings ordered by path and then line.
func (v Verdict) AllFindings() []Finding {
	var out []Finding
	for _, p := range v.Paths() {
		out = append(out, v.Findings[p]...)
	}
	return out
}

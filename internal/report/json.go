package report

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/securegit/securegit/internal/types"
)

// JSONReport is the machine-readable form of a verdict.
type JSONReport struct {
	Passed       bool                  `json:"passed"`
	Disabled     bool                  `json:"disabled,omitempty"`
	FilesScanned int                   `json:"files_scanned"`
	Prohibited   []types.ProhibitedHit `json:"prohibited"`
	Findings     []JSONFinding         `json:"findings"`
	Warnings     []types.Warning       `json:"warnings"`
}

// JSONFinding adds the rule name to a finding.
type JSONFinding struct {
	types.Finding
	Rule string `json:"rule"`
}

// WriteJSON writes the verdict as a single indented JSON document. Lists
// are always present, possibly empty.
func WriteJSON(w io.Writer, v types.Verdict) error {
	out := JSONReport{
		Passed:       v.Passed(),
		Disabled:     v.Disabled,
		FilesScanned: v.FilesScanned,
		Prohibited:   append([]types.ProhibitedHit{}, v.Prohibited...),
		Findings:     []JSONFinding{},
		Warnings:     append([]types.Warning{}, v.Warnings...),
	}
	for _, f := range v.AllFindings() {
		out.Findings = append(out.Findings, JSONFinding{Finding: f, Rule: ruleName(f.Pattern)})
	}
	sort.SliceStable(out.Prohibited, func(i, j int) bool { return out.Prohibited[i].Path < out.Prohibited[j].Path })
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

package report

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/securegit/securegit/internal/types"
)

// BaselineFile is the default baseline path, relative to the repository root.
const BaselineFile = "securegit.baseline.json"

// Baseline records findings accepted at some point so later runs only fail
// on new ones. Prohibited files are never baselined.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// LoadBaseline reads path. A missing or malformed file yields an empty
// baseline and the error.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, err
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

// SaveBaseline writes every finding in v to path.
func SaveBaseline(path string, v types.Verdict) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range v.AllFindings() {
		b.Items[key(f)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0644)
}

// FilterNew returns v without the findings recorded in base.
func FilterNew(v types.Verdict, base Baseline) types.Verdict {
	if len(base.Items) == 0 || len(v.Findings) == 0 {
		return v
	}
	out := v
	out.Findings = map[string][]types.Finding{}
	for p, fs := range v.Findings {
		var kept []types.Finding
		for _, f := range fs {
			if !base.Items[key(f)] {
				kept = append(kept, f)
			}
		}
		if len(kept) > 0 {
			out.Findings[p] = kept
		}
	}
	return out
}

// Keys returns the baseline entries in lexical order.
func (b Baseline) Keys() []string {
	out := make([]string, 0, len(b.Items))
	for k := range b.Items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// key ignores the line number so edits above a finding keep it baselined.
func key(f types.Finding) string {
	return f.Path + "|" + f.Pattern + "|" + f.Match
}

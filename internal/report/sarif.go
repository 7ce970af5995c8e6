package report

import (
	"encoding/json"
	"io"

	semver "github.com/blang/semver/v4"
	"github.com/securegit/securegit/internal/types"
)

// ProhibitedRuleID is the SARIF rule reported for prohibited files.
const ProhibitedRuleID = "prohibited-file"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	SemanticVer    string      `json:"semanticVersion,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// WriteSARIF writes the verdict as SARIF 2.1.0. Matched values are left out
// of result messages so the log can be uploaded safely.
func WriteSARIF(w io.Writer, v types.Verdict, version string) error {
	ruleIndex := map[string]int{}
	var rules []sarifRule
	addRule := func(id, desc string) int {
		if i, ok := ruleIndex[id]; ok {
			return i
		}
		ruleIndex[id] = len(rules)
		rules = append(rules, sarifRule{ID: id, ShortDescription: sarifMessage{Text: desc}})
		return ruleIndex[id]
	}

	run := sarifRun{Results: []sarifResult{}}
	for _, h := range v.Prohibited {
		idx := addRule(ProhibitedRuleID, "File must not be committed")
		run.Results = append(run.Results, sarifResult{
			RuleID:    ProhibitedRuleID,
			RuleIndex: idx,
			Level:     "error",
			Message:   sarifMessage{Text: h.Reason.Message() + " (" + h.Rule + ")"},
			Locations: []sarifLoc{{PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: h.Path}}}},
		})
	}
	for _, f := range v.AllFindings() {
		id := ruleName(f.Pattern)
		idx := addRule(id, "Potential hardcoded secret")
		run.Results = append(run.Results, sarifResult{
			RuleID:    id,
			RuleIndex: idx,
			Level:     "error",
			Message:   sarifMessage{Text: "Potential hardcoded secret (" + id + ")"},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: f.Path},
					Region:           &sarifRegion{StartLine: f.Line},
				},
			}},
		})
	}
	if rules == nil {
		rules = []sarifRule{}
	}
	run.Tool = sarifTool{Driver: sarifDriver{Name: "securegit", Version: version, Rules: rules}}
	// semanticVersion must be strict semver; leave it out for dev builds
	if sv, err := semver.ParseTolerant(version); err == nil {
		run.Tool.Driver.SemanticVer = sv.String()
	}
	if len(v.Warnings) > 0 {
		counts := map[string]int{}
		for _, wr := range v.Warnings {
			counts[string(wr.Kind)]++
		}
		run.Properties = map[string]any{"warnings": counts}
	}

	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

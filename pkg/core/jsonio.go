package core

import (
	"encoding/json"
	"io"
)

// MarshalVerdict pretty-prints a verdict as JSON for humans or pipelines.
func MarshalVerdict(w io.Writer, v Verdict) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// UnmarshalVerdict decodes verdict JSON, useful for ingestion tests.
func UnmarshalVerdict(r io.Reader) (Verdict, error) {
	var v Verdict
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return Verdict{}, err
	}
	return v, nil
}

// Package audit appends one JSON line per scan run to a local log, so a
// repository keeps a record of blocked and passed commits. Matched values
// are never written.
package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/securegit/securegit/internal/types"
)

// FileName is the log's base name inside the git directory.
const FileName = "securegit_audit.jsonl"

const redacted = "[REDACTED]"

type ScanRecord struct {
	Timestamp      time.Time             `json:"timestamp"`
	ScanID         string                `json:"scan_id"`
	Root           string                `json:"root"`
	Repo           string                `json:"repo,omitempty"`
	Commit         string                `json:"commit,omitempty"`
	Branch         string                `json:"branch,omitempty"`
	Mode           string                `json:"mode"`
	ConfigSource   string                `json:"config_source,omitempty"`
	Passed         bool                  `json:"passed"`
	Disabled       bool                  `json:"disabled,omitempty"`
	FilesListed    int                   `json:"files_listed"`
	FilesScanned   int                   `json:"files_scanned"`
	TotalFindings  int                   `json:"total_findings"`
	NewFindings    int                   `json:"new_findings"`
	BaselinedCount int                   `json:"baselined_count"`
	Warnings       int                   `json:"warnings"`
	Duration       string                `json:"duration"`
	BaselineFile   string                `json:"baseline_file,omitempty"`
	Prohibited     []types.ProhibitedHit `json:"prohibited,omitempty"`
	Findings       []types.Finding       `json:"findings,omitempty"`
}

type AuditLog struct {
	logPath string
}

// NewAuditLog logs into gitDir. An empty gitDir falls back to a hidden file
// in root.
func NewAuditLog(root, gitDir string) *AuditLog {
	if gitDir != "" {
		if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
			return &AuditLog{logPath: filepath.Join(gitDir, FileName)}
		}
	}
	return &AuditLog{logPath: filepath.Join(root, "."+FileName)}
}

// Path returns the log file location.
func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns records newest first. Lines that do not decode are
// skipped.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var record ScanRecord
			if jerr := json.Unmarshal(line, &record); jerr == nil {
				records = append(records, record)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read audit log: %w", err)
		}
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = fmt.Sprintf("scan_%d", record.Timestamp.UnixNano())
	}

	// owner-only: records name files and rules even though values are redacted
	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// Run describes one scan for CreateScanRecord.
type Run struct {
	Root, Repo, Commit, Branch string
	EntireRepo                 bool
	ConfigSource               string
	FilesListed                int
	BaselineFile               string
	Duration                   time.Duration
}

// CreateScanRecord summarizes all (before baseline filtering) and reported
// (after) verdicts of one run.
func CreateScanRecord(run Run, all, reported types.Verdict) ScanRecord {
	mode := "staged"
	if run.EntireRepo {
		mode = "repository"
	}
	return ScanRecord{
		Timestamp:      time.Now().UTC(),
		Root:           run.Root,
		Repo:           run.Repo,
		Commit:         run.Commit,
		Branch:         run.Branch,
		Mode:           mode,
		ConfigSource:   run.ConfigSource,
		Passed:         reported.Passed(),
		Disabled:       reported.Disabled,
		FilesListed:    run.FilesListed,
		FilesScanned:   reported.FilesScanned,
		TotalFindings:  all.FindingCount(),
		NewFindings:    reported.FindingCount(),
		BaselinedCount: all.FindingCount() - reported.FindingCount(),
		Warnings:       len(reported.Warnings),
		Duration:       run.Duration.String(),
		BaselineFile:   run.BaselineFile,
		Prohibited:     reported.Prohibited,
		Findings:       redactSecrets(reported.AllFindings()),
	}
}

// redactSecrets returns a copy of findings with the matched text replaced.
func redactSecrets(findings []types.Finding) []types.Finding {
	out := make([]types.Finding, len(findings))
	for i, f := range findings {
		out[i] = f
		if f.Match != "" {
			out[i].Match = redacted
		}
	}
	return out
}

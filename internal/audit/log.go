package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/secscan/secscan/internal/report"
	"github.com/secscan/secscan/internal/types"
)

// PlainLogName is the log file used outside a git checkout.
const PlainLogName = ".secscan_audit.jsonl"

const (
	gitLogName = "secscan_audit.jsonl"
	topN       = 10
)

// ScanRecord summarizes one scan. It never carries raw line context.
type ScanRecord struct {
	Timestamp      time.Time        `json:"timestamp"`
	ScanID         string           `json:"scan_id"`
	Root           string           `json:"root"`
	TotalFindings  int              `json:"total_findings"`
	NewFindings    int              `json:"new_findings"`
	BaselinedCount int              `json:"baselined_count"`
	SeverityCounts map[string]int   `json:"severity_counts"`
	FilesScanned   int              `json:"files_scanned"`
	Duration       string           `json:"duration"`
	ErrorCount     int              `json:"error_count"`
	BaselineFile   string           `json:"baseline_file,omitempty"`
	TopFindings    []FindingSummary `json:"top_findings,omitempty"`
}

type FindingSummary struct {
	File     string `json:"file"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Line     int    `json:"line"`
	Match    string `json:"match"`
}

// Log appends scan records to a JSONL file.
type Log struct {
	path string
}

// New places the log inside .git when root is a git checkout so it is never
// committed by accident.
func New(root string) *Log {
	p := filepath.Join(root, PlainLogName)
	if st, err := os.Stat(filepath.Join(root, ".git")); err == nil && st.IsDir() {
		p = filepath.Join(root, ".git", gitLogName)
	}
	return &Log{path: p}
}

// Path returns the file backing the log.
func (l *Log) Path() string { return l.path }

// LoadHistory returns all records, newest first. A log that does not exist
// yet is empty. Records with mismatched field types are skipped; reading
// stops at the first malformed JSON, so a corrupt tail is not returned.
func (l *Log) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var r ScanRecord
		if err := dec.Decode(&r); err != nil {
			var syn *json.SyntaxError
			if errors.As(err, &syn) {
				break
			}
			continue
		}
		records = append(records, r)
	}
	slices.Reverse(records)
	return records, nil
}

// LogScan appends one record, assigning a scan ID when missing.
func (l *Log) LogScan(r ScanRecord) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if r.ScanID == "" {
		r.ScanID = fmt.Sprintf("scan_%d", r.Timestamp.UnixNano())
	}
	// owner-only: records name files and finding locations
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// DeleteRecord removes the record at index, counted newest first as
// returned by LoadHistory. The log is rewritten from the records
// LoadHistory returned, so a corrupt tail is dropped.
func (l *Log) DeleteRecord(index int) error {
	records, err := l.LoadHistory()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return fmt.Errorf("invalid index: %d", index)
	}
	records = slices.Delete(records, index, index+1)
	slices.Reverse(records)

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("rewrite audit log: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write audit record: %w", err)
		}
	}
	return nil
}

// CreateScanRecord builds a record from a finished scan. newFindings is the
// subset left after baseline filtering.
func CreateScanRecord(root string, res types.ScanResult, newFindings []types.Finding, baselineFile string) ScanRecord {
	counts := make(map[string]int)
	for sev, n := range report.CountBySeverity(res.Findings) {
		counts[string(sev)] = n
	}
	top := make([]FindingSummary, 0, topN)
	for _, f := range report.SortBySeverity(newFindings) {
		if len(top) == topN {
			break
		}
		top = append(top, FindingSummary{
			File:     f.File,
			Type:     f.RuleType,
			Severity: string(f.Severity),
			Line:     f.Line,
			Match:    f.Match,
		})
	}
	return ScanRecord{
		Timestamp:      time.Now(),
		Root:           root,
		TotalFindings:  len(res.Findings),
		NewFindings:    len(newFindings),
		BaselinedCount: len(res.Findings) - len(newFindings),
		SeverityCounts: counts,
		FilesScanned:   res.FilesScanned,
		Duration:       (time.Duration(res.DurationMillis) * time.Millisecond).String(),
		ErrorCount:     len(res.Errors),
		BaselineFile:   baselineFile,
		TopFindings:    top,
	}
}

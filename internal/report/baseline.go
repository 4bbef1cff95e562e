package report

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/secscan/secscan/internal/types"
)

// DefaultBaselineName is the baseline file kept next to the scanned tree.
const DefaultBaselineName = "secscan.baseline.json"

// BaselinePath returns the default baseline location inside dir.
func BaselinePath(dir string) string { return filepath.Join(dir, DefaultBaselineName) }

// Baseline records fingerprints of accepted findings.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// LoadBaseline reads a baseline file. A missing file yields an empty
// baseline and no error; malformed JSON is an error.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, err
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

// SaveBaseline writes the fingerprints of findings to path.
func SaveBaseline(path string, findings []types.Finding) error {
	b := Baseline{Items: make(map[string]bool, len(findings))}
	for _, f := range findings {
		b.Items[Fingerprint(f)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0o644)
}

// FilterNewFindings drops findings already present in base.
func FilterNewFindings(findings []types.Finding, base Baseline) []types.Finding {
	out := make([]types.Finding, 0, len(findings))
	for _, f := range findings {
		if !base.Items[Fingerprint(f)] {
			out = append(out, f)
		}
	}
	return out
}

// Fingerprint identifies a finding independent of its line and column, so
// entries survive unrelated edits above them.
func Fingerprint(f types.Finding) string {
	d := xxhash.New()
	for _, s := range []string{f.File, f.RuleType, f.Context, f.Match} {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

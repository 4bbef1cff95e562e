package report

import (
	"encoding/json"
	"io"

	"github.com/secscan/secscan/internal/types"
)

// WriteJSON encodes the scan result. pretty indents with two spaces.
func WriteJSON(w io.Writer, res types.ScanResult, pretty bool) error {
	if res.Findings == nil {
		res.Findings = []types.Finding{}
	}
	if res.Errors == nil {
		res.Errors = []string{}
	}
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

package types

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevLow      Severity = "low"
	SevMed      Severity = "medium"
	SevHigh     Severity = "high"
	SevCritical Severity = "critical"
)

// Rank orders severities from low (1) to critical (4). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SevLow:
		return 1
	case SevMed:
		return 2
	case SevHigh:
		return 3
	case SevCritical:
		return 4
	}
	return 0
}

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// Category separates leaked credentials from code-level vulnerability patterns.
type Category string

const (
	CategorySecret Category = "secret"
	CategorySAST   Category = "sast"
)

func (c Category) Valid() bool { return c == CategorySecret || c == CategorySAST }

// Finding is one reported match of a rule (or a high-entropy token) at a
// file, line and column. Match always holds the redacted form.
type Finding struct {
	RuleType    string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Category    Category `json:"category"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Match       string   `json:"match"`
	Context     string   `json:"context,omitempty"`
}

// FileContent is a file that passed discovery filtering, already read into
// memory and split into lines.
type FileContent struct {
	Path    string   `json:"path"`
	Content string   `json:"content"`
	Lines   []string `json:"lines"`
}

// ScanResult is the finished output of one scan invocation.
type ScanResult struct {
	Findings       []Finding `json:"findings"`
	FilesScanned   int       `json:"filesScanned"`
	DurationMillis int64     `json:"duration"`
	Errors         []string  `json:"errors"`
}

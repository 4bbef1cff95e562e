package core

import (
	"github.com/secscan/secscan/internal/detectors"
	"github.com/secscan/secscan/internal/engine"
	"github.com/secscan/secscan/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Config = engine.Config
type Finding = types.Finding
type Result = types.ScanResult
type Rule = detectors.Rule
type FileContent = types.FileContent

// DefaultConfig returns the settings the CLI uses when nothing is configured.
func DefaultConfig(root string) Config { return engine.DefaultConfig(root) }

// Scan walks cfg.Root and returns findings with run statistics.
func Scan(cfg Config) (Result, error) {
	return engine.ScanWithStats(cfg)
}

// ScanFiles scans in-memory files with the rule set cfg resolves to.
// cfg.Root and the discovery settings are ignored.
func ScanFiles(files []FileContent, cfg Config) (Result, error) {
	rules, err := engine.Rules(cfg)
	if err != nil {
		return Result{}, err
	}
	return engine.ScanFiles(files, rules, cfg)
}

// NewFile splits content into lines the way discovery does.
func NewFile(path, content string) FileContent { return engine.NewFileContent(path, content) }

// Rules returns the built-in rules followed by custom, after validation.
func Rules(custom []Rule) ([]Rule, error) { return detectors.Load(custom) }

// RuleIDs lists the built-in rule IDs.
func RuleIDs() []string { return detectors.IDs() }

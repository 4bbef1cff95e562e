package secscan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/secscan/secscan/internal/config"
	"github.com/secscan/secscan/internal/engine"
	"github.com/secscan/secscan/internal/types"
)

// resolvePath returns the absolute scan root and the directory that holds
// its config, baseline and audit files.
func resolvePath(args []string) (root, dir string, err error) {
	p := "."
	if len(args) > 0 {
		p = args[0]
	}
	root, err = filepath.Abs(p)
	if err != nil {
		return "", "", err
	}
	dir = root
	if st, err := os.Stat(root); err == nil && !st.IsDir() {
		dir = filepath.Dir(root)
	}
	return root, dir, nil
}

func val[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// engineConfig turns a resolved file config into scan settings.
func engineConfig(root string, fc config.FileConfig) (engine.Config, error) {
	timeout, err := fc.Timeout()
	if err != nil {
		return engine.Config{}, err
	}
	cfg := engine.DefaultConfig(root)
	cfg.Ignore = fc.Ignore
	cfg.CustomRules = fc.Rules()
	cfg.Enable = val(fc.Enable, "")
	cfg.Disable = val(fc.Disable, "")
	cfg.EnableEntropy = val(fc.EnableEntropy, cfg.EnableEntropy)
	cfg.EntropyThreshold = val(fc.EntropyThreshold, cfg.EntropyThreshold)
	cfg.EntropyMode = val(fc.EntropyMode, cfg.EntropyMode)
	cfg.Parallel = val(fc.Parallel, cfg.Parallel)
	cfg.Workers = val(fc.Workers, cfg.Workers)
	cfg.MaxBytes = val(fc.MaxBytes, cfg.MaxBytes)
	cfg.DefaultExcludes = val(fc.DefaultExcludes, cfg.DefaultExcludes)
	cfg.MatchTimeout = timeout

	switch cfg.EntropyMode {
	case engine.EntropyModeLine, engine.EntropyModeContext:
	default:
		return engine.Config{}, fmt.Errorf("invalid entropy mode %q (want line or context)", cfg.EntropyMode)
	}
	if cfg.EntropyThreshold <= 0 {
		return engine.Config{}, fmt.Errorf("entropy threshold must be positive, got %v", cfg.EntropyThreshold)
	}
	return cfg, nil
}

func parseCategory(s string) ([]types.Category, error) {
	switch c := types.Category(strings.ToLower(s)); {
	case s == "" || c == "all":
		return nil, nil
	case c.Valid():
		return []types.Category{c}, nil
	default:
		return nil, fmt.Errorf("invalid category %q (want secret, sast or all)", s)
	}
}

func validFailOn(s string) bool {
	return s == "none" || types.Severity(s).Valid()
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/secscan/secscan/internal/detectors"
	"github.com/secscan/secscan/internal/types"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by LoadLocal and LoadGlobal when no file exists.
var ErrNotFound = errors.New("config not found")

// LocalNames are the repo-local config files, in search order.
var LocalNames = []string{
	".secscanrc",
	".secscanrc.json",
	".secscanrc.yaml",
	".secscanrc.yml",
	".secscan.yml",
	".secscan.yaml",
}

// FileConfig is the on-disk configuration shape for secscan. Every field is
// optional; nil means "not set here".
type FileConfig struct {
	Ignore           []string        `yaml:"ignore,omitempty" json:"ignore,omitempty"`
	CustomPatterns   []PatternConfig `yaml:"customPatterns,omitempty" json:"customPatterns,omitempty"`
	EnableEntropy    *bool           `yaml:"enableEntropy,omitempty" json:"enableEntropy,omitempty"`
	EntropyThreshold *float64        `yaml:"entropyThreshold,omitempty" json:"entropyThreshold,omitempty"`
	EntropyMode      *string         `yaml:"entropyMode,omitempty" json:"entropyMode,omitempty"`
	OutputFormat     *string         `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`
	Parallel         *bool           `yaml:"parallel,omitempty" json:"parallel,omitempty"`
	Workers          *int            `yaml:"workers,omitempty" json:"workers,omitempty"`
	Enable           *string         `yaml:"enable,omitempty" json:"enable,omitempty"`
	Disable          *string         `yaml:"disable,omitempty" json:"disable,omitempty"`
	MaxBytes         *int64          `yaml:"maxBytes,omitempty" json:"maxBytes,omitempty"`
	FailOn           *string         `yaml:"failOn,omitempty" json:"failOn,omitempty"`
	MatchTimeout     *string         `yaml:"matchTimeout,omitempty" json:"matchTimeout,omitempty"`
	DefaultExcludes  *bool           `yaml:"defaultExcludes,omitempty" json:"defaultExcludes,omitempty"`
}

// PatternConfig is a user-defined rule as written in a config file.
type PatternConfig struct {
	ID          string   `yaml:"id" json:"id"`
	Description string   `yaml:"description" json:"description"`
	Regex       string   `yaml:"regex" json:"regex"`
	Flags       string   `yaml:"flags,omitempty" json:"flags,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Severity    string   `yaml:"severity" json:"severity"`
	Category    string   `yaml:"category,omitempty" json:"category,omitempty"`
}

// Rule converts the entry into a detection rule. Category defaults to
// secret and flags to "g". Validation happens in detectors.Load.
func (p PatternConfig) Rule() detectors.Rule {
	cat := types.Category(strings.ToLower(p.Category))
	if cat == "" {
		cat = types.CategorySecret
	}
	flags := p.Flags
	if flags == "" {
		flags = "g"
	}
	desc := p.Description
	if desc == "" {
		desc = p.ID
	}
	return detectors.Rule{
		ID:          p.ID,
		Description: desc,
		Category:    cat,
		Severity:    types.Severity(strings.ToLower(p.Severity)),
		Pattern:     p.Regex,
		Flags:       flags,
		Keywords:    p.Keywords,
	}
}

// Rules converts every custom pattern.
func (fc FileConfig) Rules() []detectors.Rule {
	out := make([]detectors.Rule, 0, len(fc.CustomPatterns))
	for _, p := range fc.CustomPatterns {
		out = append(out, p.Rule())
	}
	return out
}

// Timeout parses MatchTimeout. Unset or empty means no limit.
func (fc FileConfig) Timeout() (time.Duration, error) {
	if fc.MatchTimeout == nil || *fc.MatchTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*fc.MatchTimeout)
	if err != nil {
		return 0, fmt.Errorf("matchTimeout: %w", err)
	}
	return d, nil
}

// Defaults returns a FileConfig with every scalar populated.
func Defaults() FileConfig {
	return FileConfig{
		EnableEntropy:    ptr(false),
		EntropyThreshold: ptr(detectors.DefaultEntropyThreshold),
		EntropyMode:      ptr("line"),
		OutputFormat:     ptr("terminal"),
		Parallel:         ptr(true),
		Workers:          ptr(4),
		MaxBytes:         ptr(int64(1 << 20)),
		FailOn:           ptr("low"),
		DefaultExcludes:  ptr(true),
	}
}

func ptr[T any](v T) *T { return &v }

// Merge layers over on top of base. Scalars set in over win; ignore globs
// and custom patterns are concatenated, base first.
func Merge(base, over FileConfig) FileConfig {
	out := base
	out.Ignore = append(append([]string(nil), base.Ignore...), over.Ignore...)
	out.CustomPatterns = append(append([]PatternConfig(nil), base.CustomPatterns...), over.CustomPatterns...)
	pick(&out.EnableEntropy, over.EnableEntropy)
	pick(&out.EntropyThreshold, over.EntropyThreshold)
	pick(&out.EntropyMode, over.EntropyMode)
	pick(&out.OutputFormat, over.OutputFormat)
	pick(&out.Parallel, over.Parallel)
	pick(&out.Workers, over.Workers)
	pick(&out.Enable, over.Enable)
	pick(&out.Disable, over.Disable)
	pick(&out.MaxBytes, over.MaxBytes)
	pick(&out.FailOn, over.FailOn)
	pick(&out.MatchTimeout, over.MatchTimeout)
	pick(&out.DefaultExcludes, over.DefaultExcludes)
	return out
}

func pick[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

// LoadFile reads a config file. JSON is a subset of YAML, so one decoder
// serves both.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
// It returns the config and the path it came from.
func LoadLocal(repoRoot string) (FileConfig, string, error) {
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			cfg, err := LoadFile(p)
			return cfg, p, err
		}
	}
	return FileConfig{}, "", ErrNotFound
}

// GlobalPath returns the global config location under the XDG base
// directory or ~/.config.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", fmt.Errorf("%w: no config dir", ErrNotFound)
	}
	return filepath.Join(base, "secscan", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	p, err := GlobalPath()
	if err != nil {
		return FileConfig{}, err
	}
	if _, err := os.Stat(p); err != nil {
		return FileConfig{}, ErrNotFound
	}
	return LoadFile(p)
}

// Resolve returns Defaults merged with the global config and then the local
// config found in root. Missing files are skipped; malformed ones are errors.
func Resolve(root string) (FileConfig, error) {
	cfg := Defaults()
	if g, err := LoadGlobal(); err == nil {
		cfg = Merge(cfg, g)
	} else if !errors.Is(err, ErrNotFound) {
		return cfg, err
	}
	l, _, err := LoadLocal(root)
	switch {
	case err == nil:
		cfg = Merge(cfg, l)
	case !errors.Is(err, ErrNotFound):
		return cfg, err
	}
	return cfg, nil
}

// Starter is the config written by `secscan init`.
func Starter() FileConfig {
	cfg := Defaults()
	cfg.Ignore = []string{"test/**", "*.test.js"}
	cfg.CustomPatterns = []PatternConfig{{
		ID:          "internal-api-token",
		Description: "Internal API token",
		Regex:       `itk_[A-Za-z0-9]{32}`,
		Severity:    string(types.SevHigh),
		Category:    string(types.CategorySecret),
	}}
	return cfg
}

// WriteDefault writes the starter config to path as "json" or "yaml".
// An existing file is never overwritten.
func WriteDefault(path, format string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	var (
		b   []byte
		err error
	)
	switch format {
	case "json":
		b, err = json.MarshalIndent(Starter(), "", "  ")
		b = append(b, '\n')
	case "yaml", "yml":
		b, err = yaml.Marshal(Starter())
	default:
		return fmt.Errorf("unknown config format %q (want json or yaml)", format)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

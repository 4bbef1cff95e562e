package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/secscan/secscan/internal/detectors"
	"github.com/secscan/secscan/internal/types"
)

const (
	// EntropyModeLine reports every high-entropy token on any line.
	EntropyModeLine = "line"
	// EntropyModeContext only reports tokens on lines that mention a
	// sensitive keyword (see detectors.SensitiveKeywords).
	EntropyModeContext = "context"

	entropyRuleType = "high-entropy-string"
	mask            = "***"
)

// DetectOptions tunes a Detector beyond its rule set.
type DetectOptions struct {
	EntropyEnabled   bool
	EntropyThreshold float64
	EntropyMode      string
	// MatchTimeout bounds a single regex evaluation. Zero means no limit.
	MatchTimeout time.Duration
}

// Detector applies a fixed rule set to files. It compiles each rule on first
// use and keeps the result, so a Detector must not be shared between
// goroutines; give each worker its own.
type Detector struct {
	rules    []detectors.Rule
	opts     DetectOptions
	compiled []*regexp2.Regexp
	failed   []error
}

// NewDetector returns a Detector for rules. Rules are not compiled until the
// first call to Detect.
func NewDetector(rules []detectors.Rule, opts DetectOptions) *Detector {
	if opts.EntropyThreshold <= 0 {
		opts.EntropyThreshold = detectors.DefaultEntropyThreshold
	}
	if opts.EntropyMode == "" {
		opts.EntropyMode = EntropyModeLine
	}
	return &Detector{
		rules:    rules,
		opts:     opts,
		compiled: make([]*regexp2.Regexp, len(rules)),
		failed:   make([]error, len(rules)),
	}
}

// Detect is the one-shot form of NewDetector(...).Detect(file).
func Detect(file types.FileContent, rules []detectors.Rule, entropyEnabled bool, entropyThreshold float64) ([]types.Finding, error) {
	d := NewDetector(rules, DetectOptions{EntropyEnabled: entropyEnabled, EntropyThreshold: entropyThreshold})
	return d.Detect(file)
}

// Detect returns the deduplicated findings for file. A rule that fails to
// compile or times out is skipped and reported in the returned error while
// the other rules still contribute; callers should use the findings even
// when err is non-nil.
func (d *Detector) Detect(file types.FileContent) (out []types.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = Dedupe(out)
			err = errors.Join(err, fmt.Errorf("panic during detection: %v", r))
		}
	}()

	var errs []error
	for i, rule := range d.rules {
		re, cerr := d.regex(i)
		if cerr != nil {
			errs = append(errs, cerr)
			continue
		}
		found, merr := matchRule(rule, re, file)
		out = append(out, found...)
		if merr != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", rule.ID, merr))
		}
	}
	if d.opts.EntropyEnabled {
		out = append(out, d.entropyFindings(file)...)
	}
	return Dedupe(out), errors.Join(errs...)
}

func (d *Detector) regex(i int) (*regexp2.Regexp, error) {
	if d.compiled[i] != nil {
		return d.compiled[i], nil
	}
	if d.failed[i] != nil {
		return nil, d.failed[i]
	}
	re, err := d.rules[i].Compile()
	if err != nil {
		d.failed[i] = err
		return nil, err
	}
	if d.opts.MatchTimeout > 0 {
		re.MatchTimeout = d.opts.MatchTimeout
	}
	d.compiled[i] = re
	return re, nil
}

// matchRule walks every non-overlapping match of re on each line. Matches on
// lines that fail the rule's keyword gate are dropped.
func matchRule(rule detectors.Rule, re *regexp2.Regexp, file types.FileContent) ([]types.Finding, error) {
	var out []types.Finding
	for i, line := range file.Lines {
		m, err := re.FindStringMatch(line)
		if err != nil {
			return out, err
		}
		if m == nil {
			continue
		}
		gated := !rule.HasKeyword(line)
		context := strings.TrimSpace(line)
		for m != nil {
			if !gated {
				out = append(out, types.Finding{
					RuleType:    rule.ID,
					Description: rule.Description,
					Severity:    rule.Severity,
					Category:    rule.Category,
					File:        file.Path,
					Line:        i + 1,
					Column:      m.Index + 1,
					Match:       Obfuscate(m.String()),
					Context:     context,
				})
			}
			m, err = re.FindNextMatch(m)
			if err != nil {
				return out, err
			}
		}
	}
	return out, nil
}

func (d *Detector) entropyFindings(file types.FileContent) []types.Finding {
	var out []types.Finding
	for i, line := range file.Lines {
		toks := detectors.FindHighEntropyTokens(line, detectors.DefaultMinTokenLength, d.opts.EntropyThreshold)
		if len(toks) == 0 {
			continue
		}
		context := strings.TrimSpace(line)
		for _, tok := range toks {
			if d.opts.EntropyMode == EntropyModeContext &&
				!detectors.IsHighEntropySecret(tok.Value, line, d.opts.EntropyThreshold) {
				continue
			}
			out = append(out, types.Finding{
				RuleType:    entropyRuleType,
				Description: fmt.Sprintf("High Entropy String (%.2f)", tok.Entropy),
				Severity:    types.SevMed,
				Category:    types.CategorySecret,
				File:        file.Path,
				Line:        i + 1,
				Column:      tok.Index + 1,
				Match:       Obfuscate(tok.Value),
				Context:     context,
			})
		}
	}
	return out
}

// Obfuscate redacts a matched value for display. Values of eight code points
// or fewer become "***"; longer ones keep their first and last four code
// points around "***". The result never equals s.
func Obfuscate(s string) string {
	if utf8.RuneCountInString(s) <= 8 {
		return mask
	}
	r := []rune(s)
	out := string(r[:4]) + mask + string(r[len(r)-4:])
	if out == s {
		return mask
	}
	return out
}

// Dedupe keeps the first finding for each (file, line, rule type) and drops
// the rest, preserving order.
func Dedupe(fs []types.Finding) []types.Finding {
	if len(fs) == 0 {
		return fs
	}
	type key struct {
		file     string
		line     int
		ruleType string
	}
	seen := make(map[key]bool, len(fs))
	out := fs[:0:0]
	for _, f := range fs {
		k := key{f.File, f.Line, f.RuleType}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out
}

// SplitLines splits content on "\n" and drops one trailing "\r" from each
// line.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// NewFileContent builds the in-memory form of a file for detection.
func NewFileContent(path, content string) types.FileContent {
	return types.FileContent{Path: path, Content: content, Lines: SplitLines(content)}
}

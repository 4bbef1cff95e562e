package detectors

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/secscan/secscan/internal/types"
)

var (
	// ErrDuplicateRuleID is returned by Load when two rules share an ID.
	ErrDuplicateRuleID = errors.New("duplicate rule id")
	// ErrInvalidRule is returned by Load for a rule with missing or unknown fields.
	ErrInvalidRule = errors.New("invalid rule")
)

// Rule is a named detection definition. Pattern holds ECMAScript regex
// source and Flags its flag letters ("g", "i", "m"); matching is always
// global. When Keywords is non-empty, a match only counts if one of the
// keywords appears (case-insensitively) on the same line.
type Rule struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Category    types.Category `json:"category"`
	Severity    types.Severity `json:"severity"`
	Pattern     string         `json:"regex"`
	Flags       string         `json:"flags,omitempty"`
	Keywords    []string       `json:"keywords,omitempty"`
}

// Compile builds a fresh regexp2 matcher for the rule. Each caller gets its
// own instance; nothing is cached on the Rule itself.
func (r Rule) Compile() (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	for _, f := range r.Flags {
		switch f {
		case 'g':
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		default:
			return nil, fmt.Errorf("rule %s: unsupported regex flag %q", r.ID, f)
		}
	}
	re, err := regexp2.Compile(r.Pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", r.ID, err)
	}
	return re, nil
}

// HasKeyword reports whether line satisfies the rule's keyword gate.
// Rules without keywords always pass.
func (r Rule) HasKeyword(line string) bool {
	if len(r.Keywords) == 0 {
		return true
	}
	lower := strings.ToLower(line)
	for _, k := range r.Keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// SecretRules returns a copy of the built-in secret catalog.
func SecretRules() []Rule { return slices.Clone(secretRules) }

// SASTRules returns a copy of the built-in vulnerability catalog.
func SASTRules() []Rule { return slices.Clone(sastRules) }

// Load returns the built-in secret rules, then the built-in SAST rules, then
// custom, in that order. The shared catalog is never modified. Regex syntax
// is not checked here; a broken pattern fails when it is first applied.
func Load(custom []Rule) ([]Rule, error) {
	out := make([]Rule, 0, len(secretRules)+len(sastRules)+len(custom))
	out = append(out, secretRules...)
	out = append(out, sastRules...)
	out = append(out, custom...)
	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func validate(rules []Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("%w: empty id (description %q)", ErrInvalidRule, r.Description)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateRuleID, r.ID)
		}
		seen[r.ID] = true
		if !r.Severity.Valid() {
			return fmt.Errorf("%w: %s: unknown severity %q", ErrInvalidRule, r.ID, r.Severity)
		}
		if !r.Category.Valid() {
			return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidRule, r.ID, r.Category)
		}
		if r.Pattern == "" {
			return fmt.Errorf("%w: %s: empty regex", ErrInvalidRule, r.ID)
		}
	}
	return nil
}

// ByCategory returns the rules in category cat, preserving order.
func ByCategory(rules []Rule, cat types.Category) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.Category == cat {
			out = append(out, r)
		}
	}
	return out
}

// BySeverity returns the rules with severity sev, preserving order.
func BySeverity(rules []Rule, sev types.Severity) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.Severity == sev {
			out = append(out, r)
		}
	}
	return out
}

// ByID returns the first rule with the given id.
func ByID(rules []Rule, id string) (Rule, bool) {
	for _, r := range rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Select applies comma-separated enable/disable ID lists. An empty enable
// list keeps everything; disable is subtracted last.
func Select(rules []Rule, enable, disable string) []Rule {
	if enable == "" && disable == "" {
		return rules
	}
	allowed := splitIDs(enable)
	blocked := splitIDs(disable)
	var out []Rule
	for _, r := range rules {
		if enable != "" && !allowed[r.ID] {
			continue
		}
		if blocked[r.ID] {
			continue
		}
		out = append(out, r)
	}
	return out
}

func splitIDs(s string) map[string]bool {
	m := map[string]bool{}
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			m[id] = true
		}
	}
	return m
}

// IDs lists the built-in rule IDs in catalog order.
func IDs() []string {
	ids := make([]string, 0, len(secretRules)+len(sastRules))
	for _, r := range secretRules {
		ids = append(ids, r.ID)
	}
	for _, r := range sastRules {
		ids = append(ids, r.ID)
	}
	return ids
}

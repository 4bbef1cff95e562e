package detectors

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultEntropyThreshold is the bits-per-character cutoff used when the
	// caller does not set one.
	DefaultEntropyThreshold = 4.5
	// DefaultMinTokenLength is the shortest candidate considered by
	// FindHighEntropyTokens.
	DefaultMinTokenLength = 20

	maxTokenLength = 200
)

// SensitiveKeywords gate IsHighEntropySecret. Matched case-insensitively.
var SensitiveKeywords = []string{
	"api", "key", "secret", "token", "password", "passwd", "pwd", "auth", "credential", "private",
}

var (
	reQuotedToken = regexp.MustCompile("['\"`]([a-zA-Z0-9_\\-/+=]{20,})['\"`]")
	reBareToken   = regexp.MustCompile(`\b([a-zA-Z0-9_\-/+=]{32,})\b`)

	reUUID   = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	reHex64  = regexp.MustCompile(`(?i)^[a-f0-9]{64}$`)
	reHex32  = regexp.MustCompile(`(?i)^[a-f0-9]{32}$`)
	tokenRes = []*regexp.Regexp{reQuotedToken, reBareToken}
)

// EntropyToken is a candidate substring that cleared the threshold.
// Index is the code-point offset of the start of the whole match, which for
// quoted candidates is the opening quote.
type EntropyToken struct {
	Value   string
	Entropy float64
	Index   int
}

// ShannonEntropy returns the Shannon entropy of s in bits per character,
// computed over code points. The empty string and single-symbol strings
// score 0.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	count := map[rune]int{}
	n := 0
	for _, r := range s {
		count[r]++
		n++
	}
	H := 0.0
	for _, c := range count {
		p := float64(c) / float64(n)
		H -= p * math.Log2(p)
	}
	return H
}

// HasHighEntropy reports whether s scores at or above threshold.
func HasHighEntropy(s string, threshold float64) bool {
	return ShannonEntropy(s) >= threshold
}

// FindHighEntropyTokens runs the quoted and bare-token passes over line and
// returns every candidate of at least minLength code points whose entropy
// reaches threshold and which is not a known false positive. The two passes
// are independent, so a token can be reported once by each.
func FindHighEntropyTokens(line string, minLength int, threshold float64) []EntropyToken {
	var out []EntropyToken
	for _, re := range tokenRes {
		for _, loc := range re.FindAllStringSubmatchIndex(line, -1) {
			value := line[loc[2]:loc[3]]
			if utf8.RuneCountInString(value) < minLength {
				continue
			}
			e := ShannonEntropy(value)
			if e < threshold || IsFalsePositive(value) {
				continue
			}
			out = append(out, EntropyToken{
				Value:   value,
				Entropy: e,
				Index:   utf8.RuneCountInString(line[:loc[0]]),
			})
		}
	}
	return out
}

// IsFalsePositive filters high-entropy strings that are almost never
// credentials: UUIDs, MD5/SHA-256 hex digests, data URIs, very long blobs and
// runs of one repeated character.
func IsFalsePositive(s string) bool {
	switch {
	case reUUID.MatchString(s), reHex64.MatchString(s), reHex32.MatchString(s):
		return true
	case strings.HasPrefix(s, "data:"):
		return true
	case utf8.RuneCountInString(s) > maxTokenLength:
		return true
	}
	return repeatedRune(s)
}

func repeatedRune(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 || size == len(s) {
		return false
	}
	for _, r := range s[size:] {
		if r != first {
			return false
		}
	}
	return true
}

// IsHighEntropySecret reports whether value clears threshold and context
// mentions one of SensitiveKeywords.
func IsHighEntropySecret(value, context string, threshold float64) bool {
	if !HasHighEntropy(value, threshold) {
		return false
	}
	lower := strings.ToLower(context)
	for _, k := range SensitiveKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

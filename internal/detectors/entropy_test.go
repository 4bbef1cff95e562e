package detectors

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const randomToken = "kJ8h3nP9xL2vQ4wR7tY6uI5oP1aS3d"

func TestShannonEntropy(t *testing.T) {
	assert.Equal(t, 0.0, ShannonEntropy(""))
	assert.Equal(t, 0.0, ShannonEntropy("a"))
	assert.Equal(t, 0.0, ShannonEntropy("aaaaaaaaaa"))
	assert.InDelta(t, 1.0, ShannonEntropy("abab"), 1e-9)
	assert.InDelta(t, 2.0, ShannonEntropy("abcd"), 1e-9)
	assert.Greater(t, ShannonEntropy(randomToken), 4.5)

	e := ShannonEntropy("password123")
	assert.Greater(t, e, 2.0)
	assert.Less(t, e, 4.0)
}

func TestShannonEntropy_PermutationInvariant(t *testing.T) {
	s := "abcAbc123==//"
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	assert.InDelta(t, ShannonEntropy(s), ShannonEntropy(string(r)), 1e-12)
}

func TestShannonEntropy_CountsRunes(t *testing.T) {
	// two distinct symbols, four bytes each side
	assert.InDelta(t, 1.0, ShannonEntropy("éé✓✓"), 1e-9)
	assert.False(t, math.IsNaN(ShannonEntropy("\xff\xfe")))
}

func TestHasHighEntropy(t *testing.T) {
	assert.True(t, HasHighEntropy(randomToken, DefaultEntropyThreshold))
	assert.False(t, HasHighEntropy("password", DefaultEntropyThreshold))
	assert.True(t, HasHighEntropy("abc123", 2.0))
}

func TestFindHighEntropyTokens(t *testing.T) {
	line := `The secret is "` + randomToken + `" in the config`
	toks := FindHighEntropyTokens(line, DefaultMinTokenLength, DefaultEntropyThreshold)
	require.NotEmpty(t, toks)
	assert.Equal(t, randomToken, toks[0].Value)
	assert.Greater(t, toks[0].Entropy, 4.5)
	// index points at the opening quote
	assert.Equal(t, strings.Index(line, `"`), toks[0].Index)

	assert.Empty(t, FindHighEntropyTokens("This is just normal text with no secrets", 20, 4.5))

	multi := `key1="kJ8h3nP9xL2vQ4wR7tY6uI5oP" key2="mN4bV9cX1zQ5wE8rT2yU6iO1pA"`
	assert.GreaterOrEqual(t, len(FindHighEntropyTokens(multi, 20, 4.5)), 2)
}

func TestFindHighEntropyTokens_RuneIndex(t *testing.T) {
	line := `ü = "` + randomToken + `"`
	toks := FindHighEntropyTokens(line, 20, 4.5)
	require.Len(t, toks, 1)
	assert.Equal(t, 4, toks[0].Index)
}

func TestFindHighEntropyTokens_MinLength(t *testing.T) {
	line := `x = "` + randomToken + `"`
	assert.Empty(t, FindHighEntropyTokens(line, 40, 4.5))
	assert.NotEmpty(t, FindHighEntropyTokens(line, 20, 4.5))
}

func TestFindHighEntropyTokens_FalsePositives(t *testing.T) {
	lines := []string{
		`id = "123e4567-e89b-12d3-a456-426614174000"`,
		`sum = "d41d8cd98f00b204e9800998ecf8427e"`,
		`sha = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"`,
	}
	for _, l := range lines {
		assert.Empty(t, FindHighEntropyTokens(l, 20, 3.0), l)
	}
}

func TestIsFalsePositive(t *testing.T) {
	assert.True(t, IsFalsePositive("123E4567-E89B-12D3-A456-426614174000"))
	assert.True(t, IsFalsePositive("data:image/png;base64,AAAA"))
	assert.True(t, IsFalsePositive(strings.Repeat("x", 30)))
	assert.True(t, IsFalsePositive(strings.Repeat("ab", 101)))
	assert.False(t, IsFalsePositive(randomToken))
	assert.False(t, IsFalsePositive("a"))
}

func TestIsHighEntropySecret(t *testing.T) {
	assert.True(t, IsHighEntropySecret(randomToken, `API_TOKEN="`+randomToken+`"`, 4.5))
	assert.False(t, IsHighEntropySecret(randomToken, `greeting="`+randomToken+`"`, 4.5))
	assert.False(t, IsHighEntropySecret("password", "password", 4.5))
}

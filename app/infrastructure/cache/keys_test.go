package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_DeterministicAcrossMapOrder(t *testing.T) {
	first := map[string]any{
		"city":      "lisbon",
		"min_price": 100000,
		"bedrooms":  2,
		"sort":      "price_asc",
	}
	second := map[string]any{
		"sort":      "price_asc",
		"bedrooms":  2,
		"min_price": 100000,
		"city":      "lisbon",
	}

	fpFirst, err := Fingerprint(first)
	require.NoError(t, err)
	fpSecond, err := Fingerprint(second)
	require.NoError(t, err)

	assert.Equal(t, fpFirst, fpSecond)
	assert.Len(t, fpFirst, 16)
}

func TestFingerprint_NestedValuesAffectResult(t *testing.T) {
	base := map[string]any{"filters": map[string]any{"city": "porto"}}
	other := map[string]any{"filters": map[string]any{"city": "braga"}}

	fpBase, err := Fingerprint(base)
	require.NoError(t, err)
	fpOther, err := Fingerprint(other)
	require.NoError(t, err)

	assert.NotEqual(t, fpBase, fpOther)
}

func TestFingerprint_Nil(t *testing.T) {
	fp, err := Fingerprint(nil)
	require.NoError(t, err)
	assert.Len(t, fp, 16)
}

func TestMatchesPattern_DelimiterBoundary(t *testing.T) {
	cases := []struct {
		pattern string
		key     string
		matches bool
	}{
		{"a:b:*", "a:b:c", true},
		{"a:b:*", "a:b:c:d", true},
		{"a:b:*", "a:bc:x", false},
		{"a:b:*", "a:b", false},
		{"a:b:*", "a:b:", false},
		{"v1:listings:detail:*", "v1:listings:detail:l-1", true},
		{"v1:listings:detail:*", "v1:listings:detailed:l-1", false},
		{"v1:listings:detail:l-1", "v1:listings:detail:l-1", true},
		{"v1:listings:detail:l-1", "v1:listings:detail:l-2", false},
		{"*", "anything", true},
	}

	for _, tc := range cases {
		matches, err := MatchesPattern(tc.pattern, tc.key)
		require.NoError(t, err, "pattern %s key %s", tc.pattern, tc.key)
		assert.Equal(t, tc.matches, matches, "pattern %s key %s", tc.pattern, tc.key)
	}
}

func TestMatchesPattern_RejectsUnsupportedGlobs(t *testing.T) {
	for _, pattern := range []string{"a:*:c", "*:b", "a:b*", "a*b"} {
		_, err := MatchesPattern(pattern, "a:b:c")
		assert.ErrorIs(t, err, ErrBadPattern, "pattern %s", pattern)
	}
}

func TestKeyPatterns(t *testing.T) {
	patterns := KeyPatterns("v1:listings:search:abcd1234")
	assert.Equal(t, []string{"v1:*", "v1:listings:*", "v1:listings:search:*"}, patterns)

	assert.Nil(t, KeyPatterns("flat"))
}

func TestKeyBuilders(t *testing.T) {
	fp, err := Fingerprint(map[string]any{"city": "faro"})
	require.NoError(t, err)
	assert.Equal(t, "v1:listings:search:"+fp, SearchKey(fp))

	detail := DetailKey("listing/1")
	assert.Contains(t, detail, "v1:listings:detail:")
	// Raw ids are sanitized, so path separators never leak into key segments.
	assert.NotContains(t, detail, "/")
}

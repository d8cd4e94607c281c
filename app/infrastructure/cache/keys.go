package cache

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrBadPattern is returned for glob patterns the cache does not support.
// Only exact keys and trailing-* prefix patterns (`seg:seg:*`) are valid.
var ErrBadPattern = errors.New("cache: unsupported key pattern")

func SearchKey(fingerprint string) string {
	return fmt.Sprintf(SearchCacheKeyPattern, fingerprint)
}

func DetailKey(id string) string {
	return fmt.Sprintf(DetailCacheKeyPattern, SanitizeKeyPart(id))
}

func ImagesKey(id string) string {
	return fmt.Sprintf(ImagesCacheKeyPattern, SanitizeKeyPart(id))
}

func RecordKey(id string) string {
	return fmt.Sprintf(RecordCacheKeyPattern, SanitizeKeyPart(id))
}

func PrecomputedKey(endpoint string) string {
	return fmt.Sprintf(PrecomputedKeyPattern, endpoint)
}

// SanitizeKeyPart encodes dynamic key parts to be Redis-key safe
func SanitizeKeyPart(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

// Fingerprint derives a deterministic 16-hex-char digest from a query shape.
// Maps are serialized with sorted keys so two logically identical filters
// produce the same key regardless of field order.
func Fingerprint(v any) (string, error) {
	canonical, err := canonicalize(v)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize fingerprint input: %w", err)
	}
	hash := sha256.Sum256(canonical)
	return hex.EncodeToString(hash[:8]), nil
}

func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')
		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, '}'), nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}
		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	return append(result, ']'), nil
}

// PatternPrefix validates a pattern and splits it into its literal prefix.
// A pattern is either an exact key (wildcard=false) or `<segments>:*`;
// mid-pattern wildcards and wildcards not on a `:` boundary are rejected.
func PatternPrefix(pattern string) (prefix string, wildcard bool, err error) {
	idx := strings.IndexByte(pattern, '*')
	if idx == -1 {
		return pattern, false, nil
	}
	if idx != len(pattern)-1 {
		return "", false, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	prefix = pattern[:idx]
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		return "", false, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	return prefix, true, nil
}

// MatchesPattern reports whether key falls under pattern. Prefix patterns
// match on the `:` delimiter boundary: `a:b:*` matches `a:b:c` but never
// `a:bc:x`, and never the bare prefix itself.
func MatchesPattern(pattern, key string) (bool, error) {
	prefix, wildcard, err := PatternPrefix(pattern)
	if err != nil {
		return false, err
	}
	if !wildcard {
		return key == pattern, nil
	}
	return len(key) > len(prefix) && strings.HasPrefix(key, prefix), nil
}

// KeyPatterns lists the prefix patterns a key belongs to, shallowest first:
// `v1:listings:search:abc` -> [`v1:*`, `v1:listings:*`, `v1:listings:search:*`].
// These are the index sets the key is registered under on Set.
func KeyPatterns(key string) []string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return nil
	}
	patterns := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		patterns = append(patterns, strings.Join(parts[:i], ":")+":*")
	}
	return patterns
}

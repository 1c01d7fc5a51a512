package query

import (
	"net/url"
	"strings"
)

// Param is one raw query-string pair. Unlike url.Values, a []Param keeps the
// order keys appeared in, which the filter compiler relies on: predicate
// order and multi-value collapse both follow first occurrence.
type Param struct {
	Key   string
	Value string
}

// ParseParams decodes a raw query string into ordered pairs. Bracketed keys
// like fields[product] arrive percent-encoded or literal, both are accepted.
func ParseParams(rawQuery string) ([]Param, error) {
	if rawQuery == "" {
		return nil, nil
	}
	parts := strings.Split(rawQuery, "&")
	params := make([]Param, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			return nil, err
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Key: decodedKey, Value: decodedValue})
	}
	return params, nil
}

// First returns the first value for key and whether it was present.
func First(params []Param, key string) (string, bool) {
	for _, p := range params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// All returns every value for key, in order.
func All(params []Param, key string) []string {
	var values []string
	for _, p := range params {
		if p.Key == key {
			values = append(values, p.Value)
		}
	}
	return values
}

// bracketArg extracts X from keys of the form prefix[X]. Returns "" when the
// key does not match the shape.
func bracketArg(key, prefix string) string {
	if !strings.HasPrefix(key, prefix+"[") || !strings.HasSuffix(key, "]") {
		return ""
	}
	return strings.TrimSpace(key[len(prefix)+1 : len(key)-1])
}

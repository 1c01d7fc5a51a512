package engine

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// foldRows turns positionally-keyed flat rows into nested objects following
// the dotted result keys: "brand.name" lands in row["brand"]["name"]. To-one
// relations whose columns are all NULL (no joined row) collapse to nil, the
// shape the original serializer produced for absent relations.
func foldRows(raw [][]any, keys []string, tree []*joinNode) []map[string]any {
	items := make([]map[string]any, 0, len(raw))
	for _, vals := range raw {
		n := len(vals)
		if len(keys) < n {
			n = len(keys)
		}
		obj := make(map[string]any, n)
		for i := 0; i < n; i++ {
			setNested(obj, keys[i], normalizeValue(vals[i]))
		}
		nullifyAbsent(obj, tree)
		items = append(items, obj)
	}
	return items
}

// setNested writes a dotted key into nested maps, creating levels on demand.
func setNested(obj map[string]any, key string, val any) {
	parts := strings.Split(key, ".")
	m := obj
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = val
}

// nullifyAbsent replaces to-one objects whose every column came back NULL
// with an explicit nil, recursing bottom-up so empty grandchildren collapse
// before their parents are judged.
func nullifyAbsent(obj map[string]any, nodes []*joinNode) {
	for _, node := range nodes {
		if node.rel.ToMany() {
			continue
		}
		child, ok := obj[node.name].(map[string]any)
		if !ok {
			continue
		}
		nullifyAbsent(child, node.children)
		if allNil(child) {
			obj[node.name] = nil
		}
	}
}

func allNil(m map[string]any) bool {
	for _, v := range m {
		if v != nil {
			return false
		}
	}
	return true
}

// stripHidden removes the __pk/__fk bookkeeping keys from a result set,
// descending into nested objects and collections.
func stripHidden(items []map[string]any) {
	for _, item := range items {
		stripHiddenObject(item)
	}
}

func stripHiddenObject(obj map[string]any) {
	delete(obj, hiddenPK)
	delete(obj, hiddenFK)
	for _, v := range obj {
		switch val := v.(type) {
		case map[string]any:
			stripHiddenObject(val)
		case []map[string]any:
			for _, child := range val {
				stripHiddenObject(child)
			}
		}
	}
}

// normalizeValue maps driver-level values onto JSON-friendly ones: uuid
// bytes become canonical strings, numerics become their decimal string (the
// original API serialized Decimal as str).
func normalizeValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.Numeric:
		if dv, err := val.Value(); err == nil {
			return dv
		}
		return nil
	default:
		return v
	}
}

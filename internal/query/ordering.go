package query

import (
	"strings"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// OrderDirective is one sort key: a validated field path and a direction.
type OrderDirective struct {
	Relations []string
	Field     string
	Desc      bool
}

// String renders the signed dotted form used in metadata ("-created_at",
// "brand.name").
func (d OrderDirective) String() string {
	parts := append(append([]string{}, d.Relations...), d.Field)
	s := strings.Join(parts, ".")
	if d.Desc {
		return "-" + s
	}
	return s
}

// ResolveOrdering parses the comma-separated ordering parameter. A leading
// '-' marks descending; paths use the same hop notation as joins/filters and
// are validated against the entity graph. Input order is preserved (primary
// sort key first); traversed relations are reported as implicit joins.
func ResolveOrdering(base *schema.Entity, rawOrderingParam string) ([]OrderDirective, []JoinPath, error) {
	entries := splitList(rawOrderingParam)
	if len(entries) == 0 {
		return nil, nil, nil
	}

	directives := make([]OrderDirective, 0, len(entries))
	implicit := make([]JoinPath, 0)
	implicitSeen := make(map[string]bool)

	for _, entry := range entries {
		desc := strings.HasPrefix(entry, "-")
		lookup := strings.TrimPrefix(entry, "-")

		tokens := schema.SplitPath(lookup)
		if len(tokens) == 0 {
			continue
		}
		relations := tokens[:len(tokens)-1]
		field := tokens[len(tokens)-1]

		current := base
		for _, hop := range relations {
			rel := current.GetRelation(hop)
			if rel == nil {
				return nil, nil, validationErrorf(ErrInvalidOrderingPath,
					"La ruta de ordenamiento '%s' no es válida: la relación '%s' no existe en %s", entry, hop, current.Name)
			}
			current = rel.Target()
		}
		if !current.Fields.Has(field) {
			return nil, nil, validationErrorf(ErrInvalidOrderingPath,
				"La ruta de ordenamiento '%s' no es válida: el modelo %s no posee el campo '%s'", entry, current.Name, field)
		}

		directives = append(directives, OrderDirective{Relations: relations, Field: field, Desc: desc})

		if len(relations) > 0 {
			path := JoinPath{Hops: relations, Implicit: true}
			if !implicitSeen[path.Key()] {
				implicitSeen[path.Key()] = true
				implicit = append(implicit, path)
			}
		}
	}

	return directives, implicit, nil
}

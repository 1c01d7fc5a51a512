package query

import (
	"fmt"
	"strings"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// JoinPath is a normalized hop sequence rooted at the request's base entity.
// Implicit paths come from filters/ordering: the engine joins them but they
// do not shape the response and are not valid projection targets.
type JoinPath struct {
	Hops     []string
	Implicit bool
}

// String renders the canonical dotted form used in metadata.
func (p JoinPath) String() string {
	return strings.Join(p.Hops, ".")
}

// Key is the structural identity of the path (hop sequence only).
func (p JoinPath) Key() string {
	return strings.Join(p.Hops, ".")
}

// walkRelations walks hops from base, requiring every hop to be a declared
// relation. Returns the entity at the end of the path.
func walkRelations(base *schema.Entity, hops []string) (*schema.Entity, error) {
	current := base
	for _, hop := range hops {
		rel := current.GetRelation(hop)
		if rel == nil {
			return nil, fmt.Errorf("la relación '%s' no existe en %s", hop, current.Name)
		}
		current = rel.Target()
	}
	return current, nil
}

// ResolveJoins parses and validates the comma-separated join parameter:
// normalization of '.'/'__' notation, hop-by-hop graph walk, depth limit,
// whitelist membership on the full path, and first-occurrence dedupe.
func ResolveJoins(base *schema.Entity, rawJoinParam string) ([]JoinPath, []string, error) {
	entries := splitList(rawJoinParam)
	if len(entries) == 0 {
		return nil, nil, nil
	}

	if len(base.AllowedJoins) == 0 {
		return nil, nil, validationErrorf(ErrJoinNotWhitelisted,
			"No hay joins habilitados para este recurso")
	}
	whitelist := make(map[string]bool, len(base.AllowedJoins))
	for _, raw := range base.AllowedJoins {
		whitelist[strings.Join(schema.SplitPath(raw), ".")] = true
	}

	joins := make([]JoinPath, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	var warnings []string

	for _, entry := range entries {
		hops := schema.SplitPath(entry)
		if len(hops) == 0 {
			continue
		}

		if len(hops) > schema.MaxJoinDepth {
			return nil, nil, validationErrorf(ErrJoinDepthExceeded,
				"La ruta '%s' supera la profundidad máxima de %d relaciones", entry, schema.MaxJoinDepth)
		}

		if _, err := walkRelations(base, hops); err != nil {
			return nil, nil, validationErrorf(ErrInvalidJoinPath,
				"La ruta de join '%s' no es válida: %s", entry, err.Error())
		}

		path := JoinPath{Hops: hops}
		if !whitelist[path.Key()] {
			return nil, nil, validationErrorf(ErrJoinNotWhitelisted,
				"La ruta de join '%s' no está permitida para este recurso", entry)
		}

		if seen[path.Key()] {
			warnings = append(warnings, fmt.Sprintf("join redundante ignorado: '%s'", path.Key()))
			continue
		}
		seen[path.Key()] = true
		joins = append(joins, path)
	}

	return joins, warnings, nil
}

// ReachableEntities lists the base entity plus every entity visited by the
// explicit joins, preserving first-seen order for metadata reporting.
func ReachableEntities(base *schema.Entity, joins []JoinPath) []*schema.Entity {
	ordered := []*schema.Entity{base}
	seen := map[string]bool{base.Name: true}
	for _, join := range joins {
		if join.Implicit {
			continue
		}
		current := base
		for _, hop := range join.Hops {
			rel := current.GetRelation(hop)
			if rel == nil {
				break
			}
			current = rel.Target()
			if !seen[current.Name] {
				seen[current.Name] = true
				ordered = append(ordered, current)
			}
		}
	}
	return ordered
}

// splitList splits a comma-separated parameter, dropping empty items.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			items = append(items, p)
		}
	}
	return items
}

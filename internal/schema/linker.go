package schema

import (
	"fmt"
	"strings"
)

// LinkRelations resolves relation targets by name and assigns fk/pk defaults.
// Must run after LoadEntitiesFromDir and before the registry is published.
func LinkRelations() error {
	for entityName, entity := range Registry {
		for relName, rel := range entity.Relations {
			target, ok := Registry[rel.Entity]
			if !ok {
				return fmt.Errorf("invalid relation: entity '%s' not found in '%s.%s'", rel.Entity, entityName, relName)
			}
			rel.SetTarget(target)

			switch rel.Type {
			case "belongs_to":
				// FK lives on the current entity and points at the target
				if rel.FK == "" {
					rel.FK = relName + "_id"
				}
			case "has_one", "has_many":
				// FK lives on the target entity and points back at us
				if rel.FK == "" {
					rel.FK = entityName + "_id"
				}
			default:
				return fmt.Errorf("relation '%s.%s' must have valid type (has_many, has_one, belongs_to), got '%s'", entityName, relName, rel.Type)
			}

			if rel.PK == "" {
				rel.PK = "id"
			}
		}
	}
	return nil
}

// ValidateWhitelists checks every allowed_joins entry: each hop must be a
// declared relation and the path must respect MaxJoinDepth. A broken
// whitelist is a configuration bug, so startup fails.
func ValidateWhitelists() error {
	for entityName, entity := range Registry {
		for _, raw := range entity.AllowedJoins {
			hops := SplitPath(raw)
			if len(hops) == 0 {
				return fmt.Errorf("empty join path in whitelist of '%s'", entityName)
			}
			if len(hops) > MaxJoinDepth {
				return fmt.Errorf("whitelist path '%s' of '%s' exceeds max depth %d", raw, entityName, MaxJoinDepth)
			}
			current := entity
			for _, hop := range hops {
				rel := current.GetRelation(hop)
				if rel == nil {
					return fmt.Errorf("whitelist path '%s' of '%s': '%s' is not a relation of '%s'", raw, entityName, hop, current.Name)
				}
				current = rel.Target()
			}
		}
	}
	return nil
}

// SplitPath normalizes dotted or double-underscore notation into hops.
// "order_items.order" and "order_items__order" resolve identically.
func SplitPath(raw string) []string {
	normalized := strings.ReplaceAll(raw, ".", "__")
	parts := strings.Split(normalized, "__")
	hops := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			hops = append(hops, p)
		}
	}
	return hops
}

package query

import (
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// AllFields is the sentinel reported in metadata for entities whose
// projection was not narrowed by a fields[...] parameter.
const AllFields = "*"

// FieldSelection maps entity names to the validated field lists requested
// for them. A nil list means "all fields". Entities keeps insertion order
// (base first, then join order) for metadata reporting.
type FieldSelection struct {
	Entities []string
	Fields   map[string][]string
}

// IsAll reports whether the entity keeps its full field set.
func (s *FieldSelection) IsAll(entity string) bool {
	return s.Fields[entity] == nil
}

// For returns the requested fields for an entity, nil meaning all.
func (s *FieldSelection) For(entity string) []string {
	return s.Fields[entity]
}

// ResolveFields validates fields[entity]=a,b parameters against the base
// entity and the entities reachable through the resolved joins.
func ResolveFields(base *schema.Entity, joins []JoinPath, params []Param) (*FieldSelection, error) {
	reachable := ReachableEntities(base, joins)
	byName := make(map[string]*schema.Entity, len(reachable))
	selection := &FieldSelection{
		Entities: make([]string, 0, len(reachable)),
		Fields:   make(map[string][]string, len(reachable)),
	}
	for _, e := range reachable {
		byName[e.Name] = e
		selection.Entities = append(selection.Entities, e.Name)
	}

	for _, p := range params {
		label := bracketArg(p.Key, "fields")
		if label == "" {
			continue
		}

		entity, ok := byName[label]
		if !ok {
			return nil, validationErrorf(ErrUnknownEntityInProjection,
				"El modelo '%s' no participa en la consulta; no se pueden limitar sus campos", label)
		}

		fields := selection.Fields[entity.Name]
		for _, item := range splitList(p.Value) {
			if !entity.Fields.Has(item) {
				return nil, validationErrorf(ErrInvalidField,
					"El modelo %s no posee un campo llamado '%s'", entity.Name, item)
			}
			fields = append(fields, item)
		}
		if len(fields) > 0 {
			selection.Fields[entity.Name] = fields
		}
	}

	return selection, nil
}

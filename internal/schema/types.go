package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldType is the semantic type tag of an entity field. Filter values are
// cast against it before any query is built.
type FieldType string

const (
	TypeString     FieldType = "string"
	TypeText       FieldType = "text"
	TypeInteger    FieldType = "integer"
	TypeDecimal    FieldType = "decimal"
	TypeBoolean    FieldType = "boolean"
	TypeDateTime   FieldType = "datetime"
	TypeDate       FieldType = "date"
	TypeIdentifier FieldType = "identifier"
)

// MaxJoinDepth caps the number of relation hops a client may traverse.
const MaxJoinDepth = 3

// Entity describes one resource in configuration: its table, fields,
// relations and the whitelist of join paths clients may request.
type Entity struct {
	Name         string               `yaml:"-"` // logical name, lowercase
	Resource     string               `yaml:"resource"` // URL path segment, e.g. "order-items"
	Table        string               `yaml:"table"`
	Fields       FieldSet             `yaml:"fields"`
	Relations    map[string]*Relation `yaml:"relations"`
	AllowedJoins []string             `yaml:"allowed_joins"` // dotted paths rooted at this entity
	PrimaryKey   string               `yaml:"primary_key"`   // optional, defaults to "id"
}

// Relation describes a link between two entities in configuration.
type Relation struct {
	Type   string `yaml:"type"`   // has_one, has_many, belongs_to
	Entity string `yaml:"entity"` // logical name of the target entity
	FK     string `yaml:"fk"`     // foreign key column, defaulted by the linker
	PK     string `yaml:"pk"`     // referenced key, defaults to "id"

	// runtime only
	ref *Entity
}

// FieldSet keeps the declared fields of an entity together with their
// declaration order. "*" projections serialize fields in this order.
type FieldSet struct {
	Types map[string]FieldType
	Order []string
}

func (fs *FieldSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("fields must be a mapping of name to type")
	}
	fs.Types = make(map[string]FieldType, len(node.Content)/2)
	fs.Order = make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		typ := FieldType(node.Content[i+1].Value)
		if _, dup := fs.Types[name]; dup {
			return fmt.Errorf("duplicate field '%s'", name)
		}
		fs.Types[name] = typ
		fs.Order = append(fs.Order, name)
	}
	return nil
}

// Has reports whether the field is declared on the entity.
func (fs *FieldSet) Has(name string) bool {
	_, ok := fs.Types[name]
	return ok
}

// TypeOf returns the semantic type of a declared field.
func (fs *FieldSet) TypeOf(name string) (FieldType, bool) {
	t, ok := fs.Types[name]
	return t, ok
}

// GetPrimaryKey returns the primary key column, "id" when not configured.
func (e *Entity) GetPrimaryKey() string {
	if e.PrimaryKey != "" {
		return e.PrimaryKey
	}
	return "id"
}

// GetRelation returns the declared relation or nil.
func (e *Entity) GetRelation(name string) *Relation {
	if e == nil || e.Relations == nil {
		return nil
	}
	return e.Relations[name]
}

// Target returns the linked target entity (set by LinkRelations).
func (r *Relation) Target() *Entity {
	return r.ref
}

// SetTarget is called from the linker once all entities are loaded.
func (r *Relation) SetTarget(e *Entity) {
	r.ref = e
}

// ToMany reports whether the relation produces a collection.
func (r *Relation) ToMany() bool {
	return r.Type == "has_many"
}

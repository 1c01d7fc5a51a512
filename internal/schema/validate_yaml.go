package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

var allowedEntityKeys = map[string]bool{
	"resource":      true,
	"table":         true,
	"fields":        true,
	"relations":     true,
	"allowed_joins": true,
	"primary_key":   true,
}

var allowedRelationKeys = map[string]bool{
	"type":   true,
	"entity": true,
	"fk":     true,
	"pk":     true,
}

var allowedFieldTypeValues = map[string]bool{
	"string":     true,
	"text":       true,
	"integer":    true,
	"decimal":    true,
	"boolean":    true,
	"datetime":   true,
	"date":       true,
	"identifier": true,
}

var allowedRelationTypeValues = map[string]bool{
	"belongs_to": true,
	"has_one":    true,
	"has_many":   true,
}

// validateYAMLNode walks the parsed descriptor structurally before decoding,
// so a typo in a key or type tag fails startup with a precise message instead
// of silently producing an empty entity.
func validateYAMLNode(node *yaml.Node, context string) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := validateYAMLNode(child, "entity"); err != nil {
				return err
			}
		}

	case yaml.MappingNode:
		var allowedKeys map[string]bool
		switch context {
		case "entity":
			allowedKeys = allowedEntityKeys
		case "relation":
			allowedKeys = allowedRelationKeys
		default:
			allowedKeys = nil // free form (fields mapping)
		}

		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value

			if allowedKeys != nil && !allowedKeys[key] {
				return fmt.Errorf("unknown key '%s' in %s", key, context)
			}

			if context == "fields" {
				if !allowedFieldTypeValues[valNode.Value] {
					return fmt.Errorf("unknown field type '%s' for field '%s'", valNode.Value, key)
				}
			}
			if context == "relation" && key == "type" {
				if !allowedRelationTypeValues[valNode.Value] {
					return fmt.Errorf("unknown relation type '%s'", valNode.Value)
				}
			}

			nextContext := context
			if context == "entity" && key == "relations" {
				nextContext = "relations-map"
			} else if context == "relations-map" {
				nextContext = "relation"
			} else if context == "entity" && key == "fields" {
				nextContext = "fields"
			} else if context == "entity" && key == "allowed_joins" {
				nextContext = "joins-seq"
			}

			if err := validateYAMLNode(valNode, nextContext); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		for _, item := range node.Content {
			if err := validateYAMLNode(item, context); err != nil {
				return err
			}
		}

	case yaml.ScalarNode:
		// scalars are validated in their enclosing mapping
	}

	return nil
}

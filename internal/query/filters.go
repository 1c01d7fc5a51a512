package query

import (
	"fmt"
	"strings"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// Operator is the comparison applied by a FilterPredicate.
type Operator string

const (
	OpEq       Operator = "eq"
	OpIn       Operator = "in"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
	OpIsNull   Operator = "isnull"
)

var operatorSuffixes = map[string]Operator{
	"eq":       OpEq,
	"in":       OpIn,
	"gt":       OpGt,
	"gte":      OpGte,
	"lt":       OpLt,
	"lte":      OpLte,
	"contains": OpContains,
	"isnull":   OpIsNull,
}

// FilterPredicate is one typed condition: a relation chain ending in a field,
// an operator and a value already cast to the field's declared type.
// For OpIn the value is []any in first-seen order.
type FilterPredicate struct {
	Relations []string
	Field     string
	FieldType schema.FieldType
	Operator  Operator
	Value     any

	explicitOp bool
}

// PathKey is the dotted field path without the operator ("brand.name").
func (f *FilterPredicate) PathKey() string {
	if len(f.Relations) == 0 {
		return f.Field
	}
	return strings.Join(f.Relations, ".") + "." + f.Field
}

// MetaKey renders the lookup for metadata in double-underscore notation,
// keeping the operator suffix for anything other than eq ("qty__gt").
func (f *FilterPredicate) MetaKey() string {
	parts := append(append([]string{}, f.Relations...), f.Field)
	key := strings.Join(parts, "__")
	if f.Operator != OpEq {
		key += "__" + string(f.Operator)
	}
	return key
}

// ResolveFilters compiles filter[path]=value parameters into an ordered list
// of typed predicates. The path reuses the join hop-walk but is not required
// to be whitelisted: relations it traverses are returned as implicit joins
// the engine must still apply. Repeated eq keys collapse into a single OpIn
// predicate; repeated explicit non-eq keys keep the last value and warn.
func ResolveFilters(base *schema.Entity, params []Param) ([]*FilterPredicate, []JoinPath, []string, error) {
	var (
		predicates []*FilterPredicate
		warnings   []string
	)
	index := make(map[string]*FilterPredicate)

	implicit := make([]JoinPath, 0)
	implicitSeen := make(map[string]bool)

	for _, p := range params {
		lookup := bracketArg(p.Key, "filter")
		if lookup == "" {
			continue
		}

		relations, field, fieldType, op, explicitOp, err := resolveFilterLookup(base, lookup)
		if err != nil {
			return nil, nil, nil, err
		}

		value, err := castFilterValue(p.Value, fieldType, op)
		if err != nil {
			return nil, nil, nil, validationErrorf(ErrInvalidFilterValue,
				"El valor '%s' no es válido para el campo '%s': %s", p.Value, field, err.Error())
		}

		groupKey := strings.Join(append(append([]string{}, relations...), field), ".") + "|" + string(op)
		if existing, ok := index[groupKey]; ok {
			switch {
			case op == OpEq:
				// repeated equality on the same path collapses to set membership
				if existing.Operator == OpEq {
					existing.Operator = OpIn
					existing.Value = []any{existing.Value}
				}
				existing.Value = append(existing.Value.([]any), value)
			case op == OpIn:
				existing.Value = append(existing.Value.([]any), value.([]any)...)
			default:
				// documented assumption: explicit non-eq repeats keep the last value
				existing.Value = value
				warnings = append(warnings, fmt.Sprintf(
					"filtro '%s' repetido: se conserva el último valor", lookup))
			}
			continue
		}

		pred := &FilterPredicate{
			Relations:  relations,
			Field:      field,
			FieldType:  fieldType,
			Operator:   op,
			Value:      value,
			explicitOp: explicitOp,
		}
		index[groupKey] = pred
		predicates = append(predicates, pred)

		if len(relations) > 0 {
			path := JoinPath{Hops: relations, Implicit: true}
			if !implicitSeen[path.Key()] {
				implicitSeen[path.Key()] = true
				implicit = append(implicit, path)
			}
		}
	}

	return predicates, implicit, warnings, nil
}

// resolveFilterLookup splits "order_items__qty__gt" into the relation chain,
// the terminal field with its declared type, and the operator. The trailing
// token is matched against the operator set before defaulting to eq.
func resolveFilterLookup(base *schema.Entity, lookup string) (relations []string, field string, fieldType schema.FieldType, op Operator, explicitOp bool, err error) {
	tokens := schema.SplitPath(lookup)
	if len(tokens) == 0 {
		return nil, "", "", "", false, validationErrorf(ErrInvalidField,
			"El parámetro de filtro no puede estar vacío")
	}

	op = OpEq
	if len(tokens) > 1 {
		if suffixOp, ok := operatorSuffixes[tokens[len(tokens)-1]]; ok {
			op = suffixOp
			explicitOp = true
			tokens = tokens[:len(tokens)-1]
		}
	}

	relations = tokens[:len(tokens)-1]
	field = tokens[len(tokens)-1]

	current := base
	for _, hop := range relations {
		rel := current.GetRelation(hop)
		if rel == nil {
			return nil, "", "", "", false, validationErrorf(ErrInvalidJoinPath,
				"El modelo %s no posee la relación '%s' en el lookup '%s'", current.Name, hop, lookup)
		}
		current = rel.Target()
	}

	fieldType, ok := current.Fields.TypeOf(field)
	if !ok {
		return nil, "", "", "", false, validationErrorf(ErrInvalidField,
			"El modelo %s no posee el atributo '%s' en el lookup '%s'", current.Name, field, lookup)
	}
	return relations, field, fieldType, op, explicitOp, nil
}

// castFilterValue applies the operator-aware cast: isnull takes a boolean,
// contains keeps the raw substring, in wraps the typed value in a list.
func castFilterValue(raw string, fieldType schema.FieldType, op Operator) (any, error) {
	switch op {
	case OpIsNull:
		return CastBool(raw)
	case OpContains:
		return raw, nil
	case OpIn:
		v, err := CastValue(raw, fieldType)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	default:
		return CastValue(raw, fieldType)
	}
}

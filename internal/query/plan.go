package query

import (
	"fmt"
	"strings"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// Plan is the immutable declarative description of one request: which entity,
// which joins, which projections, which filters, which ordering. Built once
// per request by pure functions and handed to the data engine for execution.
type Plan struct {
	Base        *schema.Entity
	Joins       []JoinPath // explicit first, then implicit (deduplicated)
	Projections *FieldSelection
	Filters     []*FilterPredicate
	Ordering    []OrderDirective
	Distinct    bool
}

// ExplicitJoins returns the joins requested through the join parameter.
// Only these shape the response body and the projection targets.
func (p *Plan) ExplicitJoins() []JoinPath {
	out := make([]JoinPath, 0, len(p.Joins))
	for _, j := range p.Joins {
		if !j.Implicit {
			out = append(out, j)
		}
	}
	return out
}

// AssemblePlan merges the per-component results into a Plan. Implicit joins
// discovered by the filter compiler and ordering validator are appended after
// the explicit set, deduplicated structurally, so the engine applies them
// even when absent from the join parameter.
func AssemblePlan(
	base *schema.Entity,
	joins []JoinPath,
	projections *FieldSelection,
	filters []*FilterPredicate,
	ordering []OrderDirective,
	implicit []JoinPath,
	rawDistinct string,
) *Plan {
	merged := make([]JoinPath, 0, len(joins)+len(implicit))
	seen := make(map[string]bool, len(joins)+len(implicit))
	for _, j := range joins {
		if !seen[j.Key()] {
			seen[j.Key()] = true
			merged = append(merged, j)
		}
	}
	for _, j := range implicit {
		// every prefix of an implicit path needs its own join
		for i := 1; i <= len(j.Hops); i++ {
			prefix := JoinPath{Hops: j.Hops[:i], Implicit: true}
			if !seen[prefix.Key()] {
				seen[prefix.Key()] = true
				merged = append(merged, prefix)
			}
		}
	}

	return &Plan{
		Base:        base,
		Joins:       merged,
		Projections: projections,
		Filters:     filters,
		Ordering:    ordering,
		Distinct:    parseDistinct(rawDistinct),
	}
}

// parseDistinct interprets distinct=true style values. Membership in the
// affirmative set enables it, anything else leaves it off (original
// behavior, never an error).
func parseDistinct(raw string) bool {
	if raw == "" {
		return false
	}
	v, err := CastBool(raw)
	if err != nil {
		return false
	}
	return v
}

// BuildPlan runs the full pipeline over the raw request parameters:
// joins → projections → filters → ordering → assembly. Returns the plan and
// the non-fatal warnings gathered along the way.
func BuildPlan(base *schema.Entity, params []Param) (*Plan, []string, error) {
	// join may repeat; occurrences concatenate in request order
	rawJoin := strings.Join(All(params, "join"), ",")

	joins, warnings, err := ResolveJoins(base, rawJoin)
	if err != nil {
		return nil, nil, err
	}

	projections, err := ResolveFields(base, joins, params)
	if err != nil {
		return nil, nil, err
	}

	filters, filterJoins, filterWarnings, err := ResolveFilters(base, params)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, filterWarnings...)

	rawOrdering, _ := First(params, "ordering")
	ordering, orderingJoins, err := ResolveOrdering(base, rawOrdering)
	if err != nil {
		return nil, nil, err
	}

	implicit := append(append([]JoinPath{}, filterJoins...), orderingJoins...)
	rawDistinct, _ := First(params, "distinct")

	plan := AssemblePlan(base, joins, projections, filters, ordering, implicit, rawDistinct)

	explicitKeys := make(map[string]bool, len(joins))
	for _, j := range joins {
		explicitKeys[j.Key()] = true
	}
	for _, j := range plan.Joins {
		if j.Implicit && !explicitKeys[j.Key()] {
			warnings = append(warnings, fmt.Sprintf("join implícito aplicado: '%s'", j.Key()))
		}
	}

	return plan, warnings, nil
}

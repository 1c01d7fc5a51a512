package engine

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/query"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// Hidden column keys used for folding and tail loading; stripped from rows
// before the response is assembled.
const (
	hiddenPK = "__pk"
	hiddenFK = "__fk"
)

// buildRootQuery builds the page SELECT for a plan: base table plus LEFT
// JOINs for every to-one output path and every filter/ordering path, the
// projected columns of the base and its to-one subtree, WHERE, ORDER BY and
// LIMIT/OFFSET. Collection relations are loaded separately (see tails).
// Returns the builder and the positional result keys for scanning.
func buildRootQuery(plan *query.Plan, tree []*joinNode, page Page) (squirrel.SelectBuilder, []string, error) {
	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar)
	sb = sb.From(fmt.Sprintf("%s AS main", plan.Base.Table))

	am := newAliasMap(plan.Base)
	if err := addOutputPaths(am, tree, nil); err != nil {
		return sb, nil, err
	}
	if err := addConditionPaths(am, plan); err != nil {
		return sb, nil, err
	}

	exprs, keys := projectionColumns(plan, tree, am)
	sb = sb.Columns(exprs...)

	for _, join := range am.specs {
		sb = sb.LeftJoin(fmt.Sprintf("%s AS %s ON %s", join.Table, join.Alias, join.On))
	}

	where, err := buildWhereClause(plan.Filters, am)
	if err != nil {
		return sb, nil, err
	}
	if where != nil {
		sb = sb.Where(where)
	}

	// a collection join repeats base rows once per matching child; the page
	// must collapse them or it disagrees with the collapsed count
	if plan.Distinct || am.hasToMany() {
		sb = sb.Distinct()
	}

	for _, directive := range plan.Ordering {
		path := strings.Join(directive.Relations, ".")
		alias, ok := am.alias(path)
		if !ok {
			return sb, nil, fmt.Errorf("no alias for ordering path '%s'", path)
		}
		expr := fmt.Sprintf("%s.%s", alias, directive.Field)
		if directive.Desc {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		sb = sb.OrderBy(expr)
	}

	if page.Size > 0 {
		sb = sb.Limit(page.Size).Offset(page.Offset())
	}

	return sb, keys, nil
}

// buildCountQuery builds the total-count SELECT with the same filter joins.
// A collection join duplicates root rows, so the count collapses on the
// primary key then.
func buildCountQuery(plan *query.Plan) (squirrel.SelectBuilder, error) {
	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar)
	sb = sb.From(fmt.Sprintf("%s AS main", plan.Base.Table))

	am := newAliasMap(plan.Base)
	if err := addConditionPaths(am, plan); err != nil {
		return sb, err
	}

	for _, join := range am.specs {
		sb = sb.LeftJoin(fmt.Sprintf("%s AS %s ON %s", join.Table, join.Alias, join.On))
	}

	if am.hasToMany() {
		sb = sb.Column(fmt.Sprintf("COUNT(DISTINCT main.%s)", plan.Base.GetPrimaryKey()))
	} else {
		sb = sb.Column("COUNT(*)")
	}

	where, err := buildWhereClause(plan.Filters, am)
	if err != nil {
		return sb, err
	}
	if where != nil {
		sb = sb.Where(where)
	}
	return sb, nil
}

// buildTailQuery builds the child SELECT for one collection relation: the
// child entity's projected columns plus its own to-one subtree, restricted
// to the given parent keys. The FK is always selected so children can be
// grouped back onto their parents.
func buildTailQuery(node *joinNode, sel *query.FieldSelection, parentIDs []any) (squirrel.SelectBuilder, []string, error) {
	sb := squirrel.SelectBuilder{}.PlaceholderFormat(squirrel.Dollar)
	sb = sb.From(fmt.Sprintf("%s AS main", node.entity.Table))

	am := newAliasMap(node.entity)
	if err := addOutputPaths(am, node.children, nil); err != nil {
		return sb, nil, err
	}

	exprs := make([]string, 0, 8)
	keys := make([]string, 0, 8)
	appendEntityColumns(&exprs, &keys, node.entity, sel, "main", "")
	exprs = append(exprs, fmt.Sprintf("main.%s", node.rel.FK))
	keys = append(keys, hiddenFK)
	if node.hasToManyChild() {
		exprs = append(exprs, fmt.Sprintf("main.%s", node.entity.GetPrimaryKey()))
		keys = append(keys, hiddenPK)
	}
	appendSubtreeColumns(&exprs, &keys, node.children, sel, am, nil)
	sb = sb.Columns(exprs...)

	for _, join := range am.specs {
		sb = sb.LeftJoin(fmt.Sprintf("%s AS %s ON %s", join.Table, join.Alias, join.On))
	}

	sb = sb.Where(squirrel.Eq{fmt.Sprintf("main.%s", node.rel.FK): parentIDs})
	sb = sb.OrderBy(fmt.Sprintf("main.%s ASC", node.entity.GetPrimaryKey()))

	return sb, keys, nil
}

// addOutputPaths registers aliases for the to-one part of the join tree.
// Descent stops at collection relations: those run as separate tail queries.
func addOutputPaths(am *aliasMap, nodes []*joinNode, prefix []string) error {
	for _, node := range nodes {
		if node.rel.ToMany() {
			continue
		}
		hops := append(append([]string{}, prefix...), node.name)
		if err := am.addPath(hops); err != nil {
			return err
		}
		if err := addOutputPaths(am, node.children, hops); err != nil {
			return err
		}
	}
	return nil
}

// addConditionPaths registers aliases for every relation chain referenced by
// a filter or an ordering directive, whatever the relation types involved.
func addConditionPaths(am *aliasMap, plan *query.Plan) error {
	for _, pred := range plan.Filters {
		if len(pred.Relations) > 0 {
			if err := am.addPath(pred.Relations); err != nil {
				return err
			}
		}
	}
	for _, directive := range plan.Ordering {
		if len(directive.Relations) > 0 {
			if err := am.addPath(directive.Relations); err != nil {
				return err
			}
		}
	}
	return nil
}

// projectionColumns resolves the column expressions and their positional
// result keys for the root query: base fields first, then the to-one
// subtree, with hidden primary keys where tails will need them.
func projectionColumns(plan *query.Plan, tree []*joinNode, am *aliasMap) ([]string, []string) {
	exprs := make([]string, 0, 16)
	keys := make([]string, 0, 16)

	appendEntityColumns(&exprs, &keys, plan.Base, plan.Projections, "main", "")
	if hasToManyNode(tree) {
		exprs = append(exprs, fmt.Sprintf("main.%s", plan.Base.GetPrimaryKey()))
		keys = append(keys, hiddenPK)
	}
	appendSubtreeColumns(&exprs, &keys, tree, plan.Projections, am, nil)
	return exprs, keys
}

func hasToManyNode(nodes []*joinNode) bool {
	for _, n := range nodes {
		if n.rel.ToMany() {
			return true
		}
	}
	return false
}

// appendEntityColumns adds the projected fields of one entity under the
// given alias, prefixing result keys with the entity's path in the tree.
func appendEntityColumns(exprs, keys *[]string, entity *schema.Entity, sel *query.FieldSelection, alias, path string) {
	fields := sel.For(entity.Name)
	if fields == nil {
		fields = entity.Fields.Order
	}
	for _, f := range fields {
		*exprs = append(*exprs, fmt.Sprintf("%s.%s", alias, f))
		if path == "" {
			*keys = append(*keys, f)
		} else {
			*keys = append(*keys, path+"."+f)
		}
	}
}

// appendSubtreeColumns walks the to-one part of the tree adding each node's
// projected columns keyed by its dotted path.
func appendSubtreeColumns(exprs, keys *[]string, nodes []*joinNode, sel *query.FieldSelection, am *aliasMap, prefix []string) {
	for _, node := range nodes {
		if node.rel.ToMany() {
			continue
		}
		hops := append(append([]string{}, prefix...), node.name)
		path := strings.Join(hops, ".")
		alias, ok := am.alias(path)
		if !ok {
			continue
		}
		appendEntityColumns(exprs, keys, node.entity, sel, alias, path)
		if node.hasToManyChild() {
			*exprs = append(*exprs, fmt.Sprintf("%s.%s", alias, node.entity.GetPrimaryKey()))
			*keys = append(*keys, path+"."+hiddenPK)
		}
		appendSubtreeColumns(exprs, keys, node.children, sel, am, hops)
	}
}

// likeEscaper neutralizes LIKE metacharacters so a contains value matches
// literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhereClause translates the typed predicates into squirrel conditions
// against the aliased columns.
func buildWhereClause(filters []*query.FilterPredicate, am *aliasMap) (squirrel.Sqlizer, error) {
	var exprs []squirrel.Sqlizer

	for _, pred := range filters {
		path := strings.Join(pred.Relations, ".")
		alias, ok := am.alias(path)
		if !ok {
			return nil, fmt.Errorf("no alias for filter path '%s'", path)
		}
		sqlField := fmt.Sprintf("%s.%s", alias, pred.Field)

		var cond squirrel.Sqlizer
		switch pred.Operator {
		case query.OpEq:
			cond = squirrel.Eq{sqlField: pred.Value}
		case query.OpIn:
			cond = squirrel.Eq{sqlField: pred.Value} // slice value renders IN
		case query.OpLt:
			cond = squirrel.Lt{sqlField: pred.Value}
		case query.OpLte:
			cond = squirrel.LtOrEq{sqlField: pred.Value}
		case query.OpGt:
			cond = squirrel.Gt{sqlField: pred.Value}
		case query.OpGte:
			cond = squirrel.GtOrEq{sqlField: pred.Value}
		case query.OpContains:
			if s, ok := pred.Value.(string); ok {
				cond = squirrel.ILike{sqlField: "%" + likeEscaper.Replace(s) + "%"}
			}
		case query.OpIsNull:
			if isNull, ok := pred.Value.(bool); ok {
				if isNull {
					cond = squirrel.Eq{sqlField: nil}
				} else {
					cond = squirrel.NotEq{sqlField: nil}
				}
			}
		default:
			return nil, fmt.Errorf("unknown filter operator: %s", pred.Operator)
		}
		if cond != nil {
			exprs = append(exprs, cond)
		}
	}

	if len(exprs) == 0 {
		return nil, nil
	}
	return squirrel.And(exprs), nil
}

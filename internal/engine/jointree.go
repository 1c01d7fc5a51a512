package engine

import (
	"fmt"
	"strings"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/query"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// joinNode is one hop of the output join tree. The tree is built from the
// explicit joins only: it decides which related objects appear in the
// response and how flat rows fold back into nested maps.
type joinNode struct {
	name     string
	rel      *schema.Relation
	entity   *schema.Entity
	children []*joinNode
}

func (n *joinNode) child(name string) *joinNode {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// hasToManyChild reports whether any direct child is a collection relation,
// in which case the node's rows must carry their primary key for tail
// loading.
func (n *joinNode) hasToManyChild() bool {
	for _, c := range n.children {
		if c.rel.ToMany() {
			return true
		}
	}
	return false
}

// buildJoinTree merges the explicit join paths into a tree rooted at base.
// Returns the root's children in first-occurrence order.
func buildJoinTree(base *schema.Entity, joins []query.JoinPath) ([]*joinNode, error) {
	root := &joinNode{entity: base}
	for _, join := range joins {
		current := root
		entity := base
		for _, hop := range join.Hops {
			rel := entity.GetRelation(hop)
			if rel == nil {
				return nil, fmt.Errorf("relation '%s' not declared on '%s'", hop, entity.Name)
			}
			entity = rel.Target()
			next := current.child(hop)
			if next == nil {
				next = &joinNode{name: hop, rel: rel, entity: entity}
				current.children = append(current.children, next)
			}
			current = next
		}
	}
	return root.children, nil
}

// JoinSpec is one LEFT JOIN in a built query.
type JoinSpec struct {
	Table  string
	Alias  string
	On     string
	ToMany bool
}

// aliasMap assigns deterministic aliases (t0, t1, ...) to relation paths and
// accumulates the join specs in insertion order.
type aliasMap struct {
	base   *schema.Entity
	specs  []*JoinSpec
	byPath map[string]string
}

func newAliasMap(base *schema.Entity) *aliasMap {
	return &aliasMap{base: base, byPath: map[string]string{}}
}

// addPath ensures every prefix of the hop chain has a join spec, creating
// missing ones with ON clauses derived from the relation type.
func (am *aliasMap) addPath(hops []string) error {
	entity := am.base
	parentAlias := "main"
	for i, hop := range hops {
		rel := entity.GetRelation(hop)
		if rel == nil {
			return fmt.Errorf("relation '%s' not declared on '%s'", hop, entity.Name)
		}
		path := strings.Join(hops[:i+1], ".")
		alias, ok := am.byPath[path]
		if !ok {
			alias = fmt.Sprintf("t%d", len(am.specs))
			var on string
			switch rel.Type {
			case "belongs_to":
				on = fmt.Sprintf("%s.%s = %s.%s", parentAlias, rel.FK, alias, rel.PK)
			case "has_one", "has_many":
				on = fmt.Sprintf("%s.%s = %s.%s", alias, rel.FK, parentAlias, rel.PK)
			default:
				return fmt.Errorf("unsupported relation type: %s", rel.Type)
			}
			am.byPath[path] = alias
			am.specs = append(am.specs, &JoinSpec{
				Table:  rel.Target().Table,
				Alias:  alias,
				On:     on,
				ToMany: rel.ToMany(),
			})
		}
		parentAlias = alias
		entity = rel.Target()
	}
	return nil
}

// alias resolves the alias of a full relation path ("" means the root).
func (am *aliasMap) alias(path string) (string, bool) {
	if path == "" {
		return "main", true
	}
	a, ok := am.byPath[path]
	return a, ok
}

func (am *aliasMap) hasToMany() bool {
	for _, s := range am.specs {
		if s.ToMany {
			return true
		}
	}
	return false
}

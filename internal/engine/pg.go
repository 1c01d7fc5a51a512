package engine

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/logger"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/query"
)

// PG executes query plans against PostgreSQL. One page query resolves the
// base rows and their to-one subtree; each collection relation in the plan
// runs as a separate keyed query whose rows are grouped back onto their
// parents, so LIMIT/OFFSET always applies to base rows.
type PG struct {
	pool   *pgxpool.Pool
	counts *CountCache
}

func NewPG(pool *pgxpool.Pool, counts *CountCache) *PG {
	return &PG{pool: pool, counts: counts}
}

func (e *PG) Execute(ctx context.Context, plan *query.Plan, page Page) (*Result, error) {
	tree, err := buildJoinTree(plan.Base, plan.ExplicitJoins())
	if err != nil {
		return nil, storageErrorf("join tree", err)
	}

	sb, keys, err := buildRootQuery(plan, tree, page)
	if err != nil {
		return nil, storageErrorf("build query", err)
	}
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, storageErrorf("render sql", err)
	}
	logger.Debug("sql", map[string]any{"sql": sqlStr, "args": args})

	rows, err := e.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, storageErrorf("query", err)
	}
	raw, err := collectRows(rows)
	if err != nil {
		return nil, storageErrorf("scan", err)
	}

	items := foldRows(raw, keys, tree)
	if len(items) > 0 {
		if err := e.attachTails(ctx, tree, items, plan); err != nil {
			return nil, err
		}
	}

	count, err := e.countRows(ctx, plan)
	if err != nil {
		return nil, err
	}

	stripHidden(items)
	return &Result{Rows: items, Count: count}, nil
}

// collectRows drains a pgx result into positional value slices.
func collectRows(rows pgx.Rows) ([][]any, error) {
	defer rows.Close()
	out := make([][]any, 0, 64)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// attachTails loads collection relations level by level. To-one nodes only
// forward the walk into their already-folded nested objects; to-many nodes
// trigger a keyed child query and group its rows onto the owners.
func (e *PG) attachTails(ctx context.Context, nodes []*joinNode, owners []map[string]any, plan *query.Plan) error {
	for _, node := range nodes {
		if !node.rel.ToMany() {
			if len(node.children) == 0 {
				continue
			}
			nested := make([]map[string]any, 0, len(owners))
			for _, owner := range owners {
				if m, ok := owner[node.name].(map[string]any); ok && m != nil {
					nested = append(nested, m)
				}
			}
			if len(nested) > 0 {
				if err := e.attachTails(ctx, node.children, nested, plan); err != nil {
					return err
				}
			}
			continue
		}

		ids := make([]any, 0, len(owners))
		seen := make(map[any]bool, len(owners))
		for _, owner := range owners {
			// default to an empty collection so the key is always present
			owner[node.name] = []map[string]any{}
			id := owner[hiddenPK]
			if id == nil || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			continue
		}

		sb, keys, err := buildTailQuery(node, plan.Projections, ids)
		if err != nil {
			return storageErrorf("build tail", err)
		}
		sqlStr, args, err := sb.ToSql()
		if err != nil {
			return storageErrorf("render tail sql", err)
		}
		logger.Debug("sql_tail", map[string]any{"relation": node.name, "sql": sqlStr})

		rows, err := e.pool.Query(ctx, sqlStr, args...)
		if err != nil {
			return storageErrorf("tail query", err)
		}
		raw, err := collectRows(rows)
		if err != nil {
			return storageErrorf("tail scan", err)
		}

		children := foldRows(raw, keys, node.children)
		grouped := make(map[any][]map[string]any, len(ids))
		for _, child := range children {
			fk := child[hiddenFK]
			delete(child, hiddenFK)
			grouped[fk] = append(grouped[fk], child)
		}
		for _, owner := range owners {
			if group, ok := grouped[owner[hiddenPK]]; ok {
				owner[node.name] = group
			}
		}

		if len(children) > 0 {
			if err := e.attachTails(ctx, node.children, children, plan); err != nil {
				return err
			}
		}
	}
	return nil
}

// countRows resolves the total count for pagination, consulting the engine
// count cache when configured.
func (e *PG) countRows(ctx context.Context, plan *query.Plan) (uint64, error) {
	sb, err := buildCountQuery(plan)
	if err != nil {
		return 0, storageErrorf("build count", err)
	}
	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return 0, storageErrorf("render count sql", err)
	}

	key := Fingerprint(sqlStr, args)
	if count, ok := e.counts.Get(ctx, key); ok {
		return count, nil
	}

	var count uint64
	if err := e.pool.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, storageErrorf("count", err)
	}
	e.counts.Set(ctx, key, count)
	return count, nil
}

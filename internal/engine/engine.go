package engine

import (
	"context"
	"fmt"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/query"
)

// Page is the requested slice of results, 1-based.
type Page struct {
	Number uint64
	Size   uint64
}

// Offset returns the row offset for the page.
func (p Page) Offset() uint64 {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Result is what plan execution yields: one page of serialized rows plus the
// total row count for pagination.
type Result struct {
	Rows  []map[string]any
	Count uint64
}

// Engine executes an assembled query plan. The query core never talks to
// storage directly; this is its single suspension point.
type Engine interface {
	Execute(ctx context.Context, plan *query.Plan, page Page) (*Result, error)
}

// StorageError marks failures inside plan execution. These surface as 5xx
// and are never retried: the plan is static, retrying cannot change the
// outcome.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErrorf(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

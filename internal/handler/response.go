package handler

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/engine"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/query"
)

// Envelope is the response body: host pagination convention plus the meta
// block describing how the query was built.
type Envelope struct {
	Count    uint64           `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []map[string]any `json:"results"`
	Meta     Meta             `json:"meta"`
}

// Meta mirrors the executed plan in human-readable form.
type Meta struct {
	AppliedFilters map[string]any `json:"applied_filters"`
	AppliedJoins   []string       `json:"applied_joins"`
	SelectedFields map[string]any `json:"selected_fields"`
	Ordering       []string       `json:"ordering"`
	Distinct       bool           `json:"distinct"`
	QueryTimeMS    float64        `json:"query_time_ms"`
	Warnings       []string       `json:"warnings"`
}

// AssembleResponse wraps one page of engine results into the envelope.
// elapsed covers plan execution only, not parsing or serialization.
func AssembleResponse(r *http.Request, res *engine.Result, plan *query.Plan, page engine.Page, warnings []string, elapsed time.Duration) *Envelope {
	meta := Meta{
		AppliedFilters: make(map[string]any, len(plan.Filters)),
		AppliedJoins:   make([]string, 0, len(plan.Joins)),
		SelectedFields: make(map[string]any, len(plan.Projections.Entities)),
		Ordering:       make([]string, 0, len(plan.Ordering)),
		Distinct:       plan.Distinct,
		QueryTimeMS:    math.Round(float64(elapsed.Nanoseconds())/1000) / 1000,
		Warnings:       warnings,
	}
	if meta.Warnings == nil {
		meta.Warnings = []string{}
	}

	for _, pred := range plan.Filters {
		meta.AppliedFilters[pred.MetaKey()] = pred.Value
	}
	for _, join := range plan.Joins {
		meta.AppliedJoins = append(meta.AppliedJoins, join.String())
	}
	for _, entity := range plan.Projections.Entities {
		if plan.Projections.IsAll(entity) {
			meta.SelectedFields[entity] = query.AllFields
		} else {
			meta.SelectedFields[entity] = plan.Projections.For(entity)
		}
	}
	for _, directive := range plan.Ordering {
		meta.Ordering = append(meta.Ordering, directive.String())
	}

	rows := res.Rows
	if rows == nil {
		rows = []map[string]any{}
	}

	return &Envelope{
		Count:    res.Count,
		Next:     pageLink(r, page, res.Count, +1),
		Previous: pageLink(r, page, res.Count, -1),
		Results:  rows,
		Meta:     meta,
	}
}

// pageLink builds the absolute URL of the adjacent page, nil at the edges.
func pageLink(r *http.Request, page engine.Page, count uint64, delta int) *string {
	if delta > 0 && page.Offset()+page.Size >= count {
		return nil
	}
	if delta < 0 && page.Number <= 1 {
		return nil
	}

	target := *r.URL
	values := target.Query()
	number := int64(page.Number) + int64(delta)
	if number <= 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.FormatInt(number, 10))
	}
	target.RawQuery = values.Encode()

	abs := url.URL{
		Scheme:   "http",
		Host:     r.Host,
		Path:     target.Path,
		RawQuery: target.RawQuery,
	}
	if r.TLS != nil {
		abs.Scheme = "https"
	}
	s := abs.String()
	return &s
}

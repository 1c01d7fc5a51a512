package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/engine"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/query"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

type fakeEngine struct {
	result   *engine.Result
	err      error
	lastPlan *query.Plan
	lastPage engine.Page
}

func (f *fakeEngine) Execute(_ context.Context, plan *query.Plan, page engine.Page) (*engine.Result, error) {
	f.lastPlan = plan
	f.lastPage = page
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func productEntity() *schema.Entity {
	brand := &schema.Entity{
		Name: "brand", Resource: "brands", Table: "brands",
		Fields: schema.FieldSet{
			Types: map[string]schema.FieldType{"id": schema.TypeIdentifier, "name": schema.TypeString},
			Order: []string{"id", "name"},
		},
	}
	product := &schema.Entity{
		Name: "product", Resource: "products", Table: "products",
		Fields: schema.FieldSet{
			Types: map[string]schema.FieldType{
				"id": schema.TypeIdentifier, "name": schema.TypeString,
				"price": schema.TypeDecimal, "brand_id": schema.TypeIdentifier,
			},
			Order: []string{"id", "name", "price", "brand_id"},
		},
		AllowedJoins: []string{"brand"},
	}
	rel := &schema.Relation{Type: "belongs_to", Entity: "brand", FK: "brand_id", PK: "id"}
	rel.SetTarget(brand)
	product.Relations = map[string]*schema.Relation{"brand": rel}
	return product
}

func doRequest(t *testing.T, eng engine.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()
	h := RelatedHandler(productEntity(), eng, 20, 100)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRelatedHandler_Envelope(t *testing.T) {
	eng := &fakeEngine{result: &engine.Result{
		Rows: []map[string]any{
			{"id": "p1", "name": "Galaxy S24", "brand": map[string]any{"id": "b1", "name": "Samsung"}},
		},
		Count: 1,
	}}

	rec := doRequest(t, eng,
		"/api/products/related/?join=brand&filter[brand__name]=Samsung&fields[product]=id,name&ordering=-name")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	if env.Count != 1 || env.Next != nil || env.Previous != nil {
		t.Errorf("pagination header: count=%d next=%v previous=%v", env.Count, env.Next, env.Previous)
	}
	if len(env.Results) != 1 || env.Results[0]["name"] != "Galaxy S24" {
		t.Errorf("results: %v", env.Results)
	}

	if diff := cmp.Diff([]string{"brand"}, env.Meta.AppliedJoins); diff != "" {
		t.Errorf("applied_joins (-want +got):\n%s", diff)
	}
	if env.Meta.AppliedFilters["brand__name"] != "Samsung" {
		t.Errorf("applied_filters: %v", env.Meta.AppliedFilters)
	}
	if got := env.Meta.SelectedFields["brand"]; got != "*" {
		t.Errorf("selected_fields[brand] = %v, want *", got)
	}
	wantFields := []any{"id", "name"}
	if diff := cmp.Diff(wantFields, env.Meta.SelectedFields["product"]); diff != "" {
		t.Errorf("selected_fields[product] (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"-name"}, env.Meta.Ordering); diff != "" {
		t.Errorf("ordering (-want +got):\n%s", diff)
	}
	if env.Meta.Warnings == nil {
		t.Error("warnings must serialize as [], not null")
	}
	if env.Meta.Distinct {
		t.Error("distinct should be false")
	}

	if eng.lastPage.Number != 1 || eng.lastPage.Size != 20 {
		t.Errorf("default page: %+v", eng.lastPage)
	}
}

func TestRelatedHandler_PaginationLinks(t *testing.T) {
	eng := &fakeEngine{result: &engine.Result{Rows: []map[string]any{}, Count: 50}}

	rec := doRequest(t, eng, "/api/products/related/?page=2&page_size=20&join=brand")
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	if env.Next == nil || !strings.Contains(*env.Next, "page=3") {
		t.Errorf("next = %v", env.Next)
	}
	if env.Previous == nil {
		t.Fatal("previous missing on page 2")
	}
	if strings.Contains(*env.Previous, "page=") {
		t.Errorf("previous to page 1 should drop the page param: %s", *env.Previous)
	}
	if !strings.HasPrefix(*env.Next, "http://") {
		t.Errorf("links must be absolute: %s", *env.Next)
	}
}

func TestRelatedHandler_PageSizeClamped(t *testing.T) {
	eng := &fakeEngine{result: &engine.Result{Count: 0}}
	doRequest(t, eng, "/api/products/related/?page_size=9999")
	if eng.lastPage.Size != 100 {
		t.Errorf("page_size not clamped: %d", eng.lastPage.Size)
	}
}

func TestRelatedHandler_ValidationFailures(t *testing.T) {
	cases := map[string]string{
		"join not allowed":   "/api/products/related/?join=brand.products",
		"bad filter value":   "/api/products/related/?filter[price__lte]=abc",
		"unknown field":      "/api/products/related/?fields[product]=id,nope",
		"bad ordering":       "/api/products/related/?ordering=-unknown",
		"bad page":           "/api/products/related/?page=0",
	}
	for name, target := range cases {
		eng := &fakeEngine{result: &engine.Result{}}
		rec := doRequest(t, eng, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", name, rec.Code)
			continue
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["detail"] == "" {
			t.Errorf("%s: body should carry a detail message: %s", name, rec.Body.String())
		}
		if eng.lastPlan != nil && name != "bad page" {
			t.Errorf("%s: engine must not run on validation failure", name)
		}
	}
}

func TestRelatedHandler_EngineFailureIs500(t *testing.T) {
	eng := &fakeEngine{err: errors.New("connection refused")}
	rec := doRequest(t, eng, "/api/products/related/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("internal error detail must not leak to the client")
	}
}

func TestRelatedHandler_MethodNotAllowed(t *testing.T) {
	h := RelatedHandler(productEntity(), &fakeEngine{}, 20, 100)
	req := httptest.NewRequest(http.MethodPost, "/api/products/related/", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

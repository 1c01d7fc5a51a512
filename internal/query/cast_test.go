package query

import (
	"testing"
	"time"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

func TestCastBool(t *testing.T) {
	for _, raw := range []string{"true", "1", "yes", "on", "TRUE", " Yes "} {
		v, err := CastBool(raw)
		if err != nil || v != true {
			t.Errorf("CastBool(%q) = %v, %v; want true", raw, v, err)
		}
	}
	for _, raw := range []string{"false", "0", "no", "off", "OFF"} {
		v, err := CastBool(raw)
		if err != nil || v != false {
			t.Errorf("CastBool(%q) = %v, %v; want false", raw, v, err)
		}
	}
	if _, err := CastBool("maybe"); err == nil {
		t.Error("CastBool(\"maybe\") should fail")
	}
}

func TestCastValue_Integer(t *testing.T) {
	v, err := CastValue("42", schema.TypeInteger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != int64(42) {
		t.Errorf("got %v (%T), want int64(42)", v, v)
	}
	if _, err := CastValue("4.2", schema.TypeInteger); err == nil {
		t.Error("'4.2' should not cast to integer")
	}
}

func TestCastValue_Decimal(t *testing.T) {
	v, err := CastValue("19.99", schema.TypeDecimal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 19.99 {
		t.Errorf("got %v, want 19.99", v)
	}
}

func TestCastValue_DateTimeLayouts(t *testing.T) {
	for _, raw := range []string{
		"2026-03-01T10:30:00Z",
		"2026-03-01T10:30:00",
		"2026-03-01 10:30:00",
		"2026-03-01",
	} {
		v, err := CastValue(raw, schema.TypeDateTime)
		if err != nil {
			t.Errorf("CastValue(%q, datetime): %v", raw, err)
			continue
		}
		if _, ok := v.(time.Time); !ok {
			t.Errorf("CastValue(%q, datetime) = %T, want time.Time", raw, v)
		}
	}
	if _, err := CastValue("01/03/2026", schema.TypeDateTime); err == nil {
		t.Error("'01/03/2026' should not cast to datetime")
	}
}

func TestCastValue_Date(t *testing.T) {
	v, err := CastValue("2026-03-01", schema.TypeDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !v.(time.Time).Equal(want) {
		t.Errorf("got %v, want %v", v, want)
	}
}

func TestCastValue_Identifier(t *testing.T) {
	v, err := CastValue("A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11", schema.TypeIdentifier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11" {
		t.Errorf("uuid not canonicalized: %v", v)
	}
	if _, err := CastValue("not-a-uuid", schema.TypeIdentifier); err == nil {
		t.Error("'not-a-uuid' should not cast to identifier")
	}
}

func TestCastValue_StringPassthrough(t *testing.T) {
	v, err := CastValue("  Samsung  ", schema.TypeString)
	if err != nil || v != "  Samsung  " {
		t.Errorf("string values must pass through untouched, got %q, %v", v, err)
	}
}

package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

var boolTrueValues = map[string]bool{
	"true": true, "1": true, "yes": true, "on": true,
}

var boolFalseValues = map[string]bool{
	"false": true, "0": true, "no": true, "off": true,
}

// CastBool applies the shared boolean grammar used by filter values and the
// distinct flag: true/1/yes/on and false/0/no/off, case-insensitive.
func CastBool(raw string) (bool, error) {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if boolTrueValues[lowered] {
		return true, nil
	}
	if boolFalseValues[lowered] {
		return false, nil
	}
	return false, fmt.Errorf("'%s' no es un booleano", raw)
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CastValue converts a raw query-string value into the runtime type declared
// for the target field. Only the declared type's cast is attempted; a
// mismatch is a validation error, never a silent fallback to string.
func CastValue(raw string, fieldType schema.FieldType) (any, error) {
	switch fieldType {
	case schema.TypeBoolean:
		return CastBool(raw)
	case schema.TypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' no es un entero", raw)
		}
		return n, nil
	case schema.TypeDecimal:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' no es un decimal", raw)
		}
		return f, nil
	case schema.TypeDateTime:
		trimmed := strings.TrimSpace(raw)
		for _, layout := range datetimeLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("'%s' no es una fecha/hora ISO", raw)
	case schema.TypeDate:
		t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("'%s' no es una fecha ISO (YYYY-MM-DD)", raw)
		}
		return t, nil
	case schema.TypeIdentifier:
		u, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("'%s' no es un identificador UUID", raw)
		}
		return u.String(), nil
	default:
		// string, text
		return raw, nil
	}
}

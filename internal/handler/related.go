package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/engine"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/logger"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/query"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// RelatedHandler serves GET /<resource>/related/ for one entity: it runs the
// validation pipeline, hands the assembled plan to the engine, and wraps the
// page into the response envelope. Validation failures are 400 with a
// descriptive detail; engine failures are 500 without internal detail.
func RelatedHandler(entity *schema.Entity, eng engine.Engine, defaultPageSize, maxPageSize uint64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			logger.Warn("method_not_allowed", map[string]any{
				"resource": entity.Resource,
				"method":   r.Method,
			})
			writeError(w, http.StatusMethodNotAllowed, "Solo se permite GET")
			return
		}

		params, err := query.ParseParams(r.URL.RawQuery)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Los parámetros de la consulta no son válidos")
			return
		}

		plan, warnings, err := query.BuildPlan(entity, params)
		if err != nil {
			var vErr *query.ValidationError
			if errors.As(err, &vErr) {
				logger.Warn("validation_failed", map[string]any{
					"resource": entity.Resource,
					"code":     string(vErr.Code),
					"detail":   vErr.Message,
				})
				writeError(w, http.StatusBadRequest, vErr.Message)
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		page, err := parsePage(params, defaultPageSize, maxPageSize)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		started := time.Now()
		result, err := eng.Execute(r.Context(), plan, page)
		elapsed := time.Since(started)
		if err != nil {
			logger.Error("plan_execution_failed", map[string]any{
				"resource": entity.Resource,
				"error":    err.Error(),
			})
			writeError(w, http.StatusInternalServerError, "Error interno al ejecutar la consulta")
			return
		}

		envelope := AssembleResponse(r, result, plan, page, warnings, elapsed)
		writeJSON(w, http.StatusOK, envelope)
	}
}

// parsePage resolves page/page_size with the host defaults; page_size is
// clamped to the configured maximum rather than rejected.
func parsePage(params []query.Param, defaultSize, maxSize uint64) (engine.Page, error) {
	page := engine.Page{Number: 1, Size: defaultSize}

	if raw, ok := query.First(params, "page"); ok {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return page, errors.New("El parámetro 'page' debe ser un entero positivo")
		}
		page.Number = n
	}
	if raw, ok := query.First(params, "page_size"); ok {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			return page, errors.New("El parámetro 'page_size' debe ser un entero positivo")
		}
		if n > maxSize {
			n = maxSize
		}
		page.Size = n
	}
	return page, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write_response_failed", map[string]any{"error": err.Error()})
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

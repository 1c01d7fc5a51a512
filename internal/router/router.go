package router

import (
	"fmt"
	"net/http"

	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/config"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/engine"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/handler"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/logger"
	"github.com/jmgalindor9802/prueba-backend-go-postgresql/internal/schema"
)

// InitRoutes registers GET /api/<resource>/related/ for every entity in the
// registry that declares a resource segment.
func InitRoutes(cfg *config.Config, eng engine.Engine) error {
	registered := 0
	for _, entity := range schema.Registry {
		if entity.Resource == "" {
			continue
		}
		pattern := fmt.Sprintf("/api/%s/related/", entity.Resource)
		related := handler.RelatedHandler(entity, eng, cfg.Pagination.PageSize, cfg.Pagination.MaxPageSize)
		http.HandleFunc(pattern, withCORS(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials, withLogging(related)))
		registered++
	}
	if registered == 0 {
		return fmt.Errorf("no entity declares a resource; nothing to route")
	}
	logger.Info("routes_registered", map[string]any{"count": registered})
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		fields := map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": sw.status,
		}
		switch {
		case sw.status >= 500:
			logger.Error("response", fields)
		case sw.status >= 400:
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	}
}

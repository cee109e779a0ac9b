// Package configapi implements the local collaborator that serves static
// assets and hands out the platform connection parameters.
package configapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/mfukui/actlog/internal/config"
)

// NewRouter wires the health, config, and static-file routes.
func NewRouter(cfg *config.CollaboratorConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(recoverJSON(cfg))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "OK",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": cfg.Environment,
		})
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"serviceUrl": cfg.ServiceURL,
			"serviceKey": cfg.ServiceKey,
		})
	})

	// Everything else is served from the static directory; unmatched paths
	// fall back to the entry document.
	r.NotFound(staticHandler(cfg.StaticDir))

	return r
}

func staticHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	fallback := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		http.ServeFile(w, r, fallback)
	}
}

// recoverJSON turns a handler panic into a JSON 500; the message detail is
// suppressed outside development.
func recoverJSON(cfg *config.CollaboratorConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logrus.WithFields(logrus.Fields{
						"request_id": middleware.GetReqID(r.Context()),
						"path":       r.URL.Path,
					}).Errorf("handler panic: %v", v)

					message := "an error occurred"
					if cfg.Development() {
						message = fmt.Sprint(v)
					}
					writeJSON(w, http.StatusInternalServerError, map[string]any{
						"error":   "internal server error",
						"message": message,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

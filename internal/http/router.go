package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/mfukui/actlog/internal/auth"
	"github.com/mfukui/actlog/internal/config"
	"github.com/mfukui/actlog/internal/http/csrf"
	"github.com/mfukui/actlog/internal/http/ratelimit"
	"github.com/mfukui/actlog/internal/metrics"
	"github.com/mfukui/actlog/internal/ui"
)

// NewRouter wires all HTTP routes of the application server.
func NewRouter(cfg *config.Config, authService *auth.Service, uiHandler *ui.Handler) http.Handler {
	r := chi.NewRouter()

	// Credential endpoints: 5 requests per second, burst of 10.
	authRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	r.Get("/static/style.css", ui.Stylesheet)

	r.Group(func(r chi.Router) {
		r.Use(authRateLimiter.Middleware())
		r.Use(csrf.Middleware(cfg))
		r.Get("/login", uiHandler.LoginPage)
		r.Post("/login", uiHandler.Login)
		r.Post("/register", uiHandler.Register)
	})

	r.Group(func(r chi.Router) {
		r.Use(authService.RequireSession)
		r.Use(csrf.Middleware(cfg))

		r.Get("/", uiHandler.Dashboard)
		r.Get("/history", uiHandler.History)

		r.Post("/logout", uiHandler.Logout)
		r.Post("/activities/quick", uiHandler.QuickRecord)
		r.Post("/activities", uiHandler.AddActivity)
		r.Post("/activities/{id}", uiHandler.UpdateActivity)
		r.Post("/activities/{id}/delete", uiHandler.DeleteActivity)
	})

	return r
}

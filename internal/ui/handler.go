// Package ui serves the server-rendered views. Every page is a pure
// function of a fresh read: mutations redirect back to the view, which
// re-reads, so the rendered state never diverges from the store.
package ui

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/mfukui/actlog/internal/action"
	"github.com/mfukui/actlog/internal/activity"
	"github.com/mfukui/actlog/internal/auth"
	"github.com/mfukui/actlog/internal/config"
	"github.com/mfukui/actlog/internal/http/csrf"
	weberrors "github.com/mfukui/actlog/internal/http/errors"
)

// Handler serves the HTML views.
type Handler struct {
	cfg         *config.Config
	repo        *activity.Repository
	authService *auth.Service
	tracker     *action.Tracker
}

func NewHandler(cfg *config.Config, repo *activity.Repository, authService *auth.Service, tracker *action.Tracker) *Handler {
	return &Handler{cfg: cfg, repo: repo, authService: authService, tracker: tracker}
}

// withFlash adds flash messages and the CSRF token to template data.
func (h *Handler) withFlash(r *http.Request, data map[string]any) map[string]any {
	q := r.URL.Query()
	if status := q.Get("status"); status != "" {
		data["FlashMessage"] = status
	}
	if errMsg := q.Get("error"); errMsg != "" {
		data["FlashError"] = errMsg
	}
	data["CSRFToken"] = csrf.TokenFromContext(r.Context())
	return data
}

// redirect sends the browser to a path with optional flash parameters.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, path string, params map[string]string) {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	location := path
	if encoded := q.Encode(); encoded != "" {
		location += "?" + encoded
	}
	http.Redirect(w, r, location, http.StatusFound)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := templates[name]
	if !ok {
		weberrors.InternalError(w, r, fmt.Errorf("template %q not found", name), "missing template")
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		weberrors.InternalError(w, r, err, fmt.Sprintf("template render error for %q", name))
	}
}

// userMessage picks the error text shown to the user: the service-supplied
// message when the failure carries one, a generic fallback otherwise.
func userMessage(err error, fallback string) string {
	if msg := activityErrorMessage(err); msg != "" {
		return msg
	}
	return fallback
}

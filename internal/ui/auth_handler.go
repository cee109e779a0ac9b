package ui

import (
	"net/http"
	"strings"

	weberrors "github.com/mfukui/actlog/internal/http/errors"
)

// LoginPage renders the sign-in/register page. A visitor who already holds a
// valid session is sent straight to the dashboard.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authService.CurrentSession(r.Context(), r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	data := h.withFlash(r, map[string]any{
		"Title":        "Sign in",
		"ShowRegister": r.URL.Query().Get("register") == "1",
	})
	h.render(w, r, "login.html", data)
}

// Login handles the credential form.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/login", map[string]string{"error": "invalid form"})
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.redirect(w, r, "/login", map[string]string{"error": "Email and password are required"})
		return
	}

	if _, err := h.authService.SignIn(r.Context(), w, email, password); err != nil {
		weberrors.LogError(r, "sign-in failed", err)
		h.redirect(w, r, "/login", map[string]string{"error": userMessage(err, "Sign-in failed")})
		return
	}
	h.redirect(w, r, "/", map[string]string{"status": "Signed in"})
}

// Register handles the sign-up form. When the service defers the session to
// an email confirmation, the visitor stays on the sign-in form.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/login", map[string]string{"error": "invalid form"})
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.redirect(w, r, "/login", map[string]string{"register": "1", "error": "Email and password are required"})
		return
	}

	session, err := h.authService.SignUp(r.Context(), w, email, password)
	if err != nil {
		weberrors.LogError(r, "sign-up failed", err)
		h.redirect(w, r, "/login", map[string]string{"register": "1", "error": userMessage(err, "Registration failed")})
		return
	}
	if session == nil {
		h.redirect(w, r, "/login", map[string]string{"status": "Registration complete. A confirmation email has been sent."})
		return
	}
	h.redirect(w, r, "/", map[string]string{"status": "Signed in"})
}

// Logout revokes the session. A revocation failure is shown instead of
// navigating away, matching the sign-out flow of the views.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context(), w, r); err != nil {
		weberrors.LogError(r, "sign-out failed", err)
		h.redirect(w, r, "/", map[string]string{"error": "Sign-out failed"})
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

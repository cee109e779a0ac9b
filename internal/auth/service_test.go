package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mfukui/actlog/internal/config"
	"github.com/mfukui/actlog/internal/platform"
	"github.com/mfukui/actlog/internal/stubservice"
)

func testConfig() *config.Config {
	cfg := &config.Config{
		BaseURL: "http://localhost:8080",
	}
	cfg.Session.Secret = "0123456789abcdef0123456789abcdef"
	return cfg
}

func newTestService(t *testing.T) (*Service, *stubservice.Service, *atomic.Int32) {
	t.Helper()

	svc := stubservice.New("anon", "token-secret")
	svc.Seed("a@b.com", "secret1")

	var introspections atomic.Int32
	handler := svc.Handler()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/user" {
			introspections.Add(1)
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client := platform.New(srv.URL, "anon")
	return NewService(client, NewSessionManager(testConfig())), svc, &introspections
}

// signedInRequest returns a request carrying a valid session cookie.
func signedInRequest(t *testing.T, s *Service, target string) *http.Request {
	t.Helper()

	w := httptest.NewRecorder()
	if _, err := s.SignIn(context.Background(), w, "a@b.com", "secret1"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("SignIn() set no cookie")
	}

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestRequireSessionRedirectsWithoutCookie(t *testing.T) {
	s, _, _ := newTestService(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("protected handler ran without a session")
	})

	w := httptest.NewRecorder()
	s.RequireSession(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if got := w.Header().Get("Location"); got != "/login" {
		t.Errorf("redirect location = %q, want /login", got)
	}
}

func TestRequireSessionPassesUserToHandler(t *testing.T) {
	s, _, _ := newTestService(t)
	req := signedInRequest(t, s, "/")

	ran := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
		session, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatal("no session in context")
		}
		if session.User.Email != "a@b.com" {
			t.Errorf("session email = %q, want a@b.com", session.User.Email)
		}
	})

	w := httptest.NewRecorder()
	s.RequireSession(next).ServeHTTP(w, req)
	if !ran {
		t.Error("protected handler did not run")
	}
}

func TestRequireSessionRevalidatesEveryRequest(t *testing.T) {
	s, _, introspections := newTestService(t)
	req := signedInRequest(t, s, "/")
	introspections.Store(0)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		clone := req.Clone(req.Context())
		s.RequireSession(next).ServeHTTP(w, clone)
	}

	if got := introspections.Load(); got != 3 {
		t.Errorf("session introspections = %d, want 3 (one per request)", got)
	}
}

func TestRequireSessionRejectsRevokedToken(t *testing.T) {
	s, _, _ := newTestService(t)
	req := signedInRequest(t, s, "/")

	// Revoke server-side; the still-valid cookie must not pass the gate.
	if err := s.SignOut(context.Background(), httptest.NewRecorder(), req); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("protected handler ran with revoked session")
	})

	w := httptest.NewRecorder()
	s.RequireSession(next).ServeHTTP(w, req)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want redirect", w.Code)
	}
}

func TestSignUpWithConfirmationReturnsNoSession(t *testing.T) {
	s, svc, _ := newTestService(t)
	svc.RequireConfirmation = true

	w := httptest.NewRecorder()
	session, err := s.SignUp(context.Background(), w, "new@b.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if session != nil {
		t.Error("SignUp() returned a session, want nil under confirmation flow")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("SignUp() set a cookie without a session")
	}
}

func TestCurrentSessionWithoutCookie(t *testing.T) {
	s, _, _ := newTestService(t)

	if _, ok := s.CurrentSession(context.Background(), httptest.NewRequest(http.MethodGet, "/login", nil)); ok {
		t.Error("CurrentSession() = ok without cookie")
	}
}

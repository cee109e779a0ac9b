// Package auth enforces the session gate in front of every protected view.
package auth

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mfukui/actlog/internal/platform"
)

// Service encapsulates the authentication flows and the per-request gate.
type Service struct {
	client   *platform.Client
	sessions *SessionManager
}

func NewService(client *platform.Client, sessions *SessionManager) *Service {
	return &Service{client: client, sessions: sessions}
}

// SignIn exchanges credentials for a session and sets the session cookie.
func (s *Service) SignIn(ctx context.Context, w http.ResponseWriter, email, password string) (*platform.Session, error) {
	session, err := s.client.Auth().SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Issue(w, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SignUp registers a new user. When the service requires email confirmation
// the returned session is nil and no cookie is set.
func (s *Service) SignUp(ctx context.Context, w http.ResponseWriter, email, password string) (*platform.Session, error) {
	session, err := s.client.Auth().SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if session != nil {
		if err := s.sessions.Issue(w, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// SignOut revokes the session on the service and clears the cookie. The
// cookie is cleared even when revocation fails.
func (s *Service) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, ok := s.sessions.Read(r)
	s.sessions.Clear(w)
	if !ok {
		return nil
	}
	return s.client.Auth().SignOut(ctx, token)
}

// CurrentSession revalidates the cached session against the service. Used by
// the login page to redirect already-authenticated visitors.
func (s *Service) CurrentSession(ctx context.Context, r *http.Request) (*platform.Session, bool) {
	token, ok := s.sessions.Read(r)
	if !ok {
		return nil, false
	}
	session, err := s.client.Auth().GetSession(ctx, token)
	if err != nil {
		return nil, false
	}
	return session, true
}

// RequireSession gates a protected view. The session query is issued on
// every request; no prior result is cached. Missing or invalid sessions
// redirect to the login view and stop the chain.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := s.sessions.Read(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		session, err := s.client.Auth().GetSession(r.Context(), token)
		if err != nil {
			if err != platform.ErrUnauthorized {
				logrus.WithError(err).Warn("session revalidation failed")
			}
			s.sessions.Clear(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

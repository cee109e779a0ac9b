// Package stubservice is an in-memory stand-in for the remote identity/data
// service, implementing the subset of its HTTP surface the client handle
// consumes. It backs local development and the end-to-end tests.
package stubservice

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = time.Hour

// Service holds the stand-in state and its HTTP handler.
type Service struct {
	store  *memoryStore
	anon   string
	secret []byte

	// RequireConfirmation makes sign-up succeed without issuing a session,
	// mirroring a service configured for confirmation emails.
	RequireConfirmation bool
}

// New builds a stand-in accepting the given anonymous key and signing
// tokens with the given secret.
func New(anonKey, tokenSecret string) *Service {
	return &Service{
		store:  newMemoryStore(),
		anon:   anonKey,
		secret: []byte(tokenSecret),
	}
}

// Handler returns the HTTP surface of the stand-in.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requireAPIKey)

	r.Post("/auth/v1/token", s.handleToken)
	r.Post("/auth/v1/signup", s.handleSignup)
	r.Get("/auth/v1/user", s.handleUser)
	r.Post("/auth/v1/logout", s.handleLogout)

	r.Get("/rest/v1/activities", s.handleList)
	r.Post("/rest/v1/activities", s.handleInsert)
	r.Patch("/rest/v1/activities", s.handleUpdate)
	r.Delete("/rest/v1/activities", s.handleDelete)

	return r
}

// Seed registers a user directly, for tests and local development.
func (s *Service) Seed(email, password string) (userID string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u, ok := s.store.createUser(email, hash)
	if !ok {
		existing, _ := s.store.userByEmail(email)
		return existing.ID
	}
	return u.ID
}

func (s *Service) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != s.anon {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid api key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) bearerUser(r *http.Request) (*user, string, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	userID, err := s.parseToken(token)
	if err != nil {
		return nil, "", false
	}
	u, ok := s.store.userByID(userID)
	if !ok {
		return nil, "", false
	}
	return u, token, true
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("grant_type") != "password" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "unsupported grant type"})
		return
	}

	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "malformed request"})
		return
	}

	u, ok := s.store.userByEmail(creds.Email)
	if !ok || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(creds.Password)) != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Invalid login credentials"})
		return
	}

	s.writeSession(w, u)
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "malformed request"})
		return
	}
	if creds.Email == "" || len(creds.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Password should be at least 6 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error_description": "hashing failed"})
		return
	}

	u, created := s.store.createUser(creds.Email, hash)
	if !created {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "User already registered"})
		return
	}

	if s.RequireConfirmation {
		writeJSON(w, http.StatusOK, map[string]any{
			"user": map[string]string{"id": u.ID, "email": u.Email},
		})
		return
	}
	s.writeSession(w, u)
}

func (s *Service) writeSession(w http.ResponseWriter, u *user) {
	token, err := s.mintToken(u.ID, tokenTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error_description": "token signing failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  token,
		"token_type":    "bearer",
		"expires_in":    int64(tokenTTL / time.Second),
		"refresh_token": "",
		"user":          map[string]string{"id": u.ID, "email": u.Email},
	})
}

func (s *Service) handleUser(w http.ResponseWriter, r *http.Request) {
	u, _, ok := s.bearerUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "invalid token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": u.ID, "email": u.Email})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, token, ok := s.bearerUser(r); ok {
		s.store.revoke(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package auth

import (
	"crypto/sha256"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/mfukui/actlog/internal/config"
	"github.com/mfukui/actlog/internal/platform"
)

const cookieMaxAge = 7 * 24 * time.Hour

// SessionManager stores the cached copy of the platform session in a secure
// cookie. The cached copy is never trusted on its own: every protected
// request revalidates the token against the service (see Service.RequireSession).
type SessionManager struct {
	cookieName string
	codec      *securecookie.SecureCookie
	secure     bool
}

type cookiePayload struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}

func NewSessionManager(cfg *config.Config) *SessionManager {
	hash := sha256.Sum256([]byte(cfg.Session.Secret))
	sc := securecookie.New(hash[:], hash[:])
	sc.MaxAge(int(cookieMaxAge / time.Second))
	sc.SetSerializer(securecookie.JSONEncoder{})

	secure := true
	if base, err := url.Parse(cfg.BaseURL); err == nil && base.Scheme != "https" {
		secure = false
	}

	return &SessionManager{
		cookieName: "actlog_session",
		codec:      sc,
		secure:     secure,
	}
}

// Issue writes the session cookie after a successful sign-in.
func (m *SessionManager) Issue(w http.ResponseWriter, session *platform.Session) error {
	payload := cookiePayload{
		AccessToken: session.Token.AccessToken,
		UserID:      session.User.ID,
		Email:       session.User.Email,
	}

	encoded, err := m.codec.Encode(m.cookieName, payload)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  time.Now().Add(cookieMaxAge),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear removes the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    m.cookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		Secure:  m.secure,
	})
}

// Read extracts the cached session from the request, if any. A decoded
// cookie only proves that this process issued it; the token inside may have
// been revoked or expired on the service side.
func (m *SessionManager) Read(r *http.Request) (accessToken string, ok bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}

	var payload cookiePayload
	if err := m.codec.Decode(m.cookieName, c.Value, &payload); err != nil {
		return "", false
	}
	if payload.AccessToken == "" {
		return "", false
	}
	return payload.AccessToken, true
}

package platform

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// User is the identity embedded in a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the server-issued proof of authentication. The token is treated
// as opaque; validity is only ever established by asking the service.
type Session struct {
	Token *oauth2.Token
	User  User
}

// AuthAPI wraps the identity endpoints of the service.
type AuthAPI struct {
	client *Client
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

func (t *tokenResponse) session() *Session {
	if t.AccessToken == "" {
		return nil
	}
	return &Session{
		Token: &oauth2.Token{
			AccessToken:  t.AccessToken,
			TokenType:    t.TokenType,
			RefreshToken: t.RefreshToken,
			Expiry:       time.Now().Add(time.Duration(t.ExpiresIn) * time.Second),
		},
		User: t.User,
	}
}

// SignInWithPassword exchanges credentials for a session.
func (a *AuthAPI) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := a.client.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	session := resp.session()
	if session == nil {
		return nil, &ServiceError{Status: http.StatusBadGateway, Message: "sign-in response carried no session"}
	}
	return session, nil
}

// SignUp registers a new user. The service may require email confirmation,
// in which case the returned session is nil even on success.
func (a *AuthAPI) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	err := a.client.do(ctx, http.MethodPost, "/auth/v1/signup", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.session(), nil
}

// GetSession asks the service whether the access token still identifies a
// user. This is the revalidation primitive: a cached session is never
// trusted without this call succeeding.
func (a *AuthAPI) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, ErrUnauthorized
	}
	var user User
	if err := a.client.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &Session{
		Token: &oauth2.Token{AccessToken: accessToken, TokenType: "bearer"},
		User:  user,
	}, nil
}

// SignOut revokes the session on the service side.
func (a *AuthAPI) SignOut(ctx context.Context, accessToken string) error {
	return a.client.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

package auth

import (
	"context"

	"github.com/mfukui/actlog/internal/platform"
)

type contextKey string

const contextKeySession contextKey = "session"

func WithSession(ctx context.Context, session *platform.Session) context.Context {
	return context.WithValue(ctx, contextKeySession, session)
}

func SessionFromContext(ctx context.Context) (*platform.Session, bool) {
	s, ok := ctx.Value(contextKeySession).(*platform.Session)
	return s, ok
}

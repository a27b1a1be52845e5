// Package auth provides session authentication primitives for the console API.
package auth

import (
	"context"

	"github.com/datacanvas/datacanvas/internal/storage"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const (
	sessionKey ctxKey = iota // stores *storage.Session
)

// SessionFromContext retrieves the authenticated session from context.
// Returns nil if the request was not authenticated.
func SessionFromContext(ctx context.Context) *storage.Session {
	if v := ctx.Value(sessionKey); v != nil {
		if session, ok := v.(*storage.Session); ok {
			return session
		}
	}
	return nil
}

// WithSession adds a session to the context.
func WithSession(ctx context.Context, session *storage.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

package console

import (
	"errors"

	"github.com/datacanvas/datacanvas/internal/gateway"
)

// SessionHandler receives errors that mean the session can no longer be used.
// The embedding application decides what to do with them (re-authenticate,
// switch projects, exit); the console flows only report.
type SessionHandler func(err error)

// IsSessionError reports whether err indicates a dead or insufficient session.
func IsSessionError(err error) bool {
	return errors.Is(err, gateway.ErrUnauthorized) || errors.Is(err, gateway.ErrForbidden)
}

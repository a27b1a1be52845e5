package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/datacanvas/datacanvas/internal/auth"
	"github.com/datacanvas/datacanvas/internal/metrics"
	"github.com/datacanvas/datacanvas/internal/storage"
)

// SessionAuthMiddleware validates the bearer session token for console routes.
// The token is carried in the Authorization header, with or without a "Bearer "
// prefix. On success the session is placed in the request context.
func (h *Handler) SessionAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get("Authorization"))
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
		if token == "" {
			metrics.RecordAuthFailure("missing_token")
			WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Missing session token")
			return
		}

		ctx := r.Context()

		session, err := h.storage.GetSessionByTokenHash(ctx, storage.HashSessionToken(token))
		if err != nil {
			h.logger.Warn("invalid session token attempt", "remote_addr", r.RemoteAddr)
			metrics.RecordAuthFailure("invalid_token")
			WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid session token")
			return
		}

		if session.Expired(time.Now()) {
			metrics.RecordAuthFailure("expired_token")
			WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Session expired")
			return
		}

		h.logger.Debug("console API request", "session_label", session.Label)
		next.ServeHTTP(w, r.WithContext(auth.WithSession(ctx, session)))
	})
}

// requireProject checks that the request's session grants the given project.
// Writes a 403 response and returns false when it does not.
func (h *Handler) requireProject(w http.ResponseWriter, r *http.Request, projectID int64) bool {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "No session")
		return false
	}
	if !session.GrantsProject(projectID) {
		WriteErrorWithHint(w, http.StatusForbidden, ErrCodeForbidden,
			"Session does not grant access to this project",
			"Use a session scoped to the project, or an unscoped session")
		return false
	}
	return true
}

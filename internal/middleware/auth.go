package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront-catalog/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
	SubjectKey   contextKey = "subject"
)

// SessionCookieName is the cookie carrying the signed admin session.
const SessionCookieName = "admin_session"

// SessionAuthenticator verifies a signed admin session.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, signed string) (*service.Claims, error)
}

// AdminSessionMiddleware rejects requests without a live admin session. The
// session is read from the cookie first, then from a Bearer Authorization
// header.
func AdminSessionMiddleware(auth SessionAuthenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			signed, ok := SessionToken(r)
			if !ok {
				logger.Debug("Missing admin session")
				RespondWithError(w, http.StatusUnauthorized, "missing admin session")
				return
			}

			claims, err := auth.Authenticate(r.Context(), signed)
			if err != nil {
				if errors.Is(err, service.ErrInvalidSession) {
					logger.Debug("Admin session rejected", zap.Error(err))
					RespondWithError(w, http.StatusUnauthorized, "invalid or expired session")
					return
				}
				RespondWithDomainError(w, r, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), SessionIDKey, claims.ID)
			ctx = context.WithValue(ctx, SubjectKey, claims.Subject)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the signed session from the request.
func SessionToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetSessionID extracts the admin session id from request context
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(SessionIDKey).(string)
	return id, ok
}

package middleware

import (
	"context"
	"errors"
	"github.com/ZertGraf/bugtracker/internal/api/handler"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"net/http"
)

// Authorizer resolves a session token to a live session.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*domain.Session, error)
}

// Authenticate rejects requests without a valid session token and
// stores the session in the request context for handlers.
func Authenticate(authz Authorizer, logger *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := authz.Authorize(r.Context(), handler.TokenFromRequest(r))
			if err != nil {
				handler.WriteError(w, err, logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(handler.WithSession(r.Context(), session)))
		})
	}
}

// OptionalAuthenticate attaches the session when the request carries a valid
// token and passes anonymous requests through unchanged.
func OptionalAuthenticate(authz Authorizer, logger *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := handler.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := authz.Authorize(r.Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthenticated) {
					logger.Warn("session lookup failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(handler.WithSession(r.Context(), session)))
		})
	}
}

package handler

import (
	"context"
	"github.com/ZertGraf/bugtracker/internal/domain"
	"net/http"
	"strings"
)

// TokenCookieName is the cookie carrying the session token for browser clients.
const TokenCookieName = "token"

type sessionKey struct{}

type sessionSlotKey struct{}

type sessionSlot struct {
	session *domain.Session
}

// WithSessionSlot prepares ctx so that an outer middleware can observe the
// session attached further down the chain.
func WithSessionSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionSlotKey{}, &sessionSlot{})
}

// SlotSession returns the session recorded in the slot, if any.
func SlotSession(ctx context.Context) (*domain.Session, bool) {
	slot, ok := ctx.Value(sessionSlotKey{}).(*sessionSlot)
	if !ok || slot.session == nil {
		return nil, false
	}
	return slot.session, true
}

func WithSession(ctx context.Context, session *domain.Session) context.Context {
	if slot, ok := ctx.Value(sessionSlotKey{}).(*sessionSlot); ok {
		slot.session = session
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*domain.Session)
	return session, ok && session != nil
}

// TokenFromRequest prefers the Authorization bearer token over the cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(TokenCookieName); err == nil {
		return cookie.Value
	}

	return ""
}

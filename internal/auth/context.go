package auth

import "context"

type contextKey int

const (
	sessionContextKey contextKey = iota
	sessionIDContextKey
)

func ContextWithSession(ctx context.Context, sessionID string, session *Session) context.Context {
	ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
	return context.WithValue(ctx, sessionContextKey, session)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	return session, ok && session != nil
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	return sessionID, ok && sessionID != ""
}

// TokenFromContext returns the upstream bearer token of the logged-in
// session, or empty when the request carries no session
func TokenFromContext(ctx context.Context) string {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return ""
	}
	return session.Token
}

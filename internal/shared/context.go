package shared

import "context"

type (
	sessionKey   struct{}
	principalKey struct{}
)

// ContextWithSession attaches the request session.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the request session or nil.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionKey{}).(*Session)
	return sess
}

// ContextWithPrincipal pins a principal on ctx for callers that run without
// a session, such as jobs and the seeder.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext prefers a pinned principal and otherwise reads the
// one stored in the request session.
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok && p.UserID > 0 {
		return p, nil
	}
	return PrincipalFromSession(SessionFromContext(ctx))
}

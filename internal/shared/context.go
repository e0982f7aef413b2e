package shared

import "context"

// requestKey indexes values the middleware chain attaches to a request.
type requestKey uint8

const sessionKey requestKey = iota

// ContextWithSession returns a copy of ctx carrying sess for the rest of the
// request. A nil sess hides any session set further up.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the request session, or nil when the request
// did not pass through the session middleware.
func SessionFromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(sessionKey).(*Session); ok {
		return sess
	}
	return nil
}

// SessionIDFromContext returns the id of the request session, or "" when
// there is none.
func SessionIDFromContext(ctx context.Context) string {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.ID
	}
	return ""
}

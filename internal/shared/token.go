package shared

import "context"

// SessionTokenSource resolves the upstream API token from the request's
// session, falling back to the configured service token for anonymous or
// pre-login requests. It satisfies the backend adapter's TokenSource.
type SessionTokenSource struct {
	Fallback string
}

// Token returns the session-bound token when present.
func (s SessionTokenSource) Token(ctx context.Context) (string, error) {
	if sess := SessionFromContext(ctx); sess != nil && sess.BackendToken() != "" {
		return sess.BackendToken(), nil
	}
	return s.Fallback, nil
}

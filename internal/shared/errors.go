package shared

import "errors"

var (
	// ErrNotFound marks a missing row in the gateway's own storage.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials covers unknown operators, disabled accounts
	// and password mismatches alike, so login failures are not
	// distinguishable from the outside.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing rejects a mutating request without a token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch rejects a token from another session.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

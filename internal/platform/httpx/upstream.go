package httpx

import (
	"errors"
	"net/http"

	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

// RespondUpstreamError maps a failure from the backend adapter to the
// response the dashboard expects: field errors inline, not-found as 404,
// any other upstream failure as a single non-blocking problem.
func RespondUpstreamError(w http.ResponseWriter, err error) {
	if remoteFields, ok := backend.FieldErrors(err); ok {
		fields := make([]FieldError, len(remoteFields))
		for i, f := range remoteFields {
			fields[i] = FieldError{Field: f.Field, Message: f.Message}
		}
		ValidationProblem(w, fields)
		return
	}
	if errors.Is(err, backend.ErrNotFound) {
		Problem(w, http.StatusNotFound, "Not Found", "resource not found")
		return
	}
	var remote *backend.RemoteError
	if errors.As(err, &remote) {
		Problem(w, http.StatusBadGateway, "Upstream Error", remote.Message)
		return
	}
	RespondError(w, err)
}

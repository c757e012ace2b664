package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound indicates the upstream resource does not exist. Lookup
// endpoints treat it as a valid miss branch, not a failure.
var ErrNotFound = errors.New("backend: resource not found")

// FieldError is a single field-addressable validation message returned
// by the upstream API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RemoteError carries a decoded upstream failure.
type RemoteError struct {
	Status  int
	Message string
	Fields  []FieldError
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: upstream %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend: upstream %d", e.Status)
}

// IsValidation reports whether the failure carries field-level messages.
func (e *RemoteError) IsValidation() bool {
	return len(e.Fields) > 0
}

// FieldErrors extracts field-level validation messages from err, if any.
func FieldErrors(err error) ([]FieldError, bool) {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.IsValidation() {
		return remote.Fields, true
	}
	return nil, false
}

// Upstream failure bodies come in two shapes: {data:[{field,message}...]}
// for validation failures and {message} for everything else.
type remoteErrorEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeRemoteError(status int, body []byte) error {
	if status == http.StatusNotFound {
		return ErrNotFound
	}

	remote := &RemoteError{Status: status}
	var envelope remoteErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		remote.Message = envelope.Message
		if len(envelope.Data) > 0 {
			var fields []FieldError
			if err := json.Unmarshal(envelope.Data, &fields); err == nil {
				remote.Fields = fields
			}
		}
	}
	if remote.Message == "" && len(remote.Fields) == 0 {
		remote.Message = strings.TrimSpace(http.StatusText(status))
	}
	return remote
}

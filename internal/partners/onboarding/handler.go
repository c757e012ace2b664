package onboarding

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gemdesk/gemdesk/internal/platform/backend"
	"github.com/gemdesk/gemdesk/internal/platform/httpx"
)

// Handler serves the onboarding endpoints: identifier lookup, form
// submission and recovery of half-committed registrations.
type Handler struct {
	logger   *slog.Logger
	workflow *Workflow
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, workflow *Workflow) *Handler {
	return &Handler{logger: logger, workflow: workflow}
}

// MountRoutes registers the onboarding endpoints under the current group.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/lookup", h.Lookup)
	r.Post("/", h.Submit)
	r.Get("/pending", h.ListPending)
	r.Post("/pending/{id}/retry", h.Retry)
}

type lookupResponse struct {
	State  string          `json:"state"`
	Person *RegistryPerson `json:"person,omitempty"`
}

// Lookup resolves the identifier typed into the form. A miss is a normal
// outcome that switches the form to manual entry.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	result, err := h.workflow.Lookup(r.Context(), r.URL.Query().Get("fin"))
	if errors.Is(err, ErrIdentifierTooShort) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "identifier too short for lookup")
		return
	}
	if err != nil {
		h.logger.Error("identifier lookup failed", "error", err)
		httpx.RespondUpstreamError(w, err)
		return
	}

	resp := lookupResponse{State: StateLookupNotFound}
	if result.Found {
		resp = lookupResponse{State: StateLookupFound, Person: result.Person}
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type submitResponse struct {
	Result
	// PendingID lets the operator retry a half-committed registration.
	PendingID string `json:"pendingId,omitempty"`
	Step      string `json:"step,omitempty"`
}

// Submit runs the onboarding sequence for one form submission.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}

	result, err := h.workflow.Submit(r.Context(), req)
	if err != nil {
		h.respondSubmitError(w, result, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, submitResponse{Result: result})
}

// Retry re-runs the registration step for a pending marker.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	result, err := h.workflow.Retry(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrPendingNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "pending registration not found")
		return
	}
	if err != nil {
		h.respondSubmitError(w, result, err)
		return
	}
	httpx.JSON(w, http.StatusOK, submitResponse{Result: result})
}

// ListPending returns outstanding half-committed registrations.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.workflow.Pending(r.Context(), 50)
	if err != nil {
		h.logger.Error("list pending failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	if pending == nil {
		pending = []PendingRegistration{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"pending": pending})
}

func (h *Handler) respondSubmitError(w http.ResponseWriter, result Result, err error) {
	if fields, ok := httpx.ValidatorFields(err); ok {
		httpx.ValidationProblem(w, fields)
		return
	}
	var invalid *ValidationError
	if errors.As(err, &invalid) {
		fields := make([]httpx.FieldError, len(invalid.Fields))
		for i, f := range invalid.Fields {
			fields[i] = httpx.FieldError{Field: f.Field, Message: f.Message}
		}
		httpx.ValidationProblem(w, fields)
		return
	}

	var step *StepError
	if errors.As(err, &step) {
		h.logger.Error("onboarding step failed",
			"step", step.Step,
			"pending_id", step.PendingID,
			"error", step.Err)
		if remoteFields, ok := backendFields(step.Err); ok {
			httpx.ValidationProblem(w, remoteFields)
			return
		}
		// 409 tells the UI the flow is recoverable: a marker exists and
		// the registration step can be retried without a new user.
		status := http.StatusBadGateway
		if step.PendingID != "" {
			status = http.StatusConflict
		}
		httpx.JSON(w, status, submitResponse{
			Result:    result,
			PendingID: step.PendingID,
			Step:      step.Step,
		})
		return
	}

	h.logger.Error("onboarding failed", "error", err)
	httpx.RespondUpstreamError(w, err)
}

func backendFields(err error) ([]httpx.FieldError, bool) {
	remote, ok := backend.FieldErrors(err)
	if !ok {
		return nil, false
	}
	fields := make([]httpx.FieldError, len(remote))
	for i, f := range remote {
		fields[i] = httpx.FieldError{Field: f.Field, Message: f.Message}
	}
	return fields, true
}

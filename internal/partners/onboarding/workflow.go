package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

// Workflow states reported to the dashboard.
const (
	StateLookupFound    = "LOOKUP_FOUND"
	StateLookupNotFound = "LOOKUP_NOT_FOUND"
	StateDone           = "DONE"
	StateFailed         = "FAILED"
)

// Workflow step names, used to tell the operator which remote write
// failed and which already committed.
const (
	StepLookup          = "lookup"
	StepUserCreate      = "user_create"
	StepPartnerRegister = "partner_register"
)

// SubmitRequest carries the onboarding form.
type SubmitRequest struct {
	FIN         string `json:"fin" validate:"required,min=7,max=16"`
	Kind        string `json:"kind" validate:"required,oneof=PHYSICAL LEGAL"`
	FirstName   string `json:"firstName,omitempty" validate:"max=100"`
	LastName    string `json:"lastName,omitempty" validate:"max=100"`
	CompanyName string `json:"companyName,omitempty" validate:"max=200"`
	TaxID       string `json:"taxId,omitempty" validate:"max=50"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty" validate:"max=50"`
	Address     string `json:"address,omitempty" validate:"max=500"`
	// Password is required only when the identifier lookup misses and a
	// new user account has to be created.
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// Result reports a completed onboarding run.
type Result struct {
	State       string `json:"state"`
	PartnerID   int64  `json:"partnerId"`
	UserID      int64  `json:"userId"`
	UserCreated bool   `json:"userCreated"`
}

// StepError names the failing step. When PendingID is set the first step
// already committed and the registration can be retried on its own.
type StepError struct {
	Step      string
	PendingID string
	UserID    int64
	Err       error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("onboarding: step %s failed: %v", e.Step, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *StepError) Unwrap() error {
	return e.Err
}

// ValidationError carries field-level form errors raised before any
// remote write happens.
type ValidationError struct {
	Fields []backend.FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "onboarding: validation failed"
}

// PendingStore persists the saga marker between the two remote writes.
type PendingStore interface {
	Insert(ctx context.Context, fin string, userID int64, payload []byte) (PendingRegistration, error)
	Get(ctx context.Context, id string) (PendingRegistration, error)
	GetByFIN(ctx context.Context, fin string) (PendingRegistration, error)
	MarkAttempt(ctx context.Context, id string, lastError string) error
	Delete(ctx context.Context, id string) error
}

// TaskEnqueuer schedules background retries; satisfied by asynq.Client.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Workflow sequences the onboarding steps. User creation and partner
// registration hit two different upstream services and are not atomic;
// the pending marker keeps the gap visible and recoverable.
type Workflow struct {
	logger   *slog.Logger
	client   *backend.Client
	lookup   *Lookuper
	store    PendingStore
	queue    TaskEnqueuer
	validate *validator.Validate
}

// NewWorkflow constructs the workflow. queue may be nil; retries are then
// operator-driven only.
func NewWorkflow(logger *slog.Logger, client *backend.Client, lookup *Lookuper, store PendingStore, queue TaskEnqueuer, validate *validator.Validate) *Workflow {
	return &Workflow{logger: logger, client: client, lookup: lookup, store: store, queue: queue, validate: validate}
}

// Lookup resolves the identifier for the form's prefill step.
func (w *Workflow) Lookup(ctx context.Context, fin string) (LookupResult, error) {
	return w.lookup.Lookup(ctx, fin)
}

type registerPayload struct {
	RegistrationKey string `json:"registrationKey,omitempty"`
	UserID          int64  `json:"userId"`
	Kind            string `json:"kind"`
	FIN             string `json:"fin"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	CompanyName     string `json:"companyName,omitempty"`
	TaxID           string `json:"taxId,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`
}

type createUserRequest struct {
	FIN       string `json:"fin"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
}

type createdUser struct {
	ID int64 `json:"id"`
}

type registeredPartner struct {
	ID int64 `json:"id"`
}

// Submit runs the full onboarding sequence for one form submission.
func (w *Workflow) Submit(ctx context.Context, req SubmitRequest) (Result, error) {
	if err := w.validate.Struct(req); err != nil {
		return Result{State: StateFailed}, err
	}

	lookup, err := w.lookup.Lookup(ctx, req.FIN)
	if err != nil {
		return Result{State: StateFailed}, &StepError{Step: StepLookup, Err: err}
	}

	if fields := w.branchFields(req, lookup); len(fields) > 0 {
		return Result{State: StateFailed}, &ValidationError{Fields: fields}
	}

	// A marker for this FIN means an earlier submit already committed its
	// first step. Short-circuit before the user-create step so a resubmit
	// cannot strand a second upstream user.
	if existing, err := w.store.GetByFIN(ctx, req.FIN); err == nil {
		return Result{State: StateFailed}, &StepError{
			Step:      StepPartnerRegister,
			PendingID: existing.ID,
			UserID:    existing.UserID,
			Err:       ErrPendingExists,
		}
	}

	var (
		userID      int64
		userCreated bool
	)
	if lookup.Found {
		userID = lookup.Person.UserID
		req.FirstName = lookup.Person.FirstName
		req.LastName = lookup.Person.LastName
	} else {
		userID, err = w.createUser(ctx, req)
		if err != nil {
			return Result{State: StateFailed}, &StepError{Step: StepUserCreate, Err: err}
		}
		userCreated = true
	}

	payload, err := json.Marshal(registerPayload{
		UserID:      userID,
		Kind:        req.Kind,
		FIN:         req.FIN,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		TaxID:       req.TaxID,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		return Result{State: StateFailed}, &StepError{Step: StepPartnerRegister, UserID: userID, Err: err}
	}

	pending, err := w.store.Insert(ctx, req.FIN, userID, payload)
	if err != nil {
		if existing, lookupErr := w.store.GetByFIN(ctx, req.FIN); lookupErr == nil {
			// Lost a race against a concurrent submit for the same FIN;
			// point the operator at the winning marker.
			return Result{State: StateFailed}, &StepError{
				Step:      StepPartnerRegister,
				PendingID: existing.ID,
				UserID:    existing.UserID,
				Err:       ErrPendingExists,
			}
		}
		return Result{State: StateFailed}, &StepError{Step: StepPartnerRegister, UserID: userID, Err: err}
	}

	return w.register(ctx, pending, userCreated, true)
}

// Retry re-runs the partner registration for a stored marker. The user
// creation step is never repeated. Failures are not re-enqueued here;
// the task queue owns the retry schedule for queued attempts.
func (w *Workflow) Retry(ctx context.Context, pendingID string) (Result, error) {
	pending, err := w.store.Get(ctx, pendingID)
	if err != nil {
		return Result{State: StateFailed}, err
	}
	return w.register(ctx, pending, false, false)
}

// Pending lists outstanding markers for the recovery screen.
func (w *Workflow) Pending(ctx context.Context, limit int) ([]PendingRegistration, error) {
	lister, ok := w.store.(interface {
		List(ctx context.Context, limit int) ([]PendingRegistration, error)
	})
	if !ok {
		return nil, nil
	}
	return lister.List(ctx, limit)
}

func (w *Workflow) register(ctx context.Context, pending PendingRegistration, userCreated, enqueueOnFailure bool) (Result, error) {
	var payload registerPayload
	if err := json.Unmarshal(pending.Payload, &payload); err != nil {
		return Result{State: StateFailed}, &StepError{Step: StepPartnerRegister, PendingID: pending.ID, UserID: pending.UserID, Err: err}
	}
	// The marker id doubles as the upstream idempotency key, so a retry
	// after an ambiguous failure cannot register the partner twice.
	payload.RegistrationKey = pending.ID

	raw, err := w.client.Post(ctx, "/partners", payload)
	if err != nil {
		if markErr := w.store.MarkAttempt(ctx, pending.ID, err.Error()); markErr != nil {
			w.logger.Error("mark pending attempt", "pending_id", pending.ID, "error", markErr)
		}
		if enqueueOnFailure {
			w.enqueueRetry(pending.ID)
		}
		return Result{State: StateFailed}, &StepError{Step: StepPartnerRegister, PendingID: pending.ID, UserID: pending.UserID, Err: err}
	}

	partner, err := backend.DecodeEntity[registeredPartner](raw)
	if err != nil {
		return Result{State: StateFailed}, &StepError{Step: StepPartnerRegister, PendingID: pending.ID, UserID: pending.UserID, Err: err}
	}
	if err := w.store.Delete(ctx, pending.ID); err != nil {
		w.logger.Error("delete pending marker", "pending_id", pending.ID, "error", err)
	}
	return Result{State: StateDone, PartnerID: partner.ID, UserID: pending.UserID, UserCreated: userCreated}, nil
}

func (w *Workflow) createUser(ctx context.Context, req SubmitRequest) (int64, error) {
	raw, err := w.client.Post(ctx, "/users", createUserRequest{
		FIN:       req.FIN,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		return 0, err
	}
	user, err := backend.DecodeEntity[createdUser](raw)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// branchFields enforces the conditional form rules: a lookup miss requires
// a password plus the fields the registry would have prefilled, and legal
// entities always need company details.
func (w *Workflow) branchFields(req SubmitRequest, lookup LookupResult) []backend.FieldError {
	var fields []backend.FieldError
	if !lookup.Found {
		if req.Password == "" {
			fields = append(fields, backend.FieldError{Field: "password", Message: "is required for a new user"})
		}
		if req.Kind == "PHYSICAL" {
			if req.FirstName == "" {
				fields = append(fields, backend.FieldError{Field: "firstName", Message: "is required"})
			}
			if req.LastName == "" {
				fields = append(fields, backend.FieldError{Field: "lastName", Message: "is required"})
			}
		}
	}
	if req.Kind == "LEGAL" {
		if req.CompanyName == "" {
			fields = append(fields, backend.FieldError{Field: "companyName", Message: "is required"})
		}
		if req.TaxID == "" {
			fields = append(fields, backend.FieldError{Field: "taxId", Message: "is required"})
		}
	}
	return fields
}

func (w *Workflow) enqueueRetry(pendingID string) {
	if w.queue == nil {
		return
	}
	task, err := NewRetryTask(pendingID)
	if err != nil {
		w.logger.Error("build retry task", "pending_id", pendingID, "error", err)
		return
	}
	if _, err := w.queue.Enqueue(task, asynq.ProcessIn(30*time.Second), asynq.MaxRetry(5)); err != nil {
		w.logger.Error("enqueue retry task", "pending_id", pendingID, "error", err)
	}
}

package onboarding

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string]PendingRegistration
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]PendingRegistration)}
}

func (s *memStore) Insert(_ context.Context, fin string, userID int64, payload []byte) (PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.entries {
		if p.FIN == fin {
			return PendingRegistration{}, ErrPendingExists
		}
	}
	pending := PendingRegistration{ID: uuid.NewString(), FIN: fin, UserID: userID, Payload: payload, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.entries[pending.ID] = pending
	return pending, nil
}

func (s *memStore) Get(_ context.Context, id string) (PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.entries[id]
	if !ok {
		return PendingRegistration{}, ErrPendingNotFound
	}
	return pending, nil
}

func (s *memStore) GetByFIN(_ context.Context, fin string) (PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.entries {
		if p.FIN == fin {
			return p, nil
		}
	}
	return PendingRegistration{}, ErrPendingNotFound
}

func (s *memStore) MarkAttempt(_ context.Context, id string, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.entries[id]
	if !ok {
		return ErrPendingNotFound
	}
	pending.Attempts++
	pending.LastError = lastError
	s.entries[id] = pending
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (q *fakeQueue) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, nil
}

// fakeUpstream scripts the three endpoints the workflow touches.
type fakeUpstream struct {
	mu             sync.Mutex
	knownFIN       string
	failRegister   bool
	userCreates    int
	registerBodies []map[string]any
}

func (f *fakeUpstream) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			fin := r.URL.Path[len("/users/by-fin/"):]
			if fin == f.knownFIN {
				_, _ = w.Write([]byte(`{"userId":42,"firstName":"AYSEL","lastName":"MAMMADOVA"}`))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/users":
			f.userCreates++
			_, _ = w.Write([]byte(`{"data":{"id":5}}`))
		case r.URL.Path == "/partners":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.registerBodies = append(f.registerBodies, body)
			if f.failRegister {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"registry timeout"}`))
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"id":77}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestWorkflow(t *testing.T, upstream *fakeUpstream, store PendingStore, queue TaskEnqueuer) (*Workflow, func()) {
	t.Helper()
	srv := httptest.NewServer(upstream.handler())
	client := backend.NewClient(srv.URL, time.Second, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	workflow := NewWorkflow(logger, client, NewLookuper(client, nil, time.Second), store, queue, validator.New())
	return workflow, srv.Close
}

func TestSubmitFoundBranchSkipsUserCreation(t *testing.T) {
	upstream := &fakeUpstream{knownFIN: "1ABCDEF"}
	store := newMemStore()
	workflow, done := newTestWorkflow(t, upstream, store, nil)
	defer done()

	result, err := workflow.Submit(context.Background(), SubmitRequest{
		FIN:  "1abcdef",
		Kind: "PHYSICAL",
	})
	require.NoError(t, err)
	require.Equal(t, StateDone, result.State)
	require.Equal(t, int64(77), result.PartnerID)
	require.Equal(t, int64(42), result.UserID)
	require.False(t, result.UserCreated)
	require.Equal(t, 0, upstream.userCreates)
	require.Equal(t, 0, store.count())

	// Prefilled registry names travel into the registration payload.
	require.Equal(t, "Aysel", upstream.registerBodies[0]["firstName"])
}

func TestSubmitNotFoundBranchCreatesUser(t *testing.T) {
	upstream := &fakeUpstream{knownFIN: "OTHER00"}
	store := newMemStore()
	workflow, done := newTestWorkflow(t, upstream, store, nil)
	defer done()

	result, err := workflow.Submit(context.Background(), SubmitRequest{
		FIN:       "9ZYXWVU",
		Kind:      "PHYSICAL",
		FirstName: "Rashad",
		LastName:  "Huseynov",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, StateDone, result.State)
	require.True(t, result.UserCreated)
	require.Equal(t, int64(5), result.UserID)
	require.Equal(t, 1, upstream.userCreates)
	require.Equal(t, 0, store.count())
	require.NotEmpty(t, upstream.registerBodies[0]["registrationKey"])
}

func TestSubmitNotFoundRequiresPassword(t *testing.T) {
	upstream := &fakeUpstream{knownFIN: "OTHER00"}
	workflow, done := newTestWorkflow(t, upstream, newMemStore(), nil)
	defer done()

	_, err := workflow.Submit(context.Background(), SubmitRequest{
		FIN:       "9ZYXWVU",
		Kind:      "PHYSICAL",
		FirstName: "Rashad",
		LastName:  "Huseynov",
	})

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "password", invalid.Fields[0].Field)
	require.Equal(t, 0, upstream.userCreates)
}

func TestSubmitLegalRequiresCompanyDetails(t *testing.T) {
	upstream := &fakeUpstream{knownFIN: "1ABCDEF"}
	workflow, done := newTestWorkflow(t, upstream, newMemStore(), nil)
	defer done()

	_, err := workflow.Submit(context.Background(), SubmitRequest{
		FIN:  "1ABCDEF",
		Kind: "LEGAL",
	})

	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	fields := make([]string, len(invalid.Fields))
	for i, f := range invalid.Fields {
		fields[i] = f.Field
	}
	require.Contains(t, fields, "companyName")
	require.Contains(t, fields, "taxId")
}

func TestSubmitRegisterFailureLeavesRetryableMarker(t *testing.T) {
	upstream := &fakeUpstream{knownFIN: "OTHER00", failRegister: true}
	store := newMemStore()
	queue := &fakeQueue{}
	workflow, done := newTestWorkflow(t, upstream, store, queue)
	defer done()

	_, err := workflow.Submit(context.Background(), SubmitRequest{
		FIN:       "9ZYXWVU",
		Kind:      "PHYSICAL",
		FirstName: "Rashad",
		LastName:  "Huseynov",
		Password:  "correct-horse",
	})

	var step *StepError
	require.ErrorAs(t, err, &step)
	require.Equal(t, StepPartnerRegister, step.Step)
	require.NotEmpty(t, step.PendingID)
	require.Equal(t, int64(5), step.UserID)
	require.Equal(t, 1, store.count())
	require.Len(t, queue.tasks, 1)
	require.Equal(t, TaskTypeRetryRegister, queue.tasks[0].Type())

	pending, getErr := store.Get(context.Background(), step.PendingID)
	require.NoError(t, getErr)
	require.Equal(t, 1, pending.Attempts)
	require.Contains(t, pending.LastError, "registry timeout")

	// The upstream recovers; the retry finishes the second step alone.
	upstream.mu.Lock()
	upstream.failRegister = false
	upstream.mu.Unlock()

	result, err := workflow.Retry(context.Background(), step.PendingID)
	require.NoError(t, err)
	require.Equal(t, StateDone, result.State)
	require.Equal(t, int64(77), result.PartnerID)
	require.Equal(t, 0, store.count())
	require.Equal(t, 1, upstream.userCreates)

	// Both attempts carried the same idempotency key.
	require.Equal(t, upstream.registerBodies[0]["registrationKey"], upstream.registerBodies[1]["registrationKey"])
}

func TestSubmitDuplicateFINPointsAtExistingMarker(t *testing.T) {
	upstream := &fakeUpstream{knownFIN: "OTHER00", failRegister: true}
	store := newMemStore()
	workflow, done := newTestWorkflow(t, upstream, store, nil)
	defer done()

	req := SubmitRequest{
		FIN:       "9ZYXWVU",
		Kind:      "PHYSICAL",
		FirstName: "Rashad",
		LastName:  "Huseynov",
		Password:  "correct-horse",
	}

	_, err := workflow.Submit(context.Background(), req)
	var step *StepError
	require.ErrorAs(t, err, &step)
	firstPending := step.PendingID

	_, err = workflow.Submit(context.Background(), req)
	var second *StepError
	require.ErrorAs(t, err, &second)
	require.ErrorIs(t, second.Err, ErrPendingExists)
	require.Equal(t, firstPending, second.PendingID)
	require.Equal(t, 1, store.count())

	// The resubmit must stop before the user-create step; the first
	// submit's user is the only one upstream.
	require.Equal(t, 1, upstream.userCreates)
	require.Len(t, upstream.registerBodies, 1)
}

func TestRetryUnknownMarker(t *testing.T) {
	upstream := &fakeUpstream{}
	workflow, done := newTestWorkflow(t, upstream, newMemStore(), nil)
	defer done()

	_, err := workflow.Retry(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrPendingNotFound)
}

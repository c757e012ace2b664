package onboarding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrPendingExists indicates an earlier submit for the same FIN
	// already committed its first step and awaits registration retry.
	ErrPendingExists = errors.New("onboarding: pending registration exists")
	// ErrPendingNotFound indicates the marker was already resolved.
	ErrPendingNotFound = errors.New("onboarding: pending registration not found")
)

// PendingRegistration is the persisted saga marker written between user
// creation and partner registration. Its existence means the first step
// committed and the second still owes a retry.
type PendingRegistration struct {
	ID        string    `json:"id"`
	FIN       string    `json:"fin"`
	UserID    int64     `json:"userId"`
	Payload   []byte    `json:"-"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store persists pending registrations in Postgres.
//
// Table: onboarding_pending(id uuid primary key, fin text unique,
// user_id bigint, payload jsonb, attempts int, last_error text,
// created_at timestamptz, updated_at timestamptz).
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs the store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Insert writes a new marker. A unique violation on the FIN maps to
// ErrPendingExists.
func (s *Store) Insert(ctx context.Context, fin string, userID int64, payload []byte) (PendingRegistration, error) {
	pending := PendingRegistration{
		ID:        uuid.NewString(),
		FIN:       fin,
		UserID:    userID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO onboarding_pending (id, fin, user_id, payload, attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 0, $5, $6)`,
		pending.ID, pending.FIN, pending.UserID, pending.Payload, pending.CreatedAt, pending.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return PendingRegistration{}, ErrPendingExists
		}
		return PendingRegistration{}, err
	}
	return pending, nil
}

// Get loads a marker by id.
func (s *Store) Get(ctx context.Context, id string) (PendingRegistration, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, fin, user_id, payload, attempts, COALESCE(last_error, ''), created_at, updated_at
		 FROM onboarding_pending WHERE id = $1`, id))
}

// GetByFIN loads a marker by identifier.
func (s *Store) GetByFIN(ctx context.Context, fin string) (PendingRegistration, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, fin, user_id, payload, attempts, COALESCE(last_error, ''), created_at, updated_at
		 FROM onboarding_pending WHERE fin = $1`, fin))
}

// MarkAttempt records a failed registration attempt.
func (s *Store) MarkAttempt(ctx context.Context, id string, lastError string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE onboarding_pending SET attempts = attempts + 1, last_error = $2, updated_at = $3 WHERE id = $1`,
		id, lastError, time.Now().UTC())
	return err
}

// Delete removes a resolved marker.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM onboarding_pending WHERE id = $1`, id)
	return err
}

// List returns outstanding markers, oldest first.
func (s *Store) List(ctx context.Context, limit int) ([]PendingRegistration, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, fin, user_id, payload, attempts, COALESCE(last_error, ''), created_at, updated_at
		 FROM onboarding_pending ORDER BY created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingRegistration
	for rows.Next() {
		var p PendingRegistration
		if err := rows.Scan(&p.ID, &p.FIN, &p.UserID, &p.Payload, &p.Attempts, &p.LastError, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// DeleteStale drops markers older than the retention window. The worker
// runs this on a schedule; operators are expected to have resolved or
// escalated them long before.
func (s *Store) DeleteStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	tag, err := s.pool.Exec(ctx, `DELETE FROM onboarding_pending WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) scanOne(row pgx.Row) (PendingRegistration, error) {
	var p PendingRegistration
	err := row.Scan(&p.ID, &p.FIN, &p.UserID, &p.Payload, &p.Attempts, &p.LastError, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PendingRegistration{}, ErrPendingNotFound
	}
	if err != nil {
		return PendingRegistration{}, err
	}
	return p, nil
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gemdesk/gemdesk/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Operator, error)
	FindByID(ctx context.Context, id int64) (*Operator, error)
	CreateSession(ctx context.Context, id string, operatorID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const operatorColumns = `id, email, name, password_hash, is_active, created_at, updated_at`

// FindByEmail fetches an operator by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Operator, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE email = $1`, email))
}

// FindByID fetches an operator by id.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*Operator, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+operatorColumns+` FROM operators WHERE id = $1`, id))
}

// CreateSession persists login session metadata for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, operatorID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO operator_sessions (id, operator_id, created_at, expires_at, ip, ua)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))`,
		id, operatorID, time.Now().UTC(), expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM operator_sessions WHERE id = $1`, id)
	return err
}

func (r *PGRepository) scanOne(row pgx.Row) (*Operator, error) {
	var op Operator
	err := row.Scan(&op.ID, &op.Email, &op.Name, &op.PasswordHash, &op.IsActive, &op.CreatedAt, &op.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}

var _ Repository = (*PGRepository)(nil)

package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gemdesk/gemdesk/internal/shared"
)

// TokenIssuer mints an upstream API token for a logged-in operator. The
// issued token is bound to the operator's session and attached to every
// request the backend adapter sends on their behalf.
type TokenIssuer interface {
	Issue(ctx context.Context, operatorEmail string) (string, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens TokenIssuer
}

// NewService constructs a new Service. tokens may be nil; sessions then
// fall back to the configured service token for upstream calls.
func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Operator, error) {
	operator, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !operator.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return operator, nil
}

// IssueBackendToken mints an upstream token for the operator, empty when
// no issuer is configured.
func (s *Service) IssueBackendToken(ctx context.Context, operatorEmail string) (string, error) {
	if s.tokens == nil {
		return "", nil
	}
	return s.tokens.Issue(ctx, operatorEmail)
}

// Operator fetches an operator by id for the session info endpoint.
func (s *Service) Operator(ctx context.Context, id int64) (*Operator, error) {
	return s.repo.FindByID(ctx, id)
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, operatorID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, operatorID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

package auth

import (
	"context"

	"github.com/gemdesk/gemdesk/internal/platform/backend"
)

// BackendTokenIssuer exchanges the gateway's service credential for an
// operator-scoped upstream token.
type BackendTokenIssuer struct {
	client *backend.Client
}

// NewBackendTokenIssuer constructs the issuer. The client must carry the
// service token; the issued tokens are narrower than it.
func NewBackendTokenIssuer(client *backend.Client) *BackendTokenIssuer {
	return &BackendTokenIssuer{client: client}
}

type issueTokenRequest struct {
	OperatorEmail string `json:"operatorEmail"`
}

type issuedToken struct {
	Token string `json:"token"`
}

// Issue mints an upstream token for the operator.
func (i *BackendTokenIssuer) Issue(ctx context.Context, operatorEmail string) (string, error) {
	raw, err := i.client.Post(ctx, "/auth/tokens", issueTokenRequest{OperatorEmail: operatorEmail})
	if err != nil {
		return "", err
	}
	token, err := backend.DecodeEntity[issuedToken](raw)
	if err != nil {
		return "", err
	}
	return token.Token, nil
}

var _ TokenIssuer = (*BackendTokenIssuer)(nil)

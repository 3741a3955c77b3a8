// Package oauth2 verifies Google ID tokens for token-based sign-in.
// The API never runs redirect flows itself; the frontend completes the
// OAuth dance and posts the resulting ID token.
package oauth2

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

// Identity is the subset of ID-token claims the platform consumes.
type Identity struct {
	ProviderID    string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
	PictureURL    string
}

// TokenVerifier validates a raw ID token and extracts the identity.
// Usecases depend on this interface so tests can stub Google out.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) TokenVerifier {
	return &googleVerifier{clientID: clientID}
}

func (g *googleVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, rawToken, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", xerrors.ErrInvalidToken, err)
	}

	ident := &Identity{ProviderID: payload.Subject}
	ident.Email, _ = payload.Claims["email"].(string)
	ident.EmailVerified, _ = payload.Claims["email_verified"].(bool)
	ident.FirstName, _ = payload.Claims["given_name"].(string)
	ident.LastName, _ = payload.Claims["family_name"].(string)
	ident.PictureURL, _ = payload.Claims["picture"].(string)

	if ident.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email claim", xerrors.ErrInvalidToken)
	}
	return ident, nil
}

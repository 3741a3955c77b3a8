package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/service/oauth2"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

// stubVerifier returns a fixed identity for any token, or an error.
type stubVerifier struct {
	ident *oauth2.Identity
	err   error
}

func (s *stubVerifier) Verify(ctx context.Context, raw string) (*oauth2.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ident, nil
}

func googleIdentity() *oauth2.Identity {
	return &oauth2.Identity{
		ProviderID:    "google-sub-123",
		Email:         "donor@example.com",
		EmailVerified: true,
		FirstName:     "Ada",
		LastName:      "Lovelace",
	}
}

func newOAuthFixture(t *testing.T, users *memUserRepo, verifier oauth2.TokenVerifier) *OAuthUsecase {
	t.Helper()
	authUC := newAuthFixture(t, users)
	return NewOAuthUsecase(users, verifier, authUC, zap.NewNop())
}

func TestGoogleSignIn(t *testing.T) {
	t.Parallel()

	t.Run("creates a verified passwordless account", func(t *testing.T) {
		t.Parallel()
		users := newMemUserRepo()
		uc := newOAuthFixture(t, users, &stubVerifier{ident: googleIdentity()})

		user, pair, err := uc.GoogleSignIn(context.Background(), "raw-token")
		require.NoError(t, err)

		assert.Equal(t, domain.ProviderGoogle, user.AuthProvider)
		assert.True(t, user.EmailVerified)
		assert.False(t, user.HasPassword())
		assert.NotEmpty(t, pair.AccessToken)
	})

	t.Run("auto-links an existing email account", func(t *testing.T) {
		t.Parallel()
		users := newMemUserRepo()
		authUC := newAuthFixture(t, users)
		registered, _, err := authUC.Register(context.Background(), RegisterRequest{
			Email: "donor@example.com", Password: "correcthorse",
			FirstName: "Ada", LastName: "Lovelace",
		})
		require.NoError(t, err)

		uc := NewOAuthUsecase(users, &stubVerifier{ident: googleIdentity()}, authUC, zap.NewNop())
		user, _, err := uc.GoogleSignIn(context.Background(), "raw-token")
		require.NoError(t, err)

		assert.Equal(t, registered.ID, user.ID)
		require.NotNil(t, user.AuthProviderID)
		assert.Equal(t, "google-sub-123", *user.AuthProviderID)
	})

	t.Run("repeat sign-in finds the same account", func(t *testing.T) {
		t.Parallel()
		users := newMemUserRepo()
		uc := newOAuthFixture(t, users, &stubVerifier{ident: googleIdentity()})

		first, _, err := uc.GoogleSignIn(context.Background(), "raw-token")
		require.NoError(t, err)
		second, _, err := uc.GoogleSignIn(context.Background(), "raw-token")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("invalid token surfaces the verifier error", func(t *testing.T) {
		t.Parallel()
		uc := newOAuthFixture(t, newMemUserRepo(), &stubVerifier{err: xerrors.ErrInvalidToken})

		_, _, err := uc.GoogleSignIn(context.Background(), "bad")
		assert.ErrorIs(t, err, xerrors.ErrInvalidToken)
	})
}

func TestGoogleUnlink(t *testing.T) {
	t.Parallel()

	t.Run("refused when google is the only sign-in method", func(t *testing.T) {
		t.Parallel()
		users := newMemUserRepo()
		uc := newOAuthFixture(t, users, &stubVerifier{ident: googleIdentity()})

		user, _, err := uc.GoogleSignIn(context.Background(), "raw-token")
		require.NoError(t, err)

		_, err = uc.Unlink(context.Background(), user.ID)
		assert.ErrorIs(t, err, xerrors.ErrLastAuthMethod)
	})

	t.Run("allowed once a password exists", func(t *testing.T) {
		t.Parallel()
		users := newMemUserRepo()
		authUC := newAuthFixture(t, users)
		registered, _, err := authUC.Register(context.Background(), RegisterRequest{
			Email: "donor@example.com", Password: "correcthorse",
			FirstName: "Ada", LastName: "Lovelace",
		})
		require.NoError(t, err)

		uc := NewOAuthUsecase(users, &stubVerifier{ident: googleIdentity()}, authUC, zap.NewNop())
		_, err = uc.Link(context.Background(), registered.ID, "raw-token")
		require.NoError(t, err)

		user, err := uc.Unlink(context.Background(), registered.ID)
		require.NoError(t, err)
		assert.Nil(t, user.AuthProviderID)
	})

	t.Run("linking an identity owned elsewhere is refused", func(t *testing.T) {
		t.Parallel()
		users := newMemUserRepo()
		uc := newOAuthFixture(t, users, &stubVerifier{ident: googleIdentity()})

		// identity claimed by a google-only account
		_, _, err := uc.GoogleSignIn(context.Background(), "raw-token")
		require.NoError(t, err)

		other, _, err := uc.authUC.Register(context.Background(), RegisterRequest{
			Email: "other@example.com", Password: "correcthorse",
			FirstName: "Grace", LastName: "Hopper",
		})
		require.NoError(t, err)

		_, err = uc.Link(context.Background(), other.ID, "raw-token")
		assert.ErrorIs(t, err, xerrors.ErrProviderLinked)
	})
}

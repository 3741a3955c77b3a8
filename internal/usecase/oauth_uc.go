package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/internal/service/oauth2"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/id"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

// OAuthStatus summarizes a user's linked sign-in methods.
type OAuthStatus struct {
	GoogleConnected bool `json:"google_connected"`
	HasPassword     bool `json:"has_password"`
}

// OAuthUsecase implements Google ID-token sign-in: the frontend runs
// the OAuth flow and posts the resulting token here.
type OAuthUsecase struct {
	users  repository.UserRepository
	google oauth2.TokenVerifier
	authUC *AuthUsecase
	logger *zap.Logger
}

func NewOAuthUsecase(
	users repository.UserRepository,
	google oauth2.TokenVerifier,
	authUC *AuthUsecase,
	logger *zap.Logger,
) *OAuthUsecase {
	return &OAuthUsecase{users: users, google: google, authUC: authUC, logger: logger}
}

// GoogleSignIn signs a user in with a verified Google ID token. Match
// order: provider ID, then email (auto-link and mark verified), else a
// new passwordless account.
func (u *OAuthUsecase) GoogleSignIn(ctx context.Context, rawToken string) (*domain.User, *TokenPair, error) {
	ident, err := u.google.Verify(ctx, rawToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := u.users.GetByProviderID(ctx, domain.ProviderGoogle, ident.ProviderID)
	if errors.Is(err, xerrors.ErrUserNotFound) {
		user, err = u.linkOrCreate(ctx, ident)
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, xerrors.ErrUnauthorized
	}

	pair, err := u.authUC.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	u.logger.Info("google sign-in", zap.String("user_id", user.ID))
	return user, pair, nil
}

func (u *OAuthUsecase) linkOrCreate(ctx context.Context, ident *oauth2.Identity) (*domain.User, error) {
	existing, err := u.users.GetByEmail(ctx, ident.Email)
	if err == nil {
		// account exists under this email; link the provider and trust
		// Google's verification of the address
		if err := u.users.LinkProvider(ctx, existing.ID, domain.ProviderGoogle, ident.ProviderID); err != nil {
			return nil, err
		}
		return u.users.GetByID(ctx, existing.ID)
	}
	if !errors.Is(err, xerrors.ErrUserNotFound) {
		return nil, err
	}

	user := &domain.User{
		ID:              id.GenerateUUID("usr"),
		Email:           ident.Email,
		FirstName:       ident.FirstName,
		LastName:        ident.LastName,
		ProfileImageURL: ident.PictureURL,
		AuthProvider:    domain.ProviderGoogle,
		AuthProviderID:  &ident.ProviderID,
		EmailVerified:   true,
		IsActive:        true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Link attaches a Google identity to an authenticated account.
func (u *OAuthUsecase) Link(ctx context.Context, userID, rawToken string) (*domain.User, error) {
	ident, err := u.google.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	// refuse if the Google identity already belongs to someone else
	owner, err := u.users.GetByProviderID(ctx, domain.ProviderGoogle, ident.ProviderID)
	if err == nil && owner.ID != userID {
		return nil, xerrors.ErrProviderLinked
	}
	if err != nil && !errors.Is(err, xerrors.ErrUserNotFound) {
		return nil, err
	}

	if err := u.users.LinkProvider(ctx, userID, domain.ProviderGoogle, ident.ProviderID); err != nil {
		return nil, err
	}
	return u.users.GetByID(ctx, userID)
}

// Unlink removes the Google identity. Refused when it is the only way
// into the account.
func (u *OAuthUsecase) Unlink(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AuthProviderID == nil {
		return nil, xerrors.ErrProviderNotLinked
	}
	if !user.HasPassword() {
		return nil, xerrors.ErrLastAuthMethod
	}

	if err := u.users.UnlinkProvider(ctx, userID); err != nil {
		return nil, err
	}
	return u.users.GetByID(ctx, userID)
}

func (u *OAuthUsecase) Status(ctx context.Context, userID string) (*OAuthStatus, error) {
	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &OAuthStatus{
		GoogleConnected: user.AuthProvider == domain.ProviderGoogle && user.AuthProviderID != nil,
		HasPassword:     user.HasPassword(),
	}, nil
}

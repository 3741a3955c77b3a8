package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/VIDUSHH/kindnesshome-backend/internal/domain"
	"github.com/VIDUSHH/kindnesshome-backend/internal/repository"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/id"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/jwtutil"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/xerrors"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// TokenPair is the issued session: a short-lived access token and a
// long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthUsecase struct {
	users    repository.UserRepository
	tokens   *jwtutil.Generator
	verifier *jwtutil.Verifier
	logger   *zap.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	tokens *jwtutil.Generator,
	verifier *jwtutil.Verifier,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{users: users, tokens: tokens, verifier: verifier, logger: logger}
}

func (u *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*domain.User, *TokenPair, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" {
		return nil, nil, xerrors.ErrEmailRequired
	}
	if !strings.Contains(req.Email, "@") {
		return nil, nil, xerrors.ErrInvalidEmailFormat
	}
	if req.Password == "" {
		return nil, nil, xerrors.ErrPasswordRequired
	}
	if len(req.Password) < 8 {
		return nil, nil, xerrors.ErrPasswordTooShort
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, nil, xerrors.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	hashStr := string(hash)

	user := &domain.User{
		ID:           id.GenerateUUID("usr"),
		Email:        req.Email,
		PasswordHash: &hashStr,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		AuthProvider: domain.ProviderEmail,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := u.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	u.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, pair, nil
}

// Login verifies credentials. All failures collapse into one
// ErrInvalidCredentials so callers cannot probe for accounts.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := u.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, nil, xerrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, xerrors.ErrInvalidCredentials
	}
	if !user.HasPassword() {
		// OAuth-only account; password login impossible
		return nil, nil, xerrors.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) != nil {
		return nil, nil, xerrors.ErrInvalidCredentials
	}

	pair, err := u.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh access token.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := u.verifier.ParseRefresh(refreshToken)
	if err != nil {
		return "", xerrors.ErrInvalidToken
	}

	user, err := u.users.GetByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return "", xerrors.ErrUserNotFound
	}

	access, _, err := u.tokens.Generate(user.ID, user.Email, jwtutil.PurposeAccess)
	return access, err
}

func (u *AuthUsecase) Me(ctx context.Context, userID string) (*domain.User, error) {
	return u.users.GetByID(ctx, userID)
}

func (u *AuthUsecase) issueTokens(user *domain.User) (*TokenPair, error) {
	access, _, err := u.tokens.Generate(user.ID, user.Email, jwtutil.PurposeAccess)
	if err != nil {
		return nil, err
	}
	refresh, _, err := u.tokens.Generate(user.ID, user.Email, jwtutil.PurposeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/pkg/jwtutil"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxEmail  contextKey = "email"
)

type AuthMiddleware struct {
	verifier *jwtutil.Verifier
	logger   *zap.Logger
}

func NewAuthMiddleware(verifier *jwtutil.Verifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Require rejects requests without a valid access token and puts the
// caller's identity on the request context.
func (am *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := am.verifier.ParseAccess(token)
		if err != nil {
			am.logger.Debug("token rejected", zap.Error(err))
			if errors.Is(err, jwtutil.ErrWrongPurpose) {
				response.Error(w, http.StatusUnauthorized, "token purpose not allowed here")
				return
			}
			response.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxEmail, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the caller's identity when a valid token is
// present but lets anonymous requests through. Public donation
// endpoints use it so signed-in donors are attributed.
func (am *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, err := am.verifier.ParseAccess(token); err == nil {
				ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
				ctx = context.WithValue(ctx, ctxEmail, claims.Email)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the authenticated user id, or "" for anonymous
// requests.
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(ctxUserID).(string)
	return v
}

func Email(ctx context.Context) string {
	v, _ := ctx.Value(ctxEmail).(string)
	return v
}

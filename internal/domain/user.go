package domain

import "time"

type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
)

type User struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	PasswordHash    *string      `json:"-"` // nil for OAuth-only accounts
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	Phone           string       `json:"phone,omitempty"`
	ProfileImageURL string       `json:"profile_image_url,omitempty"`
	AuthProvider    AuthProvider `json:"auth_provider"`
	AuthProviderID  *string      `json:"-"`
	EmailVerified   bool         `json:"email_verified"`
	IsActive        bool         `json:"is_active"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// FullName is the display name used on receipts and donation feeds.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasPassword reports whether the account can sign in with credentials,
// which gates unlinking the OAuth provider.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

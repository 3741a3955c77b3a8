package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token purposes carried in the purpose claim.
const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
)

type Claims struct {
	UserID  string `json:"uid"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

package jwtutil

import (
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongPurpose = errors.New("token purpose mismatch")
)

// Verifier validates RS256 tokens minted by Generator. Keys are looked
// up by the kid header so rotated keys keep verifying until they age
// out; tokens without a kid fall back to the default key.
type Verifier struct {
	pubKeys  map[string]*rsa.PublicKey
	defPub   *rsa.PublicKey
	issuer   string
	audience string
}

func NewVerifier(def *rsa.PublicKey, issuer, audience string) *Verifier {
	return &Verifier{
		pubKeys:  map[string]*rsa.PublicKey{},
		defPub:   def,
		issuer:   issuer,
		audience: audience,
	}
}

// AddKey registers a rotated public key. Not safe to call after the
// verifier is shared across goroutines.
func (v *Verifier) AddKey(kid string, pub *rsa.PublicKey) {
	v.pubKeys[kid] = pub
}

func (v *Verifier) keyFor(t *jwt.Token) (any, error) {
	if kid, _ := t.Header["kid"].(string); kid != "" {
		if pub, ok := v.pubKeys[kid]; ok {
			return pub, nil
		}
	}
	if v.defPub == nil {
		return nil, ErrInvalidToken
	}
	return v.defPub, nil
}

// ParseAccess validates a token presented as an API credential.
func (v *Verifier) ParseAccess(tokenStr string) (*Claims, error) {
	return v.parse(tokenStr, PurposeAccess)
}

// ParseRefresh validates a token presented to mint a new access token.
// Access tokens are rejected here so a leaked short-lived credential
// cannot be exchanged for a long-lived one.
func (v *Verifier) ParseRefresh(tokenStr string) (*Claims, error) {
	return v.parse(tokenStr, PurposeRefresh)
}

func (v *Verifier) parse(tokenStr, purpose string) (*Claims, error) {
	claims := new(Claims)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, claims, v.keyFor)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

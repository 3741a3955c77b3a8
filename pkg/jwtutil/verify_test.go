package jwtutil

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyPair(t *testing.T) (*Generator, *Verifier, *rsa.PrivateKey) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	gen := NewGenerator(priv, "kindnesshome", "kindnesshome-api", "k1", 15*time.Minute, time.Hour)
	ver := NewVerifier(&priv.PublicKey, "kindnesshome", "kindnesshome-api")
	ver.AddKey("k1", &priv.PublicKey)
	return gen, ver, priv
}

func TestParseAccessRoundTrip(t *testing.T) {
	t.Parallel()

	gen, ver, _ := testKeyPair(t)
	token, _, err := gen.Generate("usr_1", "ada@example.com", PurposeAccess)
	require.NoError(t, err)

	claims, err := ver.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, PurposeAccess, claims.Purpose)
}

func TestParsePurposeEnforced(t *testing.T) {
	t.Parallel()

	gen, ver, _ := testKeyPair(t)
	access, _, err := gen.Generate("usr_1", "ada@example.com", PurposeAccess)
	require.NoError(t, err)
	refresh, _, err := gen.Generate("usr_1", "ada@example.com", PurposeRefresh)
	require.NoError(t, err)

	_, err = ver.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	_, err = ver.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	claims, err := ver.ParseRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)
}

func TestParseRejectsTampered(t *testing.T) {
	t.Parallel()

	gen, ver, _ := testKeyPair(t)
	token, _, err := gen.Generate("usr_1", "", PurposeAccess)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = parts[1][:len(parts[1])-2] + "xx"

	_, err = ver.ParseAccess(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ver.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongAudience(t *testing.T) {
	t.Parallel()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	gen := NewGenerator(priv, "kindnesshome", "another-api", "k1", 15*time.Minute, time.Hour)
	ver := NewVerifier(&priv.PublicKey, "kindnesshome", "kindnesshome-api")

	token, _, err := gen.Generate("usr_1", "", PurposeAccess)
	require.NoError(t, err)

	_, err = ver.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNonRSAAlg(t *testing.T) {
	t.Parallel()

	_, ver, _ := testKeyPair(t)

	// An attacker re-signing with HMAC must not get past the RS256
	// allowlist regardless of what keyFor returns.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:  "usr_1",
		Purpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "kindnesshome",
			Audience:  []string{"kindnesshome-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	tokenStr, err := forged.SignedString([]byte("shared-secret"))
	require.NoError(t, err)

	_, err = ver.ParseAccess(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseKeyRotation(t *testing.T) {
	t.Parallel()

	oldKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	newKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	oldGen := NewGenerator(oldKey, "kindnesshome", "kindnesshome-api", "k1", 15*time.Minute, time.Hour)
	newGen := NewGenerator(newKey, "kindnesshome", "kindnesshome-api", "k2", 15*time.Minute, time.Hour)

	// Default key is the new one; the retired key stays registered
	// under its kid until outstanding tokens expire.
	ver := NewVerifier(&newKey.PublicKey, "kindnesshome", "kindnesshome-api")
	ver.AddKey("k1", &oldKey.PublicKey)
	ver.AddKey("k2", &newKey.PublicKey)

	oldToken, _, err := oldGen.Generate("usr_1", "", PurposeAccess)
	require.NoError(t, err)
	newToken, _, err := newGen.Generate("usr_2", "", PurposeAccess)
	require.NoError(t, err)

	claims, err := ver.ParseAccess(oldToken)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)

	claims, err = ver.ParseAccess(newToken)
	require.NoError(t, err)
	assert.Equal(t, "usr_2", claims.UserID)
}

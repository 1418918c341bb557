package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("super-secret", time.Hour)

	token, expiresAt, err := tm.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	subject, issuedAt, err := tm.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", subject)
	require.WithinDuration(t, time.Now(), issuedAt, 5*time.Second)
}

func TestVerifyExpired(t *testing.T) {
	secret := "super-secret"
	tm := NewTokenManager(secret, time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, err = tm.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewTokenManager("right-secret", time.Hour)
	verifier := NewTokenManager("wrong-secret", time.Hour)

	token, _, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMalformed(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	for _, token := range []string{"", "not.a.jwt", "garbage"} {
		_, _, err := tm.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyRejectsForeignSigningMethod(t *testing.T) {
	secret := "super-secret"
	tm := NewTokenManager(secret, time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, err = tm.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	secret := "super-secret"
	tm := NewTokenManager(secret, time.Hour)

	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, err = tm.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

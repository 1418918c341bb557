package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed structure, bad signatures and claim
// mismatches. Expired tokens surface as ErrTokenExpired.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenManager issues and verifies signed session tokens. The secret and TTL
// are fixed at construction and never mutated, so a single instance is safe
// for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL returns the validity window embedded in issued tokens.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue builds and signs a session token for the subject.
func (tm *TokenManager) Issue(subjectID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates the signature, structure and expiry of a token and
// returns the subject identifier along with the issue time.
func (tm *TokenManager) Verify(tokenStr string) (subjectID string, issuedAt time.Time, err error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", time.Time{}, ErrTokenExpired
		}
		return "", time.Time{}, ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" || claims.IssuedAt == nil {
		return "", time.Time{}, ErrInvalidToken
	}
	return claims.Subject, claims.IssuedAt.Time, nil
}

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const resetTokenBytes = 32

// ResetToken carries a freshly generated password reset credential. Raw is
// handed to the user and never persisted; only Digest is stored.
type ResetToken struct {
	Raw       string
	Digest    string
	ExpiresAt time.Time
}

// GenerateResetToken draws a 256-bit token from the system CSPRNG and
// returns it together with its stored digest and expiry.
func GenerateResetToken(ttl time.Duration) (*ResetToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	raw := hex.EncodeToString(buf)
	return &ResetToken{
		Raw:       raw,
		Digest:    HashResetToken(raw),
		ExpiresAt: time.Now().Add(ttl),
	}, nil
}

// HashResetToken re-derives the stored digest from a client-supplied raw
// token. SHA-256 suffices here: the input already carries 256 bits of
// entropy, so this is a lookup key, not a password hash.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

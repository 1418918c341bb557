package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/moona-liza/natours/internal/domain"
	apperrors "github.com/moona-liza/natours/pkg/util"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "jwt"

// logoutSentinel replaces the cookie value on logout; it expires almost
// immediately and never verifies as a token.
const logoutSentinel = "loggedout"

// SessionIssuer turns an authenticated user into a delivered session: a
// signed token in the response body plus an HTTP-only cookie. It runs only
// after authentication has already succeeded.
type SessionIssuer struct {
	tokens    *TokenManager
	cookieTTL time.Duration
	secure    bool
}

// NewSessionIssuer builds the issuer. secure controls the cookie Secure flag
// and should be set when serving over TLS.
func NewSessionIssuer(tokens *TokenManager, cookieTTL time.Duration, secure bool) *SessionIssuer {
	if cookieTTL <= 0 {
		cookieTTL = tokens.TTL()
	}
	return &SessionIssuer{tokens: tokens, cookieTTL: cookieTTL, secure: secure}
}

// Send issues a session token for the user, sets the session cookie and
// writes the standard auth response. The user representation is sanitized so
// the credential hash never reaches the wire.
func (s *SessionIssuer) Send(c *fiber.Ctx, user *domain.User, status int) error {
	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(s.cookieTTL),
		HTTPOnly: true,
		Secure:   s.secure,
	})

	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"token":  token,
		"data": fiber.Map{
			"user": user.Sanitized(),
		},
	})
}

// Expire overwrites the session cookie with a short-lived sentinel value.
func (s *SessionIssuer) Expire(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    logoutSentinel,
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   s.secure,
	})
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "success"})
}

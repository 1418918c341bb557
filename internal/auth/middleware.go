package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/moona-liza/natours/internal/domain"
	"github.com/moona-liza/natours/internal/repository"
	apperrors "github.com/moona-liza/natours/pkg/util"
)

const currentUserKey = "auth_current_user"

// Middleware guards routes: it verifies the inbound session token, resolves
// the live account and rejects tokens issued before the last credential
// change. Every rejection maps to the same 401 so the client cannot tell
// which check failed.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Protect enforces authentication for protected routes and attaches the
// resolved user to the request for downstream handlers.
func (m *Middleware) Protect(c *fiber.Ctx) error {
	user, err := m.resolve(c)
	if err != nil {
		return err
	}
	c.Locals(currentUserKey, user)
	return c.Next()
}

// LoadUser runs the same checks as Protect but never rejects: on any failure
// the request simply proceeds without an identity. Intended for
// personalization only, never for protecting mutating operations.
func (m *Middleware) LoadUser(c *fiber.Ctx) error {
	if user, err := m.resolve(c); err == nil {
		c.Locals(currentUserKey, user)
	}
	return c.Next()
}

func (m *Middleware) resolve(c *fiber.Ctx) (*domain.User, error) {
	token := extractToken(c)
	if token == "" {
		return nil, apperrors.NewUnauthorized("you are not logged in, please log in to get access")
	}

	subjectID, issuedAt, err := m.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}

	user, err := m.users.GetByID(c.Context(), subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("the user belonging to this token no longer exists")
		}
		return nil, apperrors.MapError(err)
	}

	if user.PasswordChangedAfter(issuedAt) {
		return nil, apperrors.NewUnauthorized("password was changed recently, please log in again")
	}

	return user, nil
}

// extractToken pulls the session token from the Authorization header or the
// session cookie, header taking precedence.
func extractToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Cookies(SessionCookieName)
}

// CurrentUser retrieves the authenticated user attached by Protect or LoadUser.
func CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(currentUserKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

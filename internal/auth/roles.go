package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moona-liza/natours/internal/domain"
	apperrors "github.com/moona-liza/natours/pkg/util"
)

// RequireRoles authorizes an already-identified request against a role set.
// It must run after Protect in the handler chain; a request without an
// attached user is rejected as unauthenticated, not forbidden.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return apperrors.NewUnauthorized("you are not logged in, please log in to get access")
		}
		if _, exists := allowedSet[user.Role]; !exists {
			return apperrors.NewForbidden("you do not have permission to perform this action")
		}
		return c.Next()
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/moona-liza/natours/internal/domain"
)

func TestRequireRolesPerRole(t *testing.T) {
	allRoles := []domain.Role{domain.RoleUser, domain.RoleGuide, domain.RoleLeadGuide, domain.RoleAdmin}
	allowed := []domain.Role{domain.RoleAdmin, domain.RoleLeadGuide}

	tm := NewTokenManager("secret", time.Hour)

	for _, role := range allRoles {
		user := &domain.User{ID: "u-" + string(role), Email: string(role) + "@x.com", Role: role}
		mw := NewMiddleware(tm, newFakeUserRepo(user))
		app := testApp(mw.Protect, RequireRoles(allowed...))

		token, _, err := tm.Issue(user.ID)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)

		switch role {
		case domain.RoleAdmin, domain.RoleLeadGuide:
			require.Equal(t, http.StatusOK, resp.StatusCode, "role %s", role)
		default:
			require.Equal(t, http.StatusForbidden, resp.StatusCode, "role %s", role)
		}
	}
}

func TestRequireRolesWithoutIdentity(t *testing.T) {
	// gate running without Protect ahead of it treats the request as
	// unauthenticated, not forbidden
	app := testApp(RequireRoles(domain.RoleAdmin))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

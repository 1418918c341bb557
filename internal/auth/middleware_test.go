package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/moona-liza/natours/internal/domain"
	apperrors "github.com/moona-liza/natours/pkg/util"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id, digest string, expiresAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordResetToken = &digest
	u.PasswordResetExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ClearResetToken(_ context.Context, id string) error {
	if u, ok := r.users[id]; ok {
		u.PasswordResetToken = nil
		u.PasswordResetExpiresAt = nil
	}
	return nil
}

func (r *fakeUserRepo) CompleteReset(_ context.Context, digest, hash string) (*domain.User, error) {
	for _, u := range r.users {
		if u.PasswordResetToken == nil || *u.PasswordResetToken != digest {
			continue
		}
		if u.PasswordResetExpiresAt == nil || time.Now().After(*u.PasswordResetExpiresAt) {
			break
		}
		now := time.Now()
		u.PasswordHash = hash
		u.PasswordChangedAt = &now
		u.PasswordResetToken = nil
		u.PasswordResetExpiresAt = nil
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func testApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"message": de.Message})
		},
	})
	app.Get("/guarded", append(handlers, func(c *fiber.Ctx) error {
		if user, ok := CurrentUser(c); ok {
			return c.JSON(fiber.Map{"user": user.ID})
		}
		return c.JSON(fiber.Map{"user": nil})
	})...)
	return app
}

func TestProtectRejectsMissingToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	mw := NewMiddleware(tm, newFakeUserRepo())
	app := testApp(mw.Protect)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectRejectsBadToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	mw := NewMiddleware(tm, newFakeUserRepo())
	app := testApp(mw.Protect)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not.a.token")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectRejectsDeletedAccount(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	mw := NewMiddleware(tm, newFakeUserRepo())
	app := testApp(mw.Protect)

	token, _, err := tm.Issue("ghost")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectRejectsStaleCredential(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	changed := time.Now().Add(time.Hour)
	user := &domain.User{ID: "u1", Email: "a@x.com", Role: domain.RoleUser, PasswordChangedAt: &changed}
	mw := NewMiddleware(tm, newFakeUserRepo(user))
	app := testApp(mw.Protect)

	token, _, err := tm.Issue("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectAttachesUser(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &domain.User{ID: "u1", Email: "a@x.com", Role: domain.RoleUser}
	mw := NewMiddleware(tm, newFakeUserRepo(user))
	app := testApp(mw.Protect)

	token, _, err := tm.Issue("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectAcceptsCookieToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &domain.User{ID: "u1", Email: "a@x.com", Role: domain.RoleUser}
	mw := NewMiddleware(tm, newFakeUserRepo(user))
	app := testApp(mw.Protect)

	token, _, err := tm.Issue("u1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoadUserNeverRejects(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	mw := NewMiddleware(tm, newFakeUserRepo())
	app := testApp(mw.LoadUser)

	// no token
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// garbage token
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/moona-liza/natours/internal/api/dto"
	"github.com/moona-liza/natours/internal/auth"
	"github.com/moona-liza/natours/internal/domain"
	"github.com/moona-liza/natours/internal/service"
	apperrors "github.com/moona-liza/natours/pkg/util"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	sessions    *auth.SessionIssuer
	logger      *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *auth.SessionIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, logger: logger}
}

// Signup handles POST /api/v1/users/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	user, err := h.authService.Signup(c.Context(),
		req.Name, req.Email, req.Password, req.PasswordConfirm,
		domain.Role(req.Role), baseURL(c))
	if err != nil {
		return err
	}
	return h.sessions.Send(c, user, http.StatusCreated)
}

// Login handles POST /api/v1/users/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	user, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return h.sessions.Send(c, user, http.StatusOK)
}

// Logout handles GET /api/v1/users/logout. The route runs behind the
// non-blocking LoadUser check, so logout succeeds with or without a valid
// session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if user, ok := auth.CurrentUser(c); ok {
		h.logger.Info("user logged out", zap.String("user_id", user.ID))
	}
	return h.sessions.Expire(c)
}

// ForgotPassword handles POST /api/v1/users/forgotPassword.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	if err := h.authService.ForgotPassword(c.Context(), req.Email, baseURL(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "token sent to email",
	})
}

// ResetPassword handles PATCH /api/v1/users/resetPassword/:token.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	user, err := h.authService.ResetPassword(c.Context(),
		c.Params("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return h.sessions.Send(c, user, http.StatusOK)
}

// UpdateMyPassword handles PATCH /api/v1/users/updateMyPassword. Requires
// Protect to have attached the current user.
func (h *AuthHandler) UpdateMyPassword(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("you are not logged in, please log in to get access")
	}

	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}

	updated, err := h.authService.UpdatePassword(c.Context(),
		user.ID, req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return h.sessions.Send(c, updated, http.StatusOK)
}

func baseURL(c *fiber.Ctx) string {
	return c.Protocol() + "://" + c.Hostname()
}

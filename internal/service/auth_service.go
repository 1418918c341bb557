package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/moona-liza/natours/internal/auth"
	"github.com/moona-liza/natours/internal/config"
	"github.com/moona-liza/natours/internal/domain"
	"github.com/moona-liza/natours/internal/events"
	"github.com/moona-liza/natours/internal/mailer"
	"github.com/moona-liza/natours/internal/repository"
	apperrors "github.com/moona-liza/natours/pkg/util"
)

const minPasswordLength = 8

// AuthService coordinates signup, login, password change and the two-phase
// password reset protocol.
type AuthService struct {
	users      repository.UserRepository
	notifier   mailer.Notifier
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Notifier   mailer.Notifier
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL()),
		logger:     deps.Logger,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.ResetTTL(),
	}
}

// TokenManager exposes the underlying token manager for middleware and
// session issuing.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Signup creates a new account. A client-supplied role is honored only for
// the non-privileged roles; admin and lead-guide can never be self-assigned.
func (s *AuthService) Signup(ctx context.Context, name, email, password, passwordConfirm string, role domain.Role, baseURL string) (*domain.User, error) {
	if name == "" || email == "" || password == "" || passwordConfirm == "" {
		return nil, apperrors.NewBadRequest("please provide name, email and password")
	}
	if err := validatePassword(password, passwordConfirm); err != nil {
		return nil, err
	}

	switch role {
	case "":
		role = domain.RoleUser
	case domain.RoleUser, domain.RoleGuide:
	default:
		return nil, apperrors.NewValidationError("role not allowed at signup", map[string]any{"role": string(role)})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewValidationError("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventUserSignedUp, user.ID, events.UserSignedUpPayload{
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		ProfileURL: baseURL + "/me",
	})
	return user, nil
}

// Login authenticates email/password credentials. Every failure collapses
// into the same generic unauthorized error so a caller cannot probe which
// part was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewBadRequest("please provide email and password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("incorrect email or password")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("incorrect email or password")
	}
	return user, nil
}

// ForgotPassword starts the reset protocol: it stores the digest of a fresh
// one-time token on the account and mails the raw token to the user. When
// delivery fails the stored digest is rolled back so no unreachable token
// stays live.
func (s *AuthService) ForgotPassword(ctx context.Context, email, baseURL string) error {
	if email == "" {
		return apperrors.NewBadRequest("please provide an email address")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return apperrors.MapError(err)
	}

	reset, err := auth.GenerateResetToken(s.resetTTL)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, reset.Digest, reset.ExpiresAt); err != nil {
		return apperrors.MapError(err)
	}

	resetURL := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", baseURL, reset.Raw)
	if err := s.notifier.SendPasswordReset(ctx, user, resetURL); err != nil {
		if clearErr := s.users.ClearResetToken(context.WithoutCancel(ctx), user.ID); clearErr != nil {
			s.logger.Error("failed to roll back reset token", zap.Error(clearErr), zap.String("user_id", user.ID))
		}
		return apperrors.NewDeliveryError(err)
	}

	s.publish(ctx, events.EventPasswordResetRequested, user.ID, events.PasswordResetRequestedPayload{
		Email:     user.Email,
		ExpiresAt: reset.ExpiresAt,
	})
	return nil
}

// ResetPassword completes the protocol. The repository applies the match,
// the new hash, the reset-field clearing and the credential-changed bump in
// one statement, so a token can only ever be consumed once.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (*domain.User, error) {
	if rawToken == "" {
		return nil, apperrors.NewInvalidResetToken()
	}
	if err := validatePassword(password, passwordConfirm); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user, err := s.users.CompleteReset(ctx, auth.HashResetToken(rawToken), hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidResetToken()
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventPasswordChanged, user.ID, events.PasswordChangedPayload{
		Email: user.Email,
		Reset: true,
	})
	return user, nil
}

// UpdatePassword changes the credential of an authenticated user after
// re-verifying the current password.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, password, passwordConfirm string) (*domain.User, error) {
	if currentPassword == "" {
		return nil, apperrors.NewBadRequest("please provide your current password")
	}
	if err := validatePassword(password, passwordConfirm); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("the user belonging to this token no longer exists")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return nil, apperrors.NewUnauthorized("your current password is wrong")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventPasswordChanged, user.ID, events.PasswordChangedPayload{
		Email: user.Email,
	})
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func validatePassword(password, passwordConfirm string) error {
	if len(password) < minPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength), nil)
	}
	if password != passwordConfirm {
		return apperrors.NewValidationError("passwords do not match", nil)
	}
	return nil
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/moona-liza/natours/internal/domain"
	"github.com/moona-liza/natours/internal/events"
	"github.com/moona-liza/natours/internal/mailer"
)

// NotificationService reacts to account events. The welcome email rides the
// event path because its failure must never fail the signup; the password
// reset email is sent synchronously by AuthService since its failure has to
// roll back stored state.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   mailer.Notifier
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier mailer.Notifier, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserSignedUp, n.handleUserSignedUp)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
	n.dispatcher.Subscribe(events.EventPasswordChanged, n.handlePasswordChanged)
}

func (n *NotificationService) handleUserSignedUp(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserSignedUpPayload)
	if !ok {
		return nil
	}
	n.logger.Info("UserSignedUp", zap.String("user_id", event.UserID), zap.String("email", payload.Email))

	user := &domain.User{ID: event.UserID, Name: payload.Name, Email: payload.Email, Role: payload.Role}
	if err := n.notifier.SendWelcome(ctx, user, payload.ProfileURL); err != nil {
		n.logger.Warn("welcome email failed", zap.Error(err), zap.String("user_id", event.UserID))
	}
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(_ context.Context, event events.Event) error {
	n.logger.Info("PasswordResetRequested", zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) handlePasswordChanged(_ context.Context, event events.Event) error {
	n.logger.Info("PasswordChanged", zap.String("user_id", event.UserID))
	return nil
}

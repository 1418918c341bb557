package mailer

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/moona-liza/natours/internal/config"
	"github.com/moona-liza/natours/internal/domain"
)

// Notifier delivers outbound account emails. Implementations must return an
// error on delivery failure; the password reset flow rolls back its stored
// state when that happens.
type Notifier interface {
	SendWelcome(ctx context.Context, user *domain.User, profileURL string) error
	SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error
}

// New selects a notifier implementation: webhook delivery when a URL is
// configured, otherwise a log-only notifier for development.
func New(cfg config.NotificationConfig, logger *zap.Logger) Notifier {
	if cfg.WebhookURL != "" {
		return &WebhookMailer{cfg: cfg, logger: logger}
	}
	return &LogMailer{cfg: cfg, logger: logger}
}

// LogMailer writes outbound messages to the log instead of sending them.
type LogMailer struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

func (m *LogMailer) SendWelcome(_ context.Context, user *domain.User, profileURL string) error {
	m.logger.Info("welcome email",
		zap.String("from", m.cfg.EmailFrom),
		zap.String("to", user.Email),
		zap.String("url", profileURL),
	)
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, user *domain.User, resetURL string) error {
	m.logger.Info("password reset email",
		zap.String("from", m.cfg.EmailFrom),
		zap.String("to", user.Email),
		zap.String("url", resetURL),
	)
	return nil
}

// WebhookMailer posts message payloads to an external delivery endpoint.
type WebhookMailer struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

type webhookPayload struct {
	Template string `json:"template"`
	From     string `json:"from"`
	To       string `json:"to"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

func (m *WebhookMailer) SendWelcome(ctx context.Context, user *domain.User, profileURL string) error {
	return m.post(ctx, webhookPayload{
		Template: "welcome",
		From:     m.cfg.EmailFrom,
		To:       user.Email,
		Name:     user.Name,
		URL:      profileURL,
	})
}

func (m *WebhookMailer) SendPasswordReset(ctx context.Context, user *domain.User, resetURL string) error {
	return m.post(ctx, webhookPayload{
		Template: "password_reset",
		From:     m.cfg.EmailFrom,
		To:       user.Email,
		Name:     user.Name,
		URL:      resetURL,
	})
}

func (m *WebhookMailer) post(ctx context.Context, payload webhookPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	agent := fiber.Post(m.cfg.WebhookURL)
	agent.JSON(payload)

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("notification webhook: %w", errs[0])
	}
	if code >= 300 {
		return fmt.Errorf("notification webhook: status %d", code)
	}

	m.logger.Debug("notification delivered",
		zap.String("template", payload.Template),
		zap.String("to", payload.To),
	)
	return nil
}

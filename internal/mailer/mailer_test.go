package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moona-liza/natours/internal/config"
	"github.com/moona-liza/natours/internal/domain"
)

func TestNewSelectsImplementation(t *testing.T) {
	logger := zap.NewNop()

	n := New(config.NotificationConfig{}, logger)
	require.IsType(t, &LogMailer{}, n)

	n = New(config.NotificationConfig{WebhookURL: "http://example.com/hook"}, logger)
	require.IsType(t, &WebhookMailer{}, n)
}

func TestWebhookMailerPostsPayload(t *testing.T) {
	var received webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := &WebhookMailer{
		cfg:    config.NotificationConfig{EmailFrom: "noreply@natours.io", WebhookURL: srv.URL},
		logger: zap.NewNop(),
	}

	user := &domain.User{Name: "A", Email: "a@x.com"}
	err := m.SendPasswordReset(context.Background(), user, "http://localhost/reset/raw-token")
	require.NoError(t, err)

	require.Equal(t, "password_reset", received.Template)
	require.Equal(t, "a@x.com", received.To)
	require.Equal(t, "http://localhost/reset/raw-token", received.URL)
}

func TestWebhookMailerSurfacesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := &WebhookMailer{
		cfg:    config.NotificationConfig{WebhookURL: srv.URL},
		logger: zap.NewNop(),
	}

	err := m.SendWelcome(context.Background(), &domain.User{Email: "a@x.com"}, "http://localhost/me")
	require.Error(t, err)
}

func TestLogMailerNeverFails(t *testing.T) {
	m := &LogMailer{cfg: config.NotificationConfig{EmailFrom: "noreply@natours.io"}, logger: zap.NewNop()}

	user := &domain.User{Name: "A", Email: "a@x.com"}
	require.NoError(t, m.SendWelcome(context.Background(), user, "http://localhost/me"))
	require.NoError(t, m.SendPasswordReset(context.Background(), user, "http://localhost/reset"))
}

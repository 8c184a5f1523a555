// Package mailer delivers workshop reports through an external email relay.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidbz/workshopai/internal/domain"
	"github.com/davidbz/workshopai/internal/observability"
)

// maxErrorBody bounds how much of a relay error response is kept.
const maxErrorBody = 4 << 10

// Config selects and configures the sender.
// An empty ServiceURL selects the log-only sender.
type Config struct {
	ServiceURL string `env:"EMAIL_SERVICE_URL"`
	From       string `env:"EMAIL_FROM"        envDefault:"workshop@localhost"`
	Timeout    int    `env:"EMAIL_TIMEOUT"     envDefault:"30"`
}

// NewMailer returns the sender matching the configuration (DI constructor).
func NewMailer(cfg *Config) domain.Mailer {
	if cfg == nil || cfg.ServiceURL == "" {
		return NewLogMailer()
	}
	return NewHTTPMailer(cfg, &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second})
}

// HTTPMailer posts messages as JSON to a relay service.
type HTTPMailer struct {
	url    string
	from   string
	client *http.Client
}

// NewHTTPMailer creates a relay sender.
func NewHTTPMailer(cfg *Config, client *http.Client) *HTTPMailer {
	return &HTTPMailer{
		url:    cfg.ServiceURL,
		from:   cfg.From,
		client: client,
	}
}

type relayRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

type relayResponse struct {
	MessageID string `json:"messageId"`
	Error     string `json:"error"`
}

// Send implements domain.Mailer.
func (m *HTTPMailer) Send(ctx context.Context, msg *domain.EmailMessage) (*domain.EmailReceipt, error) {
	payload, err := json.Marshal(relayRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("email relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read relay response: %w", err)
	}

	var decoded relayResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if decoded.Error != "" {
			return nil, fmt.Errorf("email relay returned %d: %s", resp.StatusCode, decoded.Error)
		}
		return nil, fmt.Errorf("email relay returned %d", resp.StatusCode)
	}

	logger := observability.FromContext(ctx)

	// The relay accepted the message; a reply without an id gets a local one.
	if decoded.MessageID == "" {
		decoded.MessageID = uuid.NewString()
		fields := []zap.Field{
			observability.String("message_id", decoded.MessageID),
			observability.Int("status", resp.StatusCode),
		}
		if decodeErr != nil {
			fields = append(fields, observability.Error(decodeErr))
		}
		logger.Warn("email relay returned no message id, generated locally", fields...)
	}

	logger.Info("email sent",
		observability.String("message_id", decoded.MessageID))

	return &domain.EmailReceipt{MessageID: decoded.MessageID}, nil
}

// LogMailer only logs messages. Used when no relay is configured.
type LogMailer struct{}

// NewLogMailer creates a log-only sender.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send implements domain.Mailer.
func (m *LogMailer) Send(ctx context.Context, msg *domain.EmailMessage) (*domain.EmailReceipt, error) {
	id := uuid.NewString()

	observability.FromContext(ctx).Info("email relay not configured, message logged only",
		observability.String("message_id", id),
		observability.String("to", msg.To),
		observability.String("subject", msg.Subject),
		observability.Int("text_length", len(msg.Text)))

	return &domain.EmailReceipt{MessageID: id}, nil
}

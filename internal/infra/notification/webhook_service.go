// Package notification implements the outbound check-in notification gateway.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"checkin/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrWebhookNotConfigured is returned when no webhook URL is configured.
// It surfaces as a submit failure, never as a startup error.
var ErrWebhookNotConfigured = errors.New("notification webhook URL is not configured")

// webhookNotifier implements CheckInNotifier by sending HTTP POST requests
// to a configured webhook endpoint.
type webhookNotifier struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookNotifier creates a webhook-backed check-in notifier. The client
// deliberately carries no timeout: the spec leaves submission latency
// unbounded and the user drives retries explicitly.
func NewWebhookNotifier(endpoint string, logger *slog.Logger) service.CheckInNotifier {
	return &webhookNotifier{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// SendCheckIn posts the finalized check-in payload to the webhook endpoint.
// The response body is not parsed; any transport failure or non-2xx status is
// the single observable failure mode.
func (n *webhookNotifier) SendCheckIn(ctx context.Context, msg *service.CheckInMessage) error {
	if n.endpoint == "" {
		return errors.WithStack(ErrWebhookNotConfigured)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return errors.WithStack(err)
	}

	messageID := uuid.New().String()
	n.logger.Info("[Webhook] Sending check-in notification",
		slog.String("endpoint", n.endpoint),
		slog.String("message_id", messageID),
		slog.String("location", msg.LocationName),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Message-Id", messageID)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("webhook returned non-success status: %d", resp.StatusCode)
	}

	n.logger.Info("[Webhook] Check-in notification delivered",
		slog.String("message_id", messageID),
	)

	return nil
}

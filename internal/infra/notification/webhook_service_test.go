package notification

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"checkin/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMessage() *service.CheckInMessage {
	return &service.CheckInMessage{
		ChatID:          "chat-1",
		LocationName:    "Gate A",
		Period:          "morning",
		PeriodStartTime: "08:00",
		PeriodEndTime:   "09:00",
		Lat:             "13.756300",
		Lng:             "100.501800",
		Distance:        "42",
		CheckInTime:     "2026-03-14 08:10:00",
		CheckOutTime:    "2026-03-14 08:26:00",
		Photo:           "data:image/jpeg;base64,Zm9v",
	}
}

func TestWebhookNotifier_SendCheckIn(t *testing.T) {
	t.Parallel()

	var (
		gotMethod      string
		gotContentType string
		gotMessageID   string
		gotBody        map[string]string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotMessageID = r.Header.Get("X-Message-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, discardLogger())
	require.NoError(t, notifier.SendCheckIn(context.Background(), testMessage()))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.NotEmpty(t, gotMessageID)
	assert.Equal(t, "chat-1", gotBody["chatId"])
	assert.Equal(t, "Gate A", gotBody["locationName"])
	assert.Equal(t, "morning", gotBody["period"])
	assert.Equal(t, "42", gotBody["distance"])
	assert.Equal(t, "2026-03-14 08:10:00", gotBody["checkInTime"])
	assert.Equal(t, "data:image/jpeg;base64,Zm9v", gotBody["photo"])
}

func TestWebhookNotifier_SendCheckIn_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, discardLogger())
	err := notifier.SendCheckIn(context.Background(), testMessage())
	assert.ErrorContains(t, err, "502")
}

func TestWebhookNotifier_SendCheckIn_NotConfigured(t *testing.T) {
	t.Parallel()

	notifier := NewWebhookNotifier("", discardLogger())
	err := notifier.SendCheckIn(context.Background(), testMessage())
	assert.ErrorIs(t, err, ErrWebhookNotConfigured)
}

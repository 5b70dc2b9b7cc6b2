package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solemate/solemate-backend/pkg/config"
)

func TestWebhookSenderPostsPayload(t *testing.T) {
	var gotEvent string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvent = r.Header.Get("X-SoleMate-Event")
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender, err := NewWebhookSender(config.NotifierConfig{WebhookURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	payload := json.RawMessage(`{"type":"initiated","orderNumber":1001}`)
	require.NoError(t, sender.Send(context.Background(), "payment.initiated", payload))
	require.Equal(t, "payment.initiated", gotEvent)
	require.Equal(t, "initiated", gotBody["type"])
}

func TestWebhookSenderRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	sender, err := NewWebhookSender(config.NotifierConfig{WebhookURL: srv.URL})
	require.NoError(t, err)

	err = sender.Send(context.Background(), "payment.updated", json.RawMessage(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestNewWebhookSenderRequiresURL(t *testing.T) {
	_, err := NewWebhookSender(config.NotifierConfig{})
	require.Error(t, err)
}

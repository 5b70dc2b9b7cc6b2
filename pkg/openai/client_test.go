package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return &Client{
		apiKey:      "test-key",
		baseURL:     url,
		chatModel:   "gpt-4o-mini",
		visionModel: "gpt-4o",
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func TestChatSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt-4o-mini", req.Model)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hello"}, "finish_reason": "stop"},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	require.Equal(t, "hello", resp.Choices[0].Message.Content)
}

func TestChatRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, "ok", resp.Choices[0].Message.Content)
}

func TestChatDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "bad request", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Chat(context.Background(), ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad request")
	require.Equal(t, int32(1), calls.Load())
}

func TestChatValidation(t *testing.T) {
	client := newTestClient("http://unused")
	_, err := client.Chat(context.Background(), ChatRequest{})
	require.Error(t, err)

	client.apiKey = ""
	_, err = client.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}})
	require.Error(t, err)
}

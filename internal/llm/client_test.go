package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		APIKey:   "test-key",
		Endpoint: srv.URL,
		Model:    "test-model",
		Timeout:  2 * time.Second,
		Retry:    RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1},
	}, logrus.New())
}

func TestComplete_Success(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"test-model","choices":[{"message":{"role":"assistant","content":"  You have $600.00 left. "}}]}`))
	})

	out, err := client.Complete(context.Background(), Request{
		SystemPrompt: "facts",
		Messages:     []Message{{Role: "user", Content: "balance?"}},
		Temperature:  0.7,
		MaxTokens:    256,
	})

	require.NoError(t, err)
	assert.Equal(t, "You have $600.00 left.", out.Text)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "balance?", got.Messages[1].Content)
}

func TestComplete_ErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantCode     ErrorCode
		wantAttempts int32
	}{
		{name: "rate limited is not retried", status: http.StatusTooManyRequests, body: `{}`, wantCode: ErrRateLimited, wantAttempts: 1},
		{name: "server error is retried", status: http.StatusBadGateway, body: `{}`, wantCode: ErrUnavailable, wantAttempts: 2},
		{name: "client error", status: http.StatusBadRequest, body: `{"error":"bad"}`, wantCode: ErrBadResponse, wantAttempts: 1},
		{name: "malformed payload", status: http.StatusOK, body: `not json`, wantCode: ErrBadResponse, wantAttempts: 1},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantCode: ErrEmptyResponse, wantAttempts: 1},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, wantCode: ErrEmptyResponse, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, CodeOf(err))
			assert.Equal(t, tt.wantAttempts, attempts.Load())
		})
	}
}

func TestComplete_NotConfigured(t *testing.T) {
	client := NewClient(Config{}, logrus.New())

	_, err := client.Complete(context.Background(), Request{})

	assert.False(t, client.IsConfigured())
	assert.Equal(t, ErrNotConfigured, CodeOf(err))
}

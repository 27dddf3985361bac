package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/internal/config"
)

func testClient(t *testing.T, url string, retries int) *Client {
	t.Helper()

	cfg := &config.Config{}
	cfg.Callback.WebhookURL = url
	cfg.Callback.Secret = "webhook-secret"
	cfg.Callback.Timeout = 5 * time.Second
	cfg.Callback.MaxRetries = retries

	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(&config.Config{})
	assert.Error(t, err)
}

func TestSend_DeliversSignedPayload(t *testing.T) {
	var received Payload
	var signature string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get("X-Folio-Signature")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 0)
	payload := &Payload{
		ProcessID: "proc_123",
		Operation: "analyze",
		Status:    "SUCCESS",
		Timestamp: time.Now().UTC(),
	}

	require.NoError(t, client.Send(context.Background(), payload))
	assert.Equal(t, "proc_123", received.ProcessID)
	assert.NotEmpty(t, signature)

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Equal(t, Sign("webhook-secret", body), signature)
}

func TestSend_RetriesOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 2)
	err := client.Send(context.Background(), &Payload{ProcessID: "proc_retry", Status: "SUCCESS"})

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSend_GivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(t, server.URL, 1)
	err := client.Send(context.Background(), &Payload{ProcessID: "proc_fail", Status: "FAILURE"})

	assert.Error(t, err)
}

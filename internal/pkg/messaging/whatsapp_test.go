package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageNormalizesPhone(t *testing.T) {
	var got map[string]string
	var apiKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sendText", r.URL.Path)
		apiKey = r.Header.Get("X-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	svc := NewWhatsAppService(WhatsAppConfig{
		GatewayURL: server.URL,
		Token:      "secret",
		Session:    "default",
	}, zerolog.Nop())

	err := svc.SendMessage(context.Background(), "+54 (11) 5555-6666", "hola")
	require.NoError(t, err)

	assert.Equal(t, "541155556666@c.us", got["chatId"])
	assert.Equal(t, "hola", got["text"])
	assert.Equal(t, "default", got["session"])
	assert.Equal(t, "secret", apiKey)
}

func TestSendMessageGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session down", http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewWhatsAppService(WhatsAppConfig{GatewayURL: server.URL, Session: "default"}, zerolog.Nop())
	err := svc.SendMessage(context.Background(), "541155556666", "hola")
	assert.Error(t, err)
}

func TestSendMessageUnconfiguredIsNoop(t *testing.T) {
	svc := NewWhatsAppService(WhatsAppConfig{}, zerolog.Nop())

	assert.NoError(t, svc.Init(context.Background()))
	assert.NoError(t, svc.SendMessage(context.Background(), "541155556666", "hola"))
	assert.Error(t, svc.SendMessage(context.Background(), "sin numero", "hola"))
}

func TestVerificationMessageContainsCode(t *testing.T) {
	assert.Contains(t, VerificationMessage("123456"), "123456")
}

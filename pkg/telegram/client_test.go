package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zinxon/towber-api/pkg/config"
	pkgerrors "github.com/zinxon/towber-api/pkg/errors"
)

func testConfig() config.TelegramConfig {
	return config.TelegramConfig{
		BotToken: "123456:test-token",
		ChatID:   "-100200300",
		Timeout:  2 * time.Second,
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.TelegramConfig{ChatID: "-1"})
	assert.ErrorIs(t, err, errBotTokenRequired)

	_, err = NewClient(config.TelegramConfig{BotToken: "123:abc"})
	assert.ErrorIs(t, err, errChatIDRequired)
}

func TestNewClientPrefersTestChat(t *testing.T) {
	cfg := testConfig()
	cfg.TestChatID = "-999"
	cfg.UseTest = true

	client, err := NewClient(cfg)
	require.NoError(t, err)
	assert.Equal(t, "-999", client.ChatID())
}

func TestSendMessageDeliversPayload(t *testing.T) {
	var captured sendMessageRequest
	var path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(), WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	require.NoError(t, client.SendMessage(context.Background(), "order received"))
	assert.Equal(t, "/bot123456:test-token/sendMessage", path)
	assert.Equal(t, "-100200300", captured.ChatID)
	assert.Equal(t, "order received", captured.Text)
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	client, err := NewClient(testConfig())
	require.NoError(t, err)

	err = client.SendMessage(context.Background(), "   ")

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestSendMessageSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Too Many Requests"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(), WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	err = client.SendMessage(context.Background(), "order received")

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}

func TestSendMessageSurfacesAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(), WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	err = client.SendMessage(context.Background(), "order received")

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}

package chatgpt

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("  ", "")
	require.Error(t, err)
}

func TestGenerator_SendsSinglePrompt(t *testing.T) {
	var got ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12}}`)
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", srv.URL+"/v1/")
	require.NoError(t, err)
	gen := NewGenerator(client, "gpt-test", 0.2, newTestLogger())

	reply, err := gen.Generate(context.Background(), "analyze this")
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, reply)
	require.Equal(t, "gpt-test", got.Model)
	require.Equal(t, []Message{{Role: "user", Content: "analyze this"}}, got.Messages)
	require.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestGenerator_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", srv.URL)
	require.NoError(t, err)
	_, err = NewGenerator(client, "", 0, newTestLogger()).Generate(context.Background(), "p")
	require.ErrorContains(t, err, "status=429")
}

func TestGenerator_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	client, err := NewClient("sk-test", srv.URL)
	require.NoError(t, err)
	_, err = NewGenerator(client, "", 0, newTestLogger()).Generate(context.Background(), "p")
	require.ErrorContains(t, err, "no choices")
}

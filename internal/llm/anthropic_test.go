package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicCompleteSendsSingleTurn(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"ats_score\":"},{"type":"text","text":"85}"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	client := NewAnthropicClient(srv.URL + "/v1/")
	text, err := client.Complete(context.Background(), Request{
		APIKey:    "sk-ant-test",
		Model:     "claude-sonnet-4-5",
		MaxTokens: 4096,
		Prompt:    "hello",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"ats_score":85}`, text)
	assert.Equal(t, "claude-sonnet-4-5", got.Model)
	assert.Equal(t, 4096, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestAnthropicCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer srv.Close()

	_, err := NewAnthropicClient(srv.URL).Complete(context.Background(), Request{APIKey: "sk-ant-bad", Prompt: "p"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "authentication_error", apiErr.Type)
	assert.Contains(t, apiErr.Error(), "invalid x-api-key")
}

func TestAnthropicCompleteNoTextBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"tool_use"}]}`))
	}))
	defer srv.Close()

	_, err := NewAnthropicClient(srv.URL).Complete(context.Background(), Request{APIKey: "k", Prompt: "p"})
	assert.ErrorIs(t, err, ErrUnexpectedContent)
}

func TestAnthropicCompleteRespectsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewAnthropicClient(srv.URL).Complete(ctx, Request{APIKey: "k", Prompt: "p"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAnthropicCompleteRequiresKey(t *testing.T) {
	_, err := NewAnthropicClient("http://127.0.0.1:0").Complete(context.Background(), Request{Prompt: "p"})
	assert.Error(t, err)
}

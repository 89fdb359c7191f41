package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ollama(url string) *OllamaClient {
	return NewOllamaClient(RuntimeConfig{Host: url, HTTPTimeout: 2 * time.Second, RetryMax: 1, Logger: zap.NewNop()})
}

func TestOllamaGenerateSuccess(t *testing.T) {
	var captured ollamaChatRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":           map[string]any{"role": "assistant", "content": "hello from ollama"},
			"done":              true,
			"prompt_eval_count": 7,
			"eval_count":        3,
		})
	}))

	messages := []Message{
		{Role: "system", Content: "You are a helpful assistant"},
		{Role: "user", Content: "Hello"},
	}
	resp, err := ollama(srv.URL).Generate(context.Background(), GenerateRequest{Model: "llama3:latest", Messages: messages, MaxTokens: 16, Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "hello from ollama", resp.Choices[0].Message.Content)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, 10, resp.Usage.TotalTokens)

	assert.Equal(t, messages, captured.Messages)
	assert.False(t, captured.Stream)
	assert.EqualValues(t, 16, captured.Options["num_predict"])
}

func TestOllamaGenerateErrors(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "model 'x' not found"})
	}))
	_, err := ollama(srv.URL).Generate(context.Background(), GenerateRequest{Model: "x", Messages: []Message{{Role: "user", Content: "hi"}}})
	var nf *ModelNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Contains(t, err.Error(), "not found")
}

func TestOllamaValidation(t *testing.T) {
	c := ollama("http://localhost:11434")
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "llama3:latest"})
	assert.EqualError(t, err, "messages cannot be empty")
	_, err = c.Generate(context.Background(), GenerateRequest{Messages: []Message{{Role: "user", Content: "hi"}}})
	assert.EqualError(t, err, "model cannot be empty")
}

func TestOllamaUnreachable(t *testing.T) {
	_, err := ollama("http://127.0.0.1:1").Generate(context.Background(), GenerateRequest{Model: "m", Messages: []Message{{Role: "user", Content: "hi"}}})
	var down *UnreachableError
	require.True(t, errors.As(err, &down))
	assert.NotEmpty(t, Hint(err))
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClient_Complete(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3",
			Response:        "I think, therefore I am.",
			Done:            true,
			PromptEvalCount: 12,
			EvalCount:       7,
		})
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "llama3")
	resp, err := client.Complete(context.Background(), CompletionRequest{
		System: "You are a philosopher.",
		Messages: []Message{
			{Role: RoleUser, Content: "do you think?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "I think, therefore I am.", resp.Content)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 7, resp.Usage.OutputTokens)

	assert.Equal(t, "llama3", gotBody["model"])
	assert.Equal(t, false, gotBody["stream"])
	assert.Contains(t, gotBody["prompt"], "You are a philosopher.")
	assert.Contains(t, gotBody["prompt"], "do you think?")
}

func TestOllamaClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewOllamaClient(srv.URL, "missing")
	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusNotFound, perr.Code)
	assert.Equal(t, "ollama", perr.Provider)
}

func TestOllamaClient_DefaultBaseURL(t *testing.T) {
	client := NewOllamaClient("", "llama3")
	assert.Equal(t, "http://localhost:11434", client.baseURL)

	client = NewOllamaClient("http://box:11434/", "llama3")
	assert.Equal(t, "http://box:11434", client.baseURL)
}

func TestMessagesToClaude(t *testing.T) {
	out := messagesToClaude([]Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, map[string]string{"role": "user", "content": "hi"}, out[0])
	assert.Equal(t, map[string]string{"role": "assistant", "content": "hello"}, out[1])
}

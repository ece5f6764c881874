package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
)

func TestNewAssistant(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			cfg: config.LLMConfig{
				APIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "valid config with model",
			cfg: config.LLMConfig{
				APIKey: "test-key",
				Model:  "gpt-4",
			},
			wantErr: false,
		},
		{
			name:    "missing API key",
			cfg:     config.LLMConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAssistant(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, a)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "openai", a.Provider())
			}
		})
	}
}

// fakeChat serves one canned chat completion and records the request.
func fakeChat(t *testing.T, reply string, got *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: "gpt-4o-mini-2024",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAssistant_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := fakeChat(t, "  The castle stands on the northern cliff.\n", &got)

	a, err := NewAssistant(config.LLMConfig{APIKey: "k"}, WithBaseURL(srv.URL))
	require.NoError(t, err)

	resp, err := a.Complete(context.Background(), ports.AssistantRequest{
		System: "World: Eldoria",
		Prompt: "Where is the castle?",
	})
	require.NoError(t, err)

	assert.Equal(t, "The castle stands on the northern cliff.", resp.Text)
	assert.Equal(t, "gpt-4o-mini-2024", resp.Model)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "World: Eldoria", got.Messages[0].Content)
	assert.Equal(t, "Where is the castle?", got.Messages[1].Content)
	assert.Equal(t, "gpt-4o-mini", got.Model)
}

func TestAssistant_CompleteWithoutSystem(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := fakeChat(t, "ok", &got)

	a, err := NewAssistant(config.LLMConfig{APIKey: "k", Model: "gpt-4"}, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = a.Complete(context.Background(), ports.AssistantRequest{Prompt: "hi"})
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "gpt-4", got.Model)
}

func TestAssistant_CompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	a, err := NewAssistant(config.LLMConfig{APIKey: "k"}, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = a.Complete(context.Background(), ports.AssistantRequest{Prompt: "hi"})
	assert.ErrorContains(t, err, "no response")
}

func TestAssistant_CompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	a, err := NewAssistant(config.LLMConfig{APIKey: "k"}, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = a.Complete(context.Background(), ports.AssistantRequest{Prompt: "hi"})
	assert.ErrorContains(t, err, "calling OpenAI")
}

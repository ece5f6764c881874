// Package openai provides an Assistant implementation using OpenAI.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
)

// ProviderName is the name checked against the access policy.
const ProviderName = "openai"

const defaultModel = "gpt-4o-mini"

// Option configures an Assistant.
type Option func(*openai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(c *openai.ClientConfig) {
		c.BaseURL = url
	}
}

// Assistant implements ports.Assistant using OpenAI chat completions.
type Assistant struct {
	client *openai.Client
	model  string
}

var _ ports.Assistant = (*Assistant)(nil)

// NewAssistant creates a new OpenAI assistant.
func NewAssistant(cfg config.LLMConfig, opts ...Option) (*Assistant, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	for _, opt := range opts {
		opt(&clientCfg)
	}

	model := defaultModel
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Assistant{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// Provider returns "openai".
func (a *Assistant) Provider() string {
	return ProviderName
}

// Complete sends the system context and prompt as one chat completion.
func (a *Assistant) Complete(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return ports.AssistantResponse{}, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return ports.AssistantResponse{}, errors.New("no response from OpenAI")
	}

	model := resp.Model
	if model == "" {
		model = a.model
	}

	return ports.AssistantResponse{
		Text:  strings.TrimSpace(resp.Choices[0].Message.Content),
		Model: model,
	}, nil
}

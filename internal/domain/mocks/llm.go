package mocks

import (
	"context"

	"github.com/ersonp/lore-worlds/internal/domain/ports"
)

// Assistant is a mock implementation of ports.Assistant.
type Assistant struct {
	ProviderName string
	Response     ports.AssistantResponse
	Err          error

	// Call tracking
	Requests []ports.AssistantRequest
}

// Provider returns the configured provider name.
func (m *Assistant) Provider() string {
	return m.ProviderName
}

// Complete records the request and returns the configured reply or error.
func (m *Assistant) Complete(ctx context.Context, req ports.AssistantRequest) (ports.AssistantResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return ports.AssistantResponse{}, m.Err
	}
	return m.Response, nil
}

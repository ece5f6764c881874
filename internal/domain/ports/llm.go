package ports

import "context"

// AssistantRequest is the plain request sent to an AI assistant.
type AssistantRequest struct {
	System string
	Prompt string
}

// AssistantResponse is the plain reply from an AI assistant.
type AssistantResponse struct {
	Text  string
	Model string
}

// Assistant defines the request/response contract of an AI provider.
type Assistant interface {
	// Provider returns the provider name checked against the Access Policy.
	Provider() string

	// Complete sends a request and returns the reply.
	Complete(ctx context.Context, req AssistantRequest) (AssistantResponse, error)
}

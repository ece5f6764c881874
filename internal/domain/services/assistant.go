package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
)

const assistantSystemPrompt = `You are a worldbuilding assistant helping an author develop a fictional world.
Stay consistent with the world context below. Do not invent facts that contradict it.
Answer in plain prose.

World: %s
%s`

// AssistRequest asks a provider about a world, optionally focused on one element.
type AssistRequest struct {
	Provider  string
	WorldID   string
	ElementID string
	Prompt    string
}

// AssistantService routes author prompts to AI providers allowed by the
// Access Policy, with world context attached.
type AssistantService struct {
	store      *Store
	policy     ports.AccessPolicy
	assistants map[string]ports.Assistant
	logger     *zap.Logger
}

// NewAssistantService creates a new assistant service over the given providers.
func NewAssistantService(store *Store, policy ports.AccessPolicy, logger *zap.Logger, assistants ...ports.Assistant) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]ports.Assistant, len(assistants))
	for _, a := range assistants {
		byName[a.Provider()] = a
	}
	return &AssistantService{
		store:      store,
		policy:     policy,
		assistants: byName,
		logger:     logger,
	}
}

// Providers returns the names of the configured providers.
func (s *AssistantService) Providers() []string {
	names := make([]string, 0, len(s.assistants))
	for name := range s.assistants {
		names = append(names, name)
	}
	return names
}

// Ask sends the prompt with world context to the requested provider.
func (s *AssistantService) Ask(ctx context.Context, req AssistRequest) (ports.AssistantResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return ports.AssistantResponse{}, &entities.InputError{Field: "prompt", Message: "must not be empty"}
	}
	if !s.policy.AllowsAIProvider(req.Provider) {
		return ports.AssistantResponse{}, &entities.ProviderError{Provider: req.Provider}
	}
	assistant, ok := s.assistants[req.Provider]
	if !ok {
		return ports.AssistantResponse{}, &entities.ProviderError{Provider: req.Provider}
	}

	world, err := s.store.World(req.WorldID)
	if err != nil {
		return ports.AssistantResponse{}, err
	}

	var focus string
	if req.ElementID != "" {
		e := world.Element(req.ElementID)
		if e == nil {
			return ports.AssistantResponse{}, &entities.NotFoundError{Kind: entities.KindElement, ID: req.ElementID}
		}
		focus = describeElement(&world, e)
	} else {
		focus = describeWorld(&world)
	}

	resp, err := assistant.Complete(ctx, ports.AssistantRequest{
		System: fmt.Sprintf(assistantSystemPrompt, world.Title, focus),
		Prompt: req.Prompt,
	})
	if err != nil {
		return ports.AssistantResponse{}, fmt.Errorf("asking %s: %w", req.Provider, err)
	}

	s.logger.Debug("assistant answered",
		zap.String("provider", req.Provider),
		zap.String("worldID", req.WorldID),
		zap.Int("chars", len(resp.Text)))
	return resp, nil
}

// describeWorld lists the world's description and element titles.
func describeWorld(w *entities.World) string {
	var b strings.Builder
	if w.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", w.Description)
	}
	if len(w.Elements) > 0 {
		b.WriteString("Elements:\n")
		for i := range w.Elements {
			fmt.Fprintf(&b, "- %s (%s)\n", w.Elements[i].Title, w.Elements[i].Type.DisplayName())
		}
	}
	return b.String()
}

// describeElement renders one element with its relationships.
func describeElement(w *entities.World, e *entities.Element) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Focus element: %s (%s)\n", e.Title, e.Type.DisplayName())
	if len(e.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(e.Tags, ", "))
	}
	if e.Content != "" {
		fmt.Fprintf(&b, "Content:\n%s\n", e.Content)
	}
	views := ViewRelationships(w, e.ID)
	if len(views) > 0 {
		b.WriteString("Relationships:\n")
		for _, v := range views {
			fmt.Fprintf(&b, "- %s %s\n", v.Label, v.CounterpartTitle)
		}
	}
	return b.String()
}

package mocks

import "github.com/ersonp/lore-worlds/internal/domain/entities"

// Policy is a mock implementation of ports.AccessPolicy. Zero ceilings mean
// no ceiling; nil allow-lists allow everything.
type Policy struct {
	Worlds           int
	ElementsPerWorld int
	ExportFormats    []entities.ExportFormat
	AIProviders      []string
}

// MaxWorlds returns the configured world ceiling.
func (p *Policy) MaxWorlds() int { return p.Worlds }

// MaxElementsPerWorld returns the configured element ceiling.
func (p *Policy) MaxElementsPerWorld() int { return p.ElementsPerWorld }

// AllowsExportFormat reports whether format is in the allow-list.
func (p *Policy) AllowsExportFormat(format entities.ExportFormat) bool {
	if p.ExportFormats == nil {
		return true
	}
	for _, f := range p.ExportFormats {
		if f == format {
			return true
		}
	}
	return false
}

// AllowsAIProvider reports whether provider is in the allow-list.
func (p *Policy) AllowsAIProvider(provider string) bool {
	if p.AIProviders == nil {
		return true
	}
	for _, name := range p.AIProviders {
		if name == provider {
			return true
		}
	}
	return false
}

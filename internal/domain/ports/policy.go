package ports

import "github.com/ersonp/lore-worlds/internal/domain/entities"

// AccessPolicy supplies the ceilings and feature flags produced by the
// account's entitlements. It does not enforce them; the store and the
// export service do. A non-positive ceiling means no ceiling.
type AccessPolicy interface {
	MaxWorlds() int
	MaxElementsPerWorld() int
	AllowsExportFormat(format entities.ExportFormat) bool
	AllowsAIProvider(provider string) bool
}

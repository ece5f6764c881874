package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/infrastructure/formats"
)

// ExportRequest selects the format and the worlds to export. No world IDs
// means every world.
type ExportRequest struct {
	Format   entities.ExportFormat
	WorldIDs []string
}

// ExportObserver is told about every successful export.
type ExportObserver interface {
	ObserveExport(format entities.ExportFormat, size int)
}

// ExportService serializes store snapshots.
type ExportService struct {
	store    *Store
	policy   ports.AccessPolicy
	observer ExportObserver
	logger   *zap.Logger
}

// NewExportService creates a new export service. observer and logger may be nil.
func NewExportService(store *Store, policy ports.AccessPolicy, observer ExportObserver, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		store:    store,
		policy:   policy,
		observer: observer,
		logger:   logger,
	}
}

// Export renders the requested worlds. The format is checked against the
// Access Policy before anything is read.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Format.IsValid() {
		return nil, &entities.FormatError{Format: string(req.Format), Reason: "unknown format"}
	}
	if !s.policy.AllowsExportFormat(req.Format) {
		return nil, &entities.FormatError{Format: string(req.Format), Reason: "not allowed by access policy"}
	}

	snap, err := s.store.Snapshot(req.WorldIDs...)
	if err != nil {
		return nil, err
	}

	data, err := formats.Encode(req.Format, &formats.Document{
		Worlds:     snap.Worlds,
		Activity:   snap.Activity,
		ExportedAt: snap.TakenAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}

	if s.observer != nil {
		s.observer.ObserveExport(req.Format, len(data))
	}
	s.logger.Debug("export written",
		zap.String("format", string(req.Format)),
		zap.Int("worlds", len(snap.Worlds)),
		zap.Int("bytes", len(data)))

	return data, nil
}

package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/domain/services"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
	"github.com/ersonp/lore-worlds/internal/infrastructure/formats"
)

// TransferHandler moves world graphs between the store and files.
type TransferHandler struct {
	store    *services.Store
	exporter *services.ExportService
	importer *services.ImportService
	files    ports.FileSource
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(
	store *services.Store,
	exporter *services.ExportService,
	importer *services.ImportService,
	files ports.FileSource,
) *TransferHandler {
	return &TransferHandler{
		store:    store,
		exporter: exporter,
		importer: importer,
		files:    files,
	}
}

// ExportOptions controls an export. An empty Format is inferred from the
// Output extension and falls back to canonical JSON. An empty Output
// returns the data without writing a file. OutputDir names the file
// after the exported world when Output is empty.
type ExportOptions struct {
	Format    string
	Worlds    []string
	Output    string
	OutputDir string
}

// ExportResult describes a finished export.
type ExportResult struct {
	Format entities.ExportFormat
	Path   string
	Data   []byte
}

// HandleExport encodes the selected worlds and writes them to Output.
func (h *TransferHandler) HandleExport(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	format, err := exportFormat(opts.Format, opts.Output)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(opts.Worlds))
	name := "worlds"
	for _, ref := range opts.Worlds {
		w, err := resolveWorld(h.store, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, w.ID)
		name = w.Title
	}
	if len(ids) > 1 {
		name = "worlds"
	}
	if opts.Output == "" && opts.OutputDir != "" {
		opts.Output = filepath.Join(opts.OutputDir, config.SanitizeWorldName(name)+format.Extension())
	}

	data, err := h.exporter.Export(ctx, services.ExportRequest{Format: format, WorldIDs: ids})
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Format: format, Data: data}
	if opts.Output != "" {
		if err := h.files.WriteFile(opts.Output, data); err != nil {
			return nil, fmt.Errorf("writing export: %w", err)
		}
		result.Path = opts.Output
	}
	return result, nil
}

func exportFormat(name, output string) (entities.ExportFormat, error) {
	if name != "" && name != "auto" {
		return entities.ParseExportFormat(name)
	}
	if output != "" {
		if f, ok := formats.ForFile(output); ok {
			return f, nil
		}
	}
	return entities.FormatCanonical, nil
}

// ImportOptions controls an import as typed by the user. Resolutions maps
// world IDs to per-world strategies.
type ImportOptions struct {
	OnConflict  string
	Resolutions map[string]string
	DryRun      bool
}

// HandleImport reads a canonical export file and imports it.
func (h *TransferHandler) HandleImport(ctx context.Context, path string, opts ImportOptions) (*services.ImportResult, error) {
	if f, ok := formats.ForFile(path); ok && f.IsOneWay() {
		return nil, &entities.FormatError{
			Format: string(f),
			Reason: "export-only format; import accepts canonical json",
		}
	}

	strategy, err := services.ParseConflictStrategy(opts.OnConflict)
	if err != nil {
		return nil, err
	}

	var resolutions map[string]services.ConflictStrategy
	if len(opts.Resolutions) > 0 {
		resolutions = make(map[string]services.ConflictStrategy, len(opts.Resolutions))
		for id, raw := range opts.Resolutions {
			s, err := services.ParseConflictStrategy(raw)
			if err != nil {
				return nil, fmt.Errorf("resolution for world %s: %w", id, err)
			}
			resolutions[strings.TrimSpace(id)] = s
		}
	}

	data, err := h.files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}

	return h.importer.Import(ctx, data, services.ImportOptions{
		DryRun:      opts.DryRun,
		OnConflict:  strategy,
		Resolutions: resolutions,
	})
}

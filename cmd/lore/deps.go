package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ersonp/lore-worlds/internal/application/handlers"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
	"github.com/ersonp/lore-worlds/internal/domain/services"
	badgerblob "github.com/ersonp/lore-worlds/internal/infrastructure/blobstore/badger"
	sqliteblob "github.com/ersonp/lore-worlds/internal/infrastructure/blobstore/sqlite"
	"github.com/ersonp/lore-worlds/internal/infrastructure/config"
	embedder "github.com/ersonp/lore-worlds/internal/infrastructure/embedder/openai"
	"github.com/ersonp/lore-worlds/internal/infrastructure/filesource"
	llm "github.com/ersonp/lore-worlds/internal/infrastructure/llm/openai"
	"github.com/ersonp/lore-worlds/internal/infrastructure/metrics"
	"github.com/ersonp/lore-worlds/internal/infrastructure/secrets"
	"github.com/ersonp/lore-worlds/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config        *config.Config
	Logger        *zap.Logger
	Worlds        *handlers.WorldHandler
	Elements      *handlers.ElementHandler
	Relationships *handlers.RelationshipHandler
	Activity      *handlers.ActivityHandler
	Transfer      *handlers.TransferHandler
	Assist        *handlers.AssistHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	store     *services.Store
	persist   *services.PersistenceService
	assistant *services.AssistantService
	metrics   *metrics.Collector
	// vectors is nil when semantic search is not configured.
	vectors *qdrant.Repository

	// loaded is the store revision right after the restore.
	loaded  uint64
	closers []func()
}

// saveIfChanged saves the store when any mutation committed since the restore.
func (d *internalDeps) saveIfChanged(ctx context.Context) error {
	rev := d.store.Revision()
	if rev == d.loaded {
		return nil
	}
	if err := d.persist.Save(ctx); err != nil {
		return fmt.Errorf("saving store: %w", err)
	}
	d.loaded = rev
	return nil
}

// close releases resources in reverse order of acquisition.
func (d *internalDeps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	return withInternalDeps(ctx, func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
// The store is saved after fn returns nil if anything changed.
func withInternalDeps(ctx context.Context, fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := loadConfig(cwd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level, globalVerbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync fails on some terminals

	d, err := buildDeps(ctx, cwd, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	if err := fn(d); err != nil {
		return err
	}

	if err := d.saveIfChanged(ctx); err != nil {
		return err
	}

	if globalMetrics {
		return printMetrics(os.Stderr, d.metrics)
	}
	return nil
}

// buildDeps opens the blob store, restores the store from it and wires
// every handler.
func buildDeps(ctx context.Context, basePath string, cfg *config.Config, logger *zap.Logger) (*internalDeps, error) {
	d := &internalDeps{}
	d.Config = cfg
	d.Logger = logger

	blobs, err := openBlobStore(ctx, cfg, basePath, logger)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, func() {
		if err := blobs.Close(); err != nil {
			logger.Warn("closing blob store", zap.Error(err))
		}
	})

	policy := &cfg.Policy
	d.store = services.NewStore(policy,
		services.WithLogger(logger),
		services.WithActivityCapacity(cfg.Activity.Capacity),
	)
	d.persist = services.NewPersistenceService(d.store, blobs, logger)
	if err := d.persist.Load(ctx); err != nil {
		d.close()
		return nil, fmt.Errorf("loading store: %w", err)
	}

	d.loaded = d.store.Revision()

	collector, unsubscribe := metrics.Attach(metricsNamespace, d.store)
	d.metrics = collector
	d.closers = append(d.closers, unsubscribe)

	var assistants []ports.Assistant
	if cfg.LLM.APIKey != "" {
		a, err := llm.NewAssistant(cfg.LLM)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("creating assistant: %w", err)
		}
		assistants = append(assistants, a)
	}
	d.assistant = services.NewAssistantService(d.store, policy, logger, assistants...)

	var search *services.SearchService
	if searchConfigured(cfg) {
		emb, err := embedder.NewEmbedder(cfg.Embedder)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
		repo, err := qdrant.NewRepository(cfg.Qdrant)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("creating qdrant repository: %w", err)
		}
		d.vectors = repo
		d.closers = append(d.closers, func() { repo.Close() })

		search = services.NewSearchService(d.store, emb, repo, logger)
		d.closers = append(d.closers, search.Attach(ctx))
	}

	d.Worlds = handlers.NewWorldHandler(d.store)
	d.Elements = handlers.NewElementHandler(d.store)
	d.Relationships = handlers.NewRelationshipHandler(d.store)
	d.Activity = handlers.NewActivityHandler(d.store)
	d.Transfer = handlers.NewTransferHandler(
		d.store,
		services.NewExportService(d.store, policy, collector, logger),
		services.NewImportService(d.store, logger),
		filesource.OS{},
	)
	d.Assist = handlers.NewAssistHandler(d.store, d.assistant, search)

	return d, nil
}

// loadConfig loads the config at basePath and decrypts its API keys.
func loadConfig(basePath string) (*config.Config, error) {
	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if !cfg.Secrets.Encrypt && !hasEncryptedKey(cfg) {
		return cfg, nil
	}

	store, err := secrets.Open(cfg.SecretKeyPath(basePath))
	if err != nil {
		return nil, fmt.Errorf("opening secret key: %w", err)
	}
	if err := cfg.DecryptSecrets(store); err != nil {
		return nil, err
	}
	return cfg, nil
}

func hasEncryptedKey(cfg *config.Config) bool {
	return config.IsEncrypted(cfg.LLM.APIKey) ||
		config.IsEncrypted(cfg.Embedder.APIKey) ||
		config.IsEncrypted(cfg.Qdrant.APIKey)
}

// searchConfigured reports whether an embedder key and a qdrant host are set.
func searchConfigured(cfg *config.Config) bool {
	return cfg.Embedder.APIKey != "" && cfg.Qdrant.Host != ""
}

// openBlobStore opens the configured storage backend.
func openBlobStore(ctx context.Context, cfg *config.Config, basePath string, logger *zap.Logger) (ports.BlobStore, error) {
	path := cfg.StoragePath(basePath)

	switch cfg.Storage.Backend {
	case config.BackendBadger:
		store, err := badgerblob.Open(badgerblob.Options{Dir: path, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("opening badger store: %w", err)
		}
		return store, nil
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
		repo, err := sqliteblob.NewRepository(path)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite repository: %w", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("ensuring sqlite schema: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newLogger builds a development logger for debug output and a production
// logger at the configured level otherwise.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose || level == "debug" {
		return zap.NewDevelopment()
	}

	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// printMetrics writes one line per non-zero metric.
func printMetrics(w io.Writer, c *metrics.Collector) error {
	if c == nil {
		return errors.New("metrics are not available")
	}
	samples, err := c.Samples()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, s := range samples {
		if s.Labels != "" {
			fmt.Fprintf(w, "%s{%s} %g\n", s.Name, s.Labels, s.Value)
		} else {
			fmt.Fprintf(w, "%s %g\n", s.Name, s.Value)
		}
	}
	return nil
}

// requireWorld returns the --world flag value or an error when it is unset.
func requireWorld() (string, error) {
	if globalWorld == "" {
		return "", errors.New("world is required (use --world flag)")
	}
	return globalWorld, nil
}

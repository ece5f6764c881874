// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ersonp/lore-worlds/internal/domain/entities"
	"github.com/ersonp/lore-worlds/internal/domain/ports"
)

const (
	// DefaultConfigDir is the directory name for lore configuration.
	DefaultConfigDir = ".lore"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"

	// BackendSQLite stores blobs in a single SQLite file.
	BackendSQLite = "sqlite"
	// BackendBadger stores blobs in a Badger directory.
	BackendBadger = "badger"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)

	validate = validator.New()
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Policy   Policy         `yaml:"policy"`
	Activity ActivityConfig `yaml:"activity"`
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	Secrets  SecretsConfig  `yaml:"secrets,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
}

// StorageConfig selects the blob store backend.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"LORE_STORAGE_BACKEND" validate:"oneof=sqlite badger"`
	// Path is relative to the .lore directory unless absolute.
	Path string `yaml:"path" env:"LORE_STORAGE_PATH" validate:"required"`
}

// ActivityConfig sizes the activity ring buffer.
type ActivityConfig struct {
	Capacity int `yaml:"capacity" env:"LORE_ACTIVITY_CAPACITY" validate:"min=1"`
}

// LLMConfig holds configuration for the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty" env:"LORE_LLM_PROVIDER" validate:"omitempty,oneof=openai"`
	Model    string `yaml:"model,omitempty" env:"LORE_LLM_MODEL"`
	APIKey   string `yaml:"api_key,omitempty" env:"LORE_LLM_API_KEY"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty" env:"LORE_EMBEDDER_PROVIDER" validate:"omitempty,oneof=openai"`
	Model    string `yaml:"model,omitempty" env:"LORE_EMBEDDER_MODEL"`
	APIKey   string `yaml:"api_key,omitempty" env:"LORE_EMBEDDER_API_KEY"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty" env:"LORE_QDRANT_HOST"`
	Port       int    `yaml:"port,omitempty" env:"LORE_QDRANT_PORT" validate:"omitempty,min=1,max=65535"`
	Collection string `yaml:"collection,omitempty" env:"LORE_QDRANT_COLLECTION"`
	APIKey     string `yaml:"api_key,omitempty" env:"LORE_QDRANT_API_KEY"`
}

// SecretsConfig controls encryption of API keys at rest.
type SecretsConfig struct {
	Encrypt bool `yaml:"encrypt" env:"LORE_SECRETS_ENCRYPT"`
	// KeyPath is relative to the .lore directory unless absolute.
	KeyPath string `yaml:"key_path,omitempty" env:"LORE_SECRETS_KEY_PATH" validate:"required"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty" env:"LORE_LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    "lore.db",
		},
		Activity: ActivityConfig{
			Capacity: 100,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "lore_elements",
		},
		Secrets: SecretsConfig{
			KeyPath: "secret.key",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the .lore directory in the given path.
// File values are applied over Default, then LORE_* environment variables
// override them, then the result is validated.
func Load(basePath string) (*Config, error) {
	cfg, err := ReadFile(basePath)
	if err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadFile parses the config file over Default without consulting the
// environment. Use it when the result is written back to disk.
func ReadFile(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'lore init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides fills empty API keys from the provider's conventional variables.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		if c.Qdrant.APIKey == "" {
			c.Qdrant.APIKey = key
		}
	}
}

// Validate checks the struct tags of every section.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Namespace())
	field = strings.TrimPrefix(field, "config.")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// secretFields returns pointers to every API key in the config.
func (c *Config) secretFields() []*string {
	return []*string{&c.LLM.APIKey, &c.Embedder.APIKey, &c.Qdrant.APIKey}
}

// DecryptSecrets replaces every encrypted API key with its plaintext.
func (c *Config) DecryptSecrets(store ports.SecretStore) error {
	for _, field := range c.secretFields() {
		if !IsEncrypted(*field) {
			continue
		}
		plain, err := store.Decrypt(*field)
		if err != nil {
			return fmt.Errorf("decrypting api key: %w", err)
		}
		*field = plain
	}
	return nil
}

// EncryptSecrets replaces every plaintext API key with its ciphertext and
// reports how many were encrypted.
func (c *Config) EncryptSecrets(store ports.SecretStore) (int, error) {
	count := 0
	for _, field := range c.secretFields() {
		if *field == "" || IsEncrypted(*field) {
			continue
		}
		sealed, err := store.Encrypt(*field)
		if err != nil {
			return count, fmt.Errorf("encrypting api key: %w", err)
		}
		*field = sealed
		count++
	}
	return count, nil
}

// IsEncrypted reports whether value carries the "enc:" prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, "enc:")
}

// StoragePath resolves the storage path against the .lore directory.
func (c *Config) StoragePath(basePath string) string {
	return resolve(basePath, c.Storage.Path)
}

// SecretKeyPath resolves the secret key path against the .lore directory.
func (c *Config) SecretKeyPath(basePath string) string {
	return resolve(basePath, c.Secrets.KeyPath)
}

func resolve(basePath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ConfigDir(basePath), p)
}

// ConfigDir returns the path to the .lore config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if a lore config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

// SanitizeWorldName converts a world title to a safe file name stem.
func SanitizeWorldName(name string) string {
	// Convert to lowercase
	name = strings.ToLower(name)

	// Replace spaces and hyphens with underscores
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	// Remove any characters that aren't alphanumeric or underscore
	name = reNonAlphanumeric.ReplaceAllString(name, "")

	// Remove consecutive underscores
	name = reMultipleUnderscores.ReplaceAllString(name, "_")

	// Trim leading/trailing underscores
	name = strings.Trim(name, "_")

	if name == "" {
		return "world"
	}

	return name
}

// Policy is the account's entitlement set. It implements ports.AccessPolicy.
// Non-positive ceilings mean no ceiling and empty allow-lists allow everything.
type Policy struct {
	Worlds           int      `yaml:"max_worlds" env:"LORE_POLICY_MAX_WORLDS" validate:"min=0"`
	ElementsPerWorld int      `yaml:"max_elements_per_world" env:"LORE_POLICY_MAX_ELEMENTS_PER_WORLD" validate:"min=0"`
	ExportFormats    []string `yaml:"allowed_export_formats,omitempty" env:"LORE_POLICY_EXPORT_FORMATS" envSeparator:"," validate:"dive,oneof=json canonical text txt markdown md csv xml"`
	AIProviders      []string `yaml:"allowed_ai_providers,omitempty" env:"LORE_POLICY_AI_PROVIDERS" envSeparator:","`
}

var _ ports.AccessPolicy = (*Policy)(nil)

// MaxWorlds returns the world ceiling.
func (p *Policy) MaxWorlds() int { return p.Worlds }

// MaxElementsPerWorld returns the per-world element ceiling.
func (p *Policy) MaxElementsPerWorld() int { return p.ElementsPerWorld }

// AllowsExportFormat reports whether format is permitted.
func (p *Policy) AllowsExportFormat(format entities.ExportFormat) bool {
	if len(p.ExportFormats) == 0 {
		return true
	}
	for _, name := range p.ExportFormats {
		if f, err := entities.ParseExportFormat(name); err == nil && f == format {
			return true
		}
	}
	return false
}

// AllowsAIProvider reports whether provider is permitted.
func (p *Policy) AllowsAIProvider(provider string) bool {
	if len(p.AIProviders) == 0 {
		return true
	}
	for _, name := range p.AIProviders {
		if strings.EqualFold(strings.TrimSpace(name), provider) {
			return true
		}
	}
	return false
}

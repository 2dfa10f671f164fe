// Package config loads the curator configuration file.
//
// The file is YAML. Every key is optional: values left out keep their
// defaults, and a missing file yields the defaults unchanged. Command line
// flags are applied on top of the loaded file by the curator binary.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/curation"
)

const (
	// DirName is the directory under the user's home holding curator data.
	DirName = ".curator"

	// FileName is the configuration file inside DirName.
	FileName = "config.yaml"

	DefaultBind = "127.0.0.1"
	DefaultPort = 8080
)

// AIConfig selects the generation and embedding services.
type AIConfig struct {
	Backend         string  `yaml:"backend"`
	GenerationHost  string  `yaml:"generation_host"`
	GenerationModel string  `yaml:"generation_model"`
	GenerationToken string  `yaml:"generation_token,omitempty"`
	EmbeddingHost   string  `yaml:"embedding_host"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	EmbeddingToken  string  `yaml:"embedding_token,omitempty"`
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float64 `yaml:"temperature"`
}

// StorageConfig locates the knowledge base.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SessionsConfig tunes the curation orchestrator.
type SessionsConfig struct {
	TTL               time.Duration `yaml:"ttl"`
	GenerationTimeout time.Duration `yaml:"generation_timeout"`
	StoreTimeout      time.Duration `yaml:"store_timeout"`
	Workers           int           `yaml:"workers"`
	HistoryTail       int           `yaml:"history_tail"`
}

// HTTPConfig is the listen address of the HTTP API.
type HTTPConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// File models config.yaml.
type File struct {
	AI         AIConfig       `yaml:"ai"`
	Storage    StorageConfig  `yaml:"storage"`
	Sessions   SessionsConfig `yaml:"sessions"`
	HTTP       HTTPConfig     `yaml:"http"`
	Categories []string       `yaml:"categories"`
}

// DefaultDir returns ~/.curator, or .curator when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), FileName)
}

// Default returns the configuration used when no file exists.
func Default() *File {
	aiDefaults := ai.DefaultConfig()
	return &File{
		AI: AIConfig{
			Backend:         aiDefaults.Backend,
			GenerationHost:  aiDefaults.GenerationHost,
			GenerationModel: aiDefaults.GenerationModel,
			EmbeddingHost:   aiDefaults.EmbeddingHost,
			EmbeddingModel:  aiDefaults.EmbeddingModel,
			MaxTokens:       aiDefaults.MaxTokens,
			Temperature:     aiDefaults.Temperature,
		},
		Storage: StorageConfig{
			Path: filepath.Join(DefaultDir(), "db"),
		},
		Sessions: SessionsConfig{
			TTL:               curation.DefaultSessionTTL,
			GenerationTimeout: curation.DefaultGenerationTimeout,
			StoreTimeout:      curation.DefaultStoreTimeout,
			Workers:           curation.DefaultWorkers,
			HistoryTail:       curation.DefaultHistoryTail,
		},
		HTTP: HTTPConfig{
			Bind: DefaultBind,
			Port: DefaultPort,
		},
		Categories: append([]string(nil), ai.DefaultCategories...),
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error.
func Load(path string) (*File, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks the values the AI configuration does not cover.
func (f *File) Validate() error {
	if f.Storage.Path == "" {
		return errors.New("storage.path is required")
	}
	if f.Sessions.TTL < 0 {
		return errors.New("sessions.ttl must not be negative")
	}
	if f.Sessions.GenerationTimeout <= 0 || f.Sessions.StoreTimeout <= 0 {
		return errors.New("sessions timeouts must be positive")
	}
	if f.Sessions.HistoryTail < 0 {
		return errors.New("sessions.history_tail must not be negative")
	}
	if f.HTTP.Port < 0 || f.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", f.HTTP.Port)
	}
	return nil
}

// AIConfig builds the provider configuration.
func (f *File) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithBackend(f.AI.Backend),
		ai.WithGenerationHost(f.AI.GenerationHost),
		ai.WithGenerationModel(f.AI.GenerationModel),
		ai.WithGenerationToken(f.AI.GenerationToken),
		ai.WithEmbeddingHost(f.AI.EmbeddingHost),
		ai.WithEmbeddingModel(f.AI.EmbeddingModel),
		ai.WithEmbeddingToken(f.AI.EmbeddingToken),
		ai.WithMaxTokens(f.AI.MaxTokens),
		ai.WithTemperature(f.AI.Temperature),
		ai.WithCategories(f.Categories),
	)
}

// CurationOptions returns the orchestrator options for the sessions section.
func (f *File) CurationOptions() []curation.Option {
	return []curation.Option{
		curation.WithSessionTTL(f.Sessions.TTL),
		curation.WithGenerationTimeout(f.Sessions.GenerationTimeout),
		curation.WithStoreTimeout(f.Sessions.StoreTimeout),
		curation.WithWorkers(f.Sessions.Workers),
		curation.WithHistoryTail(f.Sessions.HistoryTail),
	}
}

// Addr is the host:port the HTTP API listens on.
func (f *File) Addr() string {
	return fmt.Sprintf("%s:%d", f.HTTP.Bind, f.HTTP.Port)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

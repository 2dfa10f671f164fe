// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Generation backends.
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Backend selects the generation API: "openai" for any OpenAI-compatible
	// server (Ollama, vLLM, OpenAI) or "anthropic".
	Backend string

	// GenerationHost is the base URL for the generation API.
	// Optional for the anthropic backend.
	GenerationHost string

	// GenerationModel is the model identifier used for summaries, dialogue and articles.
	// Example: "qwen2.5:7b", "claude-sonnet-4-20250514"
	GenerationModel string

	// GenerationToken is the API key for the generation service.
	// Local OpenAI-compatible servers accept "none".
	GenerationToken string

	// EmbeddingHost is the base URL for the OpenAI-compatible embedding service.
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	EmbeddingModel string

	// EmbeddingToken is the API key for the embedding service.
	EmbeddingToken string

	// MaxTokens caps each generated completion.
	MaxTokens int

	// Temperature is the sampling temperature for dialogue and articles.
	Temperature float64

	// MaxInputChars is the largest text summarized in a single request.
	// Longer texts are split into chunks of ChunkSize with ChunkOverlap.
	MaxInputChars int
	ChunkSize     int
	ChunkOverlap  int

	// Categories are suggested to the dialogue assistant.
	Categories []string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the generation backend.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithGenerationHost sets the generation service host URL.
func WithGenerationHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithHost sets both generation and embedding hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
		c.EmbeddingHost = host
	}
}

// WithGenerationModel sets the generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithGenerationToken sets the generation API key.
func WithGenerationToken(token string) ConfigOption {
	return func(c *Config) {
		c.GenerationToken = token
	}
}

// WithEmbeddingToken sets the embedding API key.
func WithEmbeddingToken(token string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingToken = token
	}
}

// WithMaxTokens sets the completion token cap.
func WithMaxTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithChunking sets the summarization chunking limits.
func WithChunking(maxInputChars, chunkSize, overlap int) ConfigOption {
	return func(c *Config) {
		c.MaxInputChars = maxInputChars
		c.ChunkSize = chunkSize
		c.ChunkOverlap = overlap
	}
}

// WithCategories replaces the suggested category list.
func WithCategories(categories []string) ConfigOption {
	return func(c *Config) {
		c.Categories = categories
	}
}

// DefaultConfig returns a Config with sensible defaults for a local OpenAI-compatible server.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		Backend:         BackendOpenAI,
		GenerationHost:  defaultHost,
		GenerationModel: "qwen2.5:7b",
		GenerationToken: "none",
		EmbeddingHost:   defaultHost,
		EmbeddingModel:  "embeddinggemma",
		EmbeddingToken:  "none",
		MaxTokens:       4096,
		Temperature:     0.3,
		MaxInputChars:   100_000,
		ChunkSize:       80_000,
		ChunkOverlap:    1000,
		Categories:      append([]string(nil), DefaultCategories...),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend(BackendAnthropic),
//	    WithGenerationModel("claude-sonnet-4-20250514"),
//	    WithGenerationToken(os.Getenv("ANTHROPIC_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// OpenAI-compatible hosts get the /v1 suffix most servers require.
func (c *Config) Normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendOpenAI
	}
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	if c.Backend == BackendOpenAI {
		c.GenerationHost = withV1(c.GenerationHost)
	}
	if c.GenerationToken == "" && c.Backend == BackendOpenAI {
		c.GenerationToken = "none"
	}
	if c.EmbeddingToken == "" {
		c.EmbeddingToken = "none"
	}
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendOpenAI:
		if c.GenerationHost == "" {
			return errors.New("ai config: GenerationHost is required")
		}
	case BackendAnthropic:
		if c.GenerationToken == "" || c.GenerationToken == "none" {
			return errors.New("ai config: GenerationToken is required for the anthropic backend")
		}
	default:
		return errors.New("ai config: Backend must be openai or anthropic")
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.MaxTokens < 1 {
		return errors.New("ai config: MaxTokens must be positive")
	}
	if c.ChunkSize < 1 || c.MaxInputChars < 1 {
		return errors.New("ai config: MaxInputChars and ChunkSize must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return errors.New("ai config: ChunkOverlap must be smaller than ChunkSize")
	}
	return nil
}

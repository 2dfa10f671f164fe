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


package langchain

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/curator/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider implements ai.AIProvider using langchaingo clients.
// It manages embedder and generator instances.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	generator *Generator
	logger    *slog.Logger
}

// NewProvider creates a new AI provider.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		generator: generator,
		logger:    slog.Default().With("component", "langchain-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Generator returns the text generation service.
func (p *Provider) Generator() ai.TextGenerator {
	return p.generator
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing provider", "backend", p.config.Backend)
	return nil
}

// newChatModel builds the generation client for the configured backend.
func newChatModel(config *ai.Config) (llms.Model, error) {
	switch config.Backend {
	case ai.BackendOpenAI:
		return openai.New(
			openai.WithBaseURL(config.GenerationHost),
			openai.WithToken(config.GenerationToken),
			openai.WithModel(config.GenerationModel),
		)
	case ai.BackendAnthropic:
		opts := []anthropic.Option{
			anthropic.WithToken(config.GenerationToken),
			anthropic.WithModel(config.GenerationModel),
		}
		if config.GenerationHost != "" {
			opts = append(opts, anthropic.WithBaseURL(config.GenerationHost))
		}
		return anthropic.New(opts...)
	}
	return nil, fmt.Errorf("unsupported generation backend %q", config.Backend)
}

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


package curator

import (
	"io"
	"log/slog"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/langchain"
	"github.com/poiesic/curator/curation"
	"github.com/poiesic/curator/knowledge"
	"github.com/poiesic/curator/reembed"
	"github.com/poiesic/curator/storage"
	"github.com/poiesic/curator/storage/badger"
)

// Curator owns the storage backend, the AI provider, the knowledge base and
// the curation orchestrator built on top of them.
type Curator struct {
	backend        *badger.Backend
	documentRepo   storage.DocumentRepository
	checkpointRepo storage.CheckpointRepository
	provider       ai.AIProvider
	knowledge      *knowledge.Base
	orchestrator   *curation.Orchestrator
	aiConfig       *ai.Config
	logger         *slog.Logger
}

// Option configures a Curator.
type Option func(*options)

type options struct {
	aiConfig      *ai.Config
	provider      ai.AIProvider
	inMemory      bool
	curationOpts  []curation.Option
	knowledgeOpts []knowledge.Option
}

// WithAIConfig sets the configuration used to build the AI provider.
func WithAIConfig(config *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The Curator takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithInMemory keeps all data in memory. The path passed to Open is ignored.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithCurationOptions passes options through to the orchestrator.
func WithCurationOptions(opts ...curation.Option) Option {
	return func(o *options) {
		o.curationOpts = append(o.curationOpts, opts...)
	}
}

// WithKnowledgeOptions passes options through to the knowledge base.
func WithKnowledgeOptions(opts ...knowledge.Option) Option {
	return func(o *options) {
		o.knowledgeOpts = append(o.knowledgeOpts, opts...)
	}
}

// Open opens the store at filePath and wires the curation stack on top of it.
func Open(filePath string, opts ...Option) (*Curator, error) {
	options := &options{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documentRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	checkpointRepo := badger.NewCheckpointRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = langchain.NewProvider(options.aiConfig)
		if err != nil {
			documentRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	c := &Curator{
		backend:        backend,
		documentRepo:   documentRepo,
		checkpointRepo: checkpointRepo,
		provider:       provider,
		aiConfig:       options.aiConfig,
		logger:         slog.Default().With("component", "curator"),
	}

	c.knowledge, err = knowledge.NewBase(documentRepo, provider.Embedder(), options.knowledgeOpts...)
	if err != nil {
		c.Close()
		return nil, err
	}

	curationOpts := append([]curation.Option{curation.WithRelatedKnowledge(c.knowledge)}, options.curationOpts...)
	c.orchestrator, err = curation.NewOrchestrator(provider.Generator(), c.knowledge, curationOpts...)
	if err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the orchestrator, the provider, the repositories and the
// backend, in that order.
func (c *Curator) Close() error {
	if c.orchestrator != nil {
		c.orchestrator.Release()
	}

	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing AI provider", "err", err)
	}

	if err := c.documentRepo.Close(); err != nil {
		c.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (c *Curator) Orchestrator() *curation.Orchestrator {
	return c.orchestrator
}

func (c *Curator) Knowledge() *knowledge.Base {
	return c.knowledge
}

func (c *Curator) DocumentRepository() storage.DocumentRepository {
	return c.documentRepo
}

func (c *Curator) CheckpointRepository() storage.CheckpointRepository {
	return c.checkpointRepo
}

func (c *Curator) Provider() ai.AIProvider {
	return c.provider
}

// NewReembedder builds a re-embedding job over the stored documents. An empty
// config.Model defaults to the configured embedding model.
func (c *Curator) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	if config == nil {
		config = reembed.DefaultConfig()
	}
	if config.Model == "" && c.aiConfig != nil {
		config.Model = c.aiConfig.EmbeddingModel
	}
	return reembed.NewReembedder(c.documentRepo, c.checkpointRepo, c.provider.Embedder(), config, progress)
}

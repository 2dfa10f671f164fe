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


package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
)

const (
	// DefaultRelatedThreshold is the minimum similarity for related-document lookups.
	DefaultRelatedThreshold = float32(0.60)

	// DefaultRelatedLimit caps the documents returned by RelatedContext.
	DefaultRelatedLimit = 3

	// DefaultListLimit is used when ListDocuments is called without a limit.
	DefaultListLimit = 100

	documentIDPrefix = "doc_"
)

// Base is the knowledge base: embedded documents in a DocumentRepository.
type Base struct {
	repo             storage.DocumentRepository
	embedder         ai.Embedder
	logger           *slog.Logger
	relatedThreshold float32
	relatedLimit     int
	now              func() time.Time
}

// Option configures a Base.
type Option func(*Base) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Base) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger.With("component", "knowledge")
		return nil
	}
}

// WithRelatedThreshold sets the minimum similarity for RelatedContext.
func WithRelatedThreshold(threshold float32) Option {
	return func(b *Base) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("related threshold must be between -1 and 1, got %v", threshold)
		}
		b.relatedThreshold = threshold
		return nil
	}
}

// WithRelatedLimit sets how many documents RelatedContext returns.
func WithRelatedLimit(limit int) Option {
	return func(b *Base) error {
		if limit <= 0 {
			return fmt.Errorf("related limit must be positive, got %d", limit)
		}
		b.relatedLimit = limit
		return nil
	}
}

// NewBase creates a knowledge base over the given repository and embedder.
func NewBase(repo storage.DocumentRepository, embedder ai.Embedder, opts ...Option) (*Base, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	b := &Base{
		repo:             repo,
		embedder:         embedder,
		logger:           slog.Default().With("component", "knowledge"),
		relatedThreshold: DefaultRelatedThreshold,
		relatedLimit:     DefaultRelatedLimit,
		now:              func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// NewDocumentID returns a fresh document id of the form doc_<12 hex>.
func NewDocumentID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return documentIDPrefix + hex[:12]
}

// CreateDocument embeds content and stores it as a new document.
// Returns the assigned document id.
func (b *Base) CreateDocument(ctx context.Context, content string, metadata map[string]string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", core.ErrEmptyContent
	}

	vector, err := b.embed(ctx, content)
	if err != nil {
		return "", err
	}

	now := b.now()
	meta := make(map[string]string, len(metadata)+1)
	maps.Copy(meta, metadata)
	if meta[core.MetaCreatedAt] == "" {
		meta[core.MetaCreatedAt] = now.Format(time.RFC3339)
	}

	doc := &core.KnowledgeDocument{
		ID:        NewDocumentID(),
		Content:   content,
		Metadata:  meta,
		Vector:    vector,
		CreatedAt: now,
	}
	if _, err := b.repo.AddDocuments(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}

	b.logger.Info("document created", "id", doc.ID, "category", doc.Category())
	return doc.ID, nil
}

// UpdateDocument replaces content and merges metadata into an existing document.
// An empty content keeps the current text; the vector is recomputed only when
// the text changes.
func (b *Base) UpdateDocument(ctx context.Context, id, content string, metadata map[string]string) (*core.KnowledgeDocument, error) {
	doc, err := b.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if content != "" && content != doc.Content {
		if strings.TrimSpace(content) == "" {
			return nil, core.ErrEmptyContent
		}
		vector, err := b.embed(ctx, content)
		if err != nil {
			return nil, err
		}
		doc.Content = content
		doc.Vector = vector
	}

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]string, len(metadata)+1)
	}
	maps.Copy(doc.Metadata, metadata)
	doc.Metadata[core.MetaUpdatedAt] = b.now().Format(time.RFC3339)

	updated, err := b.repo.UpdateDocuments(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	b.logger.Info("document updated", "id", id)
	return updated[0], nil
}

// DeleteDocument removes a document.
func (b *Base) DeleteDocument(ctx context.Context, id string) error {
	if err := b.repo.DeleteDocuments(ctx, id); err != nil {
		return err
	}
	b.logger.Info("document deleted", "id", id)
	return nil
}

// GetDocument returns a single document.
func (b *Base) GetDocument(ctx context.Context, id string) (*core.KnowledgeDocument, error) {
	return b.repo.GetDocument(ctx, id)
}

// ListDocuments returns documents in insertion order.
// A non-positive limit means DefaultListLimit.
func (b *Base) ListDocuments(ctx context.Context, offset, limit int) ([]*core.KnowledgeDocument, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return b.repo.ListDocuments(ctx, offset, limit)
}

func (b *Base) embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := b.embedder.EmbedText(ctx, text)
	if err != nil {
		b.logger.Error("error generating embedding", "err", err)
		return nil, fmt.Errorf("failed to embed document: %w", err)
	}
	return core.NormalizeVector(vector), nil
}

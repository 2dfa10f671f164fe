package storage

import (
	"context"

	"github.com/poiesic/curator/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds documents similar to the given vector.
	// Returns documents with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}

// DocumentRepository provides operations for managing knowledge documents.
type DocumentRepository interface {
	Repository

	// AddDocuments stores new documents.
	// Sets CreatedAt, UpdatedAt and ContentHash.
	// Returns ErrDuplicateKey if a document id or identical content already exists.
	AddDocuments(ctx context.Context, docs ...*core.KnowledgeDocument) ([]*core.KnowledgeDocument, error)

	// UpdateDocuments replaces existing documents.
	// Updates UpdatedAt and ContentHash; CreatedAt is preserved.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.KnowledgeDocument) ([]*core.KnowledgeDocument, error)

	// DeleteDocuments removes documents and their indices.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...string) error

	// GetDocument retrieves a single document by id.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.KnowledgeDocument, error)

	// GetDocuments retrieves multiple documents by id.
	// Returns only the documents that exist (no error for missing ids).
	GetDocuments(ctx context.Context, ids ...string) ([]*core.KnowledgeDocument, error)

	// ListDocuments returns documents in insertion order, skipping offset
	// documents and returning at most limit.
	ListDocuments(ctx context.Context, offset, limit int) ([]*core.KnowledgeDocument, error)

	// ListDocumentsAfter returns up to limit documents inserted after the
	// document with the given id. An empty id starts from the beginning.
	ListDocumentsAfter(ctx context.Context, afterID string, limit int) ([]*core.KnowledgeDocument, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// FindByContentHash returns the document whose content fingerprint matches.
	// Returns ErrNotFound if there is none.
	FindByContentHash(ctx context.Context, hash core.ID) (*core.KnowledgeDocument, error)
}

// CheckpointRepository persists progress of long-running batch jobs.
type CheckpointRepository interface {
	// SaveCheckpoint stores the checkpoint under its Name.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint returns the named checkpoint, or nil, nil if none exists.
	LoadCheckpoint(ctx context.Context, name string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the named checkpoint. Missing checkpoints are ignored.
	DeleteCheckpoint(ctx context.Context, name string) error
}

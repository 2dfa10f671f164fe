package curation

import "context"

// KnowledgeStore is the permanent store commits are written to.
type KnowledgeStore interface {
	// CreateDocument stores content with its metadata and returns the document id.
	CreateDocument(ctx context.Context, content string, metadata map[string]string) (string, error)
}

// RelatedKnowledge finds stored knowledge relevant to a dialogue message.
type RelatedKnowledge interface {
	// RelatedContext returns excerpts of stored documents similar to text.
	RelatedContext(ctx context.Context, text string) ([]string, error)
}

package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TextGenerator turns curation inputs into generated text.
// Implementations must be thread-safe for concurrent use.
type TextGenerator interface {
	// Summarize produces a faithful summary of extracted source text.
	// sourceLabel names the source (file name, page title) for the prompt.
	Summarize(ctx context.Context, text, sourceLabel string) (string, error)

	// DialogueTurn produces the assistant's reply to the operator's newest
	// message and, optionally, a proposed consensus point.
	DialogueTurn(ctx context.Context, req DialogueRequest) (*DialogueReply, error)

	// SynthesizeArticle writes a markdown article from confirmed consensus points.
	SynthesizeArticle(ctx context.Context, req ArticleRequest) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Generator returns the text generation service.
	Generator() TextGenerator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

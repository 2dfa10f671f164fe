package knowledge

import (
	"context"
	"slices"
	"strings"

	"github.com/poiesic/curator/core"
)

const (
	// DefaultQueryResults is used when Query is called without a result count.
	DefaultQueryResults = 5

	// verbatimBoost is added to the score of documents containing every query word.
	verbatimBoost = float32(0.3)
)

// Result is a scored query hit.
type Result struct {
	Document   *core.KnowledgeDocument `json:"document"`
	Similarity float32                 `json:"similarity"`
	Score      float32                 `json:"score"`
	Verbatim   bool                    `json:"verbatim"`
}

// Stats summarizes the contents of the knowledge base.
type Stats struct {
	Total      int            `json:"total"`
	Categories map[string]int `json:"categories"`
}

// Query returns the n documents most relevant to text.
// Score is the cosine similarity plus a boost for verbatim keyword matches.
func (b *Base) Query(ctx context.Context, text string, n int) ([]*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	if n <= 0 {
		n = DefaultQueryResults
	}

	vector, err := b.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	matches, err := b.repo.FindSimilar(ctx, vector, -1, 0)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(matches))
	for _, match := range matches {
		r := &Result{
			Document:   match.Document,
			Similarity: match.Score,
			Score:      match.Score,
		}
		if matchesVerbatim(match.Document.Content, text) {
			r.Verbatim = true
			r.Score += verbatimBoost
		}
		results = append(results, r)
	}

	slices.SortStableFunc(results, func(x, y *Result) int {
		switch {
		case x.Score > y.Score:
			return -1
		case x.Score < y.Score:
			return 1
		default:
			return 0
		}
	})

	if len(results) > n {
		results = results[:n]
	}
	b.logger.Debug("query finished", "query", text, "results", len(results))
	return results, nil
}

// Stats counts documents overall and per category.
func (b *Base) Stats(ctx context.Context) (*Stats, error) {
	docs, err := b.repo.ListDocuments(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(docs), Categories: make(map[string]int)}
	for _, doc := range docs {
		stats.Categories[doc.Category()]++
	}
	return stats, nil
}

// RelatedContext returns the content of stored documents similar to text,
// most similar first. Used to ground dialogue turns in existing knowledge.
func (b *Base) RelatedContext(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	vector, err := b.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	matches, err := b.repo.FindSimilar(ctx, vector, b.relatedThreshold, b.relatedLimit)
	if err != nil {
		return nil, err
	}

	related := make([]string, 0, len(matches))
	for _, match := range matches {
		related = append(related, match.Document.Content)
	}
	return related, nil
}

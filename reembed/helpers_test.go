package reembed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
	"github.com/poiesic/curator/storage/badger"
	"github.com/stretchr/testify/require"
)

// mockEmbedder for testing
type mockEmbedder struct {
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	calls          int
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.embedTextsFunc != nil {
		return m.embedTextsFunc(ctx, texts)
	}
	// Default: return unnormalized vectors for each text
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1.0, 2.0, 2.0} // magnitude = 3.0
	}
	return result, nil
}

func setupTestDB(t *testing.T) (storage.DocumentRepository, storage.CheckpointRepository) {
	t.Helper()
	backend, err := badger.OpenBackend("", true)
	require.NoError(t, err)

	repo, err := badger.NewDocumentRepository(backend)
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo, badger.NewCheckpointRepository(backend)
}

// addDocuments stores n documents with distinct content and increasing creation times.
func addDocuments(t *testing.T, repo storage.DocumentRepository, n int) []*core.KnowledgeDocument {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := make([]*core.KnowledgeDocument, n)
	for i := range docs {
		docs[i] = &core.KnowledgeDocument{
			ID:        fmt.Sprintf("doc_%012d", i),
			Content:   fmt.Sprintf("document number %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	added, err := repo.AddDocuments(context.Background(), docs...)
	require.NoError(t, err)
	return added
}

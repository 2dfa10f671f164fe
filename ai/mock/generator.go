package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/curator/ai"
)

// MockGenerator is a test double for ai.TextGenerator.
// Each method calls its function field when set and falls back to a
// deterministic default otherwise.
type MockGenerator struct {
	SummarizeFunc         func(ctx context.Context, text, sourceLabel string) (string, error)
	DialogueTurnFunc      func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error)
	SynthesizeArticleFunc func(ctx context.Context, req ai.ArticleRequest) (string, error)

	mu           sync.Mutex
	callCount    int
	dialogueReqs []ai.DialogueRequest
	articleReqs  []ai.ArticleRequest
}

// NewMockGenerator creates a mock generator with default behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Summarize returns "Summary of <label>: <text>" by default.
func (m *MockGenerator) Summarize(ctx context.Context, text, sourceLabel string) (string, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.SummarizeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, sourceLabel)
	}
	return "Summary of " + sourceLabel + ": " + text, nil
}

// DialogueTurn echoes the operator message by default and proposes nothing.
func (m *MockGenerator) DialogueTurn(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
	m.mu.Lock()
	m.callCount++
	m.dialogueReqs = append(m.dialogueReqs, req)
	fn := m.DialogueTurnFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &ai.DialogueReply{Reply: "You said: " + req.Message}, nil
}

// SynthesizeArticle joins the point claims under a heading by default.
func (m *MockGenerator) SynthesizeArticle(ctx context.Context, req ai.ArticleRequest) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.articleReqs = append(m.articleReqs, req)
	fn := m.SynthesizeArticleFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	claims := make([]string, len(req.Points))
	for i, p := range req.Points {
		claims[i] = "- " + p.Claim
	}
	return "# " + req.Topic + "\n\n" + strings.Join(claims, "\n"), nil
}

// CallCount returns the number of times any method was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// DialogueRequests returns every dialogue request received, oldest first.
func (m *MockGenerator) DialogueRequests() []ai.DialogueRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.DialogueRequest(nil), m.dialogueReqs...)
}

// ArticleRequests returns every article request received, oldest first.
func (m *MockGenerator) ArticleRequests() []ai.ArticleRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.ArticleRequest(nil), m.articleReqs...)
}

// Reset clears recorded calls and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.dialogueReqs = nil
	m.articleReqs = nil
	m.SummarizeFunc = nil
	m.DialogueTurnFunc = nil
	m.SynthesizeArticleFunc = nil
}

package curation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"testing"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/mock"
	"github.com/stretchr/testify/require"
)

type storedDocument struct {
	content  string
	metadata map[string]string
}

// storeStub is a KnowledgeStore that records writes.
type storeStub struct {
	mu   sync.Mutex
	id   string
	err  error
	docs []storedDocument
}

func (s *storeStub) CreateDocument(ctx context.Context, content string, metadata map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.docs = append(s.docs, storedDocument{content: content, metadata: maps.Clone(metadata)})
	if s.id != "" {
		return s.id, nil
	}
	return fmt.Sprintf("doc-%d", len(s.docs)), nil
}

func (s *storeStub) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *storeStub) documents() []storedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storedDocument(nil), s.docs...)
}

// eventLog records notifications.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) Notify(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) types() []EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

func (l *eventLog) last() Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[len(l.events)-1]
}

type relatedStub struct {
	related []string
	err     error
}

func (r relatedStub) RelatedContext(ctx context.Context, text string) ([]string, error) {
	return r.related, r.err
}

var errUpstream = errors.New("upstream unavailable")

// ketosisGenerator proposes the operator's message as a strong claim and
// synthesizes a fixed article.
func ketosisGenerator() *mock.MockGenerator {
	gen := mock.NewMockGenerator()
	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
		return &ai.DialogueReply{
			Reply: "What's your evidence?",
			ProposedPoint: &ai.ProposedPoint{
				Claim:         req.Message,
				EvidenceLevel: "strong",
			},
		}, nil
	}
	gen.SynthesizeArticleFunc = func(ctx context.Context, req ai.ArticleRequest) (string, error) {
		return "Ketosis relies on fat...", nil
	}
	return gen
}

func newTestOrchestrator(t *testing.T, gen ai.TextGenerator, store KnowledgeStore, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(gen, store, append([]Option{WithWorkers(4)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(o.Release)
	return o
}

// discussing starts a topic and sends one message per claim.
func discussing(t *testing.T, o *Orchestrator, claims ...string) string {
	t.Helper()
	ctx := context.Background()
	snap, err := o.StartTopic(ctx, "", "ketosis basics", "metabolism")
	require.NoError(t, err)
	for _, c := range claims {
		_, err := o.SendMessage(ctx, snap.SessionID, c)
		require.NoError(t, err)
	}
	return snap.SessionID
}

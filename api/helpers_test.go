package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/mock"
	"github.com/poiesic/curator/curation"
	"github.com/poiesic/curator/knowledge"
	"github.com/poiesic/curator/storage/badger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server *Server
	orch   *curation.Orchestrator
	kb     *knowledge.Base
	gen    *mock.MockGenerator
	events *Broker
}

// proposingGenerator proposes every operator message as a consensus point.
func proposingGenerator() *mock.MockGenerator {
	gen := mock.NewMockGenerator()
	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
		return &ai.DialogueReply{
			Reply:         "Noted. Any citations?",
			ProposedPoint: &ai.ProposedPoint{Claim: req.Message, EvidenceLevel: "RCT", Citations: "Smith 2020"},
		}, nil
	}
	return gen
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	kb, err := knowledge.NewBase(repo, mock.NewMockEmbedder())
	require.NoError(t, err)

	gen := proposingGenerator()
	events := NewBroker()
	orch, err := curation.NewOrchestrator(gen, kb, curation.WithWorkers(4), curation.WithNotifier(events))
	require.NoError(t, err)
	t.Cleanup(orch.Release)

	server, err := NewServer(Config{
		Orchestrator: orch,
		Knowledge:    kb,
		Events:       events,
		Categories:   ai.DefaultCategories,
	})
	require.NoError(t, err)

	return &testEnv{server: server, orch: orch, kb: kb, gen: gen, events: events}
}

// do sends a JSON request and returns the recorder. A nil body sends none.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// snapshot performs an action expected to succeed and returns its snapshot.
func (e *testEnv) snapshot(t *testing.T, method, path string, body any) *curation.Snapshot {
	t.Helper()
	rec := e.do(t, method, path, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env SnapshotEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.OK)
	require.NotNil(t, env.Snapshot)
	return env.Snapshot
}

// failure performs an action expected to fail and returns its envelope.
func (e *testEnv) failure(t *testing.T, method, path string, body any, status int) ErrorEnvelope {
	t.Helper()
	rec := e.do(t, method, path, body)
	require.Equal(t, status, rec.Code, rec.Body.String())

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.False(t, env.OK)
	return env
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

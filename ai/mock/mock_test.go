package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicVector(t *testing.T) {
	a := DeterministicVector("ketosis", 16)
	b := DeterministicVector("ketosis", 16)
	c := DeterministicVector("glycolysis", 16)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockGeneratorDefaults(t *testing.T) {
	ctx := context.Background()
	gen := NewMockGenerator()

	summary, err := gen.Summarize(ctx, "body", "file.md")
	require.NoError(t, err)
	assert.Equal(t, "Summary of file.md: body", summary)

	reply, err := gen.DialogueTurn(ctx, ai.DialogueRequest{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "You said: hi", reply.Reply)
	assert.Nil(t, reply.ProposedPoint)

	article, err := gen.SynthesizeArticle(ctx, ai.ArticleRequest{
		Topic:  "Ketosis",
		Points: []core.ConsensusPoint{{Claim: "a"}, {Claim: "b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "# Ketosis\n\n- a\n- b", article)

	assert.Equal(t, 3, gen.CallCount())
	assert.Len(t, gen.DialogueRequests(), 1)
	assert.Len(t, gen.ArticleRequests(), 1)

	gen.Reset()
	assert.Equal(t, 0, gen.CallCount())
	assert.Empty(t, gen.DialogueRequests())
}

func TestMockGeneratorInjection(t *testing.T) {
	boom := errors.New("boom")
	gen := NewMockGenerator()
	gen.SummarizeFunc = func(context.Context, string, string) (string, error) { return "", boom }

	_, err := gen.Summarize(context.Background(), "x", "y")
	assert.ErrorIs(t, err, boom)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider().(*MockProvider)
	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	assert.Same(t, p.GetMockGenerator(), p.Generator())
	assert.NoError(t, p.Close())
}

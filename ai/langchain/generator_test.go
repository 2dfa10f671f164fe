package langchain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

// scriptedModel records every request and answers from respond.
type scriptedModel struct {
	respond  func(call int, messages []llms.MessageContent) (string, error)
	requests [][]llms.MessageContent
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.requests = append(m.requests, messages)
	text, err := m.respond(len(m.requests)-1, messages)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func messageText(m llms.MessageContent) string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("single request for short text", func(t *testing.T) {
		gen := newGeneratorWithModel(fake.NewFakeLLM([]string{"  A faithful summary.  "}), ai.DefaultConfig())

		summary, err := gen.Summarize(ctx, "Ketones are produced in the liver.", "notes.md")
		require.NoError(t, err)
		assert.Equal(t, "A faithful summary.", summary)
	})

	t.Run("prompt carries the source label", func(t *testing.T) {
		model := &scriptedModel{respond: func(int, []llms.MessageContent) (string, error) { return "ok", nil }}
		gen := newGeneratorWithModel(model, ai.DefaultConfig())

		_, err := gen.Summarize(ctx, "body text", "paper.txt")
		require.NoError(t, err)
		require.Len(t, model.requests, 1)
		require.Len(t, model.requests[0], 2)
		assert.Equal(t, llms.ChatMessageTypeSystem, model.requests[0][0].Role)
		assert.Contains(t, messageText(model.requests[0][1]), "Source: paper.txt")
		assert.Contains(t, messageText(model.requests[0][1]), "body text")
	})

	t.Run("empty text", func(t *testing.T) {
		gen := newGeneratorWithModel(fake.NewFakeLLM([]string{"x"}), ai.DefaultConfig())
		_, err := gen.Summarize(ctx, "  ", "a")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("large text is summarized in parts then combined", func(t *testing.T) {
		model := &scriptedModel{respond: func(call int, messages []llms.MessageContent) (string, error) {
			prompt := messageText(messages[1])
			if strings.Contains(prompt, "Merge them") {
				return "combined summary", nil
			}
			return "part summary", nil
		}}
		cfg := ai.NewConfig(ai.WithChunking(100, 80, 10))
		gen := newGeneratorWithModel(model, cfg)

		paragraph := strings.Repeat("word ", 14) // 70 chars
		text := strings.Join([]string{paragraph, paragraph, paragraph}, "\n\n")

		summary, err := gen.Summarize(ctx, text, "big.txt")
		require.NoError(t, err)
		assert.Equal(t, "combined summary", summary)
		require.GreaterOrEqual(t, len(model.requests), 3)
		assert.Contains(t, messageText(model.requests[0][1]), "Source: big.txt (part 1/")
		last := model.requests[len(model.requests)-1]
		assert.Contains(t, messageText(last[1]), `titled "big.txt"`)
	})

	t.Run("part failure is reported", func(t *testing.T) {
		boom := errors.New("rate limited")
		model := &scriptedModel{respond: func(call int, _ []llms.MessageContent) (string, error) {
			if call == 1 {
				return "", boom
			}
			return "part", nil
		}}
		gen := newGeneratorWithModel(model, ai.NewConfig(ai.WithChunking(100, 80, 10)))
		text := strings.Repeat("sentence here. ", 30)

		_, err := gen.Summarize(ctx, text, "big.txt")
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "part 2")
	})
}

func TestDialogueTurn(t *testing.T) {
	ctx := context.Background()
	req := ai.DialogueRequest{
		History: []core.Turn{
			{Role: core.RoleOperator, Text: "Let's talk ketosis"},
			{Role: core.RoleAssistant, Text: "Sure, what claim?"},
			{Role: core.RoleSystem, Text: "Confirmed: something"},
		},
		Message:  "Fat is the primary fuel in ketosis",
		Topic:    "ketosis basics",
		Category: "metabolism",
		ConfirmedClaims: []core.ConsensusPoint{
			{ID: 0, Claim: "Ketones cross the blood-brain barrier", EvidenceLevel: "RCT", Confirmed: true},
		},
		RelatedContext: []string{"Existing article on ketone metabolism"},
	}

	t.Run("structured reply with point", func(t *testing.T) {
		model := &scriptedModel{respond: func(int, []llms.MessageContent) (string, error) {
			return "```json\n{\"reply\": \"What's your evidence?\", \"consensus_point\": {\"claim\": \"Fat is the primary fuel in ketosis\", \"evidence_level\": \"strong\", \"sources\": [\"Volek 2016\", \"Phinney 2004\"]}}\n```", nil
		}}
		gen := newGeneratorWithModel(model, ai.DefaultConfig())

		reply, err := gen.DialogueTurn(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "What's your evidence?", reply.Reply)
		require.NotNil(t, reply.ProposedPoint)
		assert.Equal(t, "Fat is the primary fuel in ketosis", reply.ProposedPoint.Claim)
		assert.Equal(t, "strong", reply.ProposedPoint.EvidenceLevel)
		assert.Equal(t, "Volek 2016, Phinney 2004", reply.ProposedPoint.Citations)

		// system, acknowledgement, two replayed turns, new message
		require.Len(t, model.requests, 1)
		msgs := model.requests[0]
		require.Len(t, msgs, 5)
		assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
		assert.Equal(t, llms.ChatMessageTypeAI, msgs[1].Role)
		assert.Equal(t, llms.ChatMessageTypeHuman, msgs[2].Role)
		assert.Equal(t, llms.ChatMessageTypeAI, msgs[3].Role)
		assert.Equal(t, "Fat is the primary fuel in ketosis", messageText(msgs[4]))

		system := messageText(msgs[0])
		assert.Contains(t, system, "ketosis basics")
		assert.Contains(t, system, "Ketones cross the blood-brain barrier (Evidence: RCT, Sources: none)")
		assert.Contains(t, system, "Existing article on ketone metabolism")
		assert.Contains(t, system, "keto_diet")
	})

	t.Run("structured reply without point", func(t *testing.T) {
		gen := newGeneratorWithModel(fake.NewFakeLLM([]string{`{"reply": "Tell me more.", "consensus_point": null}`}), ai.DefaultConfig())

		reply, err := gen.DialogueTurn(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Tell me more.", reply.Reply)
		assert.Nil(t, reply.ProposedPoint)
	})

	t.Run("marker inside json reply", func(t *testing.T) {
		gen := newGeneratorWithModel(fake.NewFakeLLM([]string{
			`{"reply": "Agreed. [CONSENSUS_POINT]Fat fuels ketosis|RCT|Volek 2016[/CONSENSUS_POINT] Confirm?"}`,
		}), ai.DefaultConfig())

		reply, err := gen.DialogueTurn(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Agreed.  Confirm?", reply.Reply)
		require.NotNil(t, reply.ProposedPoint)
		assert.Equal(t, "Fat fuels ketosis", reply.ProposedPoint.Claim)
		assert.Equal(t, "RCT", reply.ProposedPoint.EvidenceLevel)
		assert.Equal(t, "Volek 2016", reply.ProposedPoint.Citations)
	})

	t.Run("retries malformed json then succeeds", func(t *testing.T) {
		model := &scriptedModel{respond: func(call int, _ []llms.MessageContent) (string, error) {
			if call == 0 {
				return `{"reply": "oops`, nil
			}
			return `{"reply": "Second try"}`, nil
		}}
		gen := newGeneratorWithModel(model, ai.DefaultConfig())

		reply, err := gen.DialogueTurn(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Second try", reply.Reply)
		assert.Len(t, model.requests, 2)
	})

	t.Run("falls back to plain text with marker", func(t *testing.T) {
		plain := "Good point.\n[CONSENSUS_POINT]Fat is the primary fuel|observational|Cahill 2006[/CONSENSUS_POINT]"
		model := &scriptedModel{respond: func(int, []llms.MessageContent) (string, error) { return plain, nil }}
		gen := newGeneratorWithModel(model, ai.DefaultConfig())

		reply, err := gen.DialogueTurn(ctx, req)
		require.NoError(t, err)
		assert.Len(t, model.requests, dialogueParseAttempts)
		assert.Equal(t, "Good point.", reply.Reply)
		require.NotNil(t, reply.ProposedPoint)
		assert.Equal(t, "Fat is the primary fuel", reply.ProposedPoint.Claim)
		assert.Equal(t, "observational", reply.ProposedPoint.EvidenceLevel)
		assert.Equal(t, "Cahill 2006", reply.ProposedPoint.Citations)
	})

	t.Run("generation error is returned", func(t *testing.T) {
		boom := errors.New("connection refused")
		model := &scriptedModel{respond: func(int, []llms.MessageContent) (string, error) { return "", boom }}
		gen := newGeneratorWithModel(model, ai.DefaultConfig())

		_, err := gen.DialogueTurn(ctx, req)
		assert.ErrorIs(t, err, boom)
		assert.Len(t, model.requests, 1)
	})
}

func TestSynthesizeArticle(t *testing.T) {
	ctx := context.Background()

	t.Run("writes article from points", func(t *testing.T) {
		model := &scriptedModel{respond: func(int, []llms.MessageContent) (string, error) {
			return "```markdown\n# Ketosis\n\nKetosis relies on fat...\n```", nil
		}}
		gen := newGeneratorWithModel(model, ai.DefaultConfig())

		article, err := gen.SynthesizeArticle(ctx, ai.ArticleRequest{
			Topic:    "ketosis basics",
			Category: "metabolism",
			Points: []core.ConsensusPoint{
				{Claim: "Fat is the primary fuel in ketosis", EvidenceLevel: "strong", Citations: "Volek 2016"},
				{Claim: "Ketones are made in the liver"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "# Ketosis\n\nKetosis relies on fat...", article)

		prompt := messageText(model.requests[0][1])
		assert.Contains(t, prompt, "Topic: ketosis basics")
		assert.Contains(t, prompt, "- Fat is the primary fuel in ketosis [Evidence: strong] [Sources: Volek 2016]")
		assert.Contains(t, prompt, "- Ketones are made in the liver [Evidence: not specified] [Sources: none]")
	})

	t.Run("requires points", func(t *testing.T) {
		gen := newGeneratorWithModel(fake.NewFakeLLM([]string{"x"}), ai.DefaultConfig())
		_, err := gen.SynthesizeArticle(ctx, ai.ArticleRequest{Topic: "t"})
		assert.ErrorIs(t, err, ErrNoPoints)
	})

	t.Run("empty model output", func(t *testing.T) {
		gen := newGeneratorWithModel(fake.NewFakeLLM([]string{"   "}), ai.DefaultConfig())
		_, err := gen.SynthesizeArticle(ctx, ai.ArticleRequest{Points: []core.ConsensusPoint{{Claim: "c"}}})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\ntext\n```", "text"},
		{"```json{\"a\":1}```", "{\"a\":1}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripCodeFences(tt.in))
	}
}

func TestRepairJSON(t *testing.T) {
	assert.Equal(t, `{"reply": "hi", "consensus_point": null}`, repairJSON(`{"reply": "hi", consensus_point": null}`))
	assert.Equal(t, `{"reply": "a, b"}`, repairJSON(`{"reply": "a, b"}`))
}

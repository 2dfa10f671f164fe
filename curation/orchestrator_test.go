package curation

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/mock"
	"github.com/poiesic/curator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrchestrator(t *testing.T) {
	gen := mock.NewMockGenerator()
	store := &storeStub{}

	t.Run("valid configuration", func(t *testing.T) {
		o, err := NewOrchestrator(gen, store)
		require.NoError(t, err)
		defer o.Release()
		assert.Equal(t, DefaultSessionTTL, o.sessionTTL)
		assert.Equal(t, DefaultHistoryTail, o.historyTail)
	})

	t.Run("with options", func(t *testing.T) {
		o, err := NewOrchestrator(gen, store,
			WithLogger(slog.Default()),
			WithSessionTTL(time.Minute),
			WithGenerationTimeout(time.Second),
			WithStoreTimeout(2*time.Second),
			WithWorkers(3),
			WithNotifier(NotifierFunc(func(Event) {})),
			WithRelatedKnowledge(relatedStub{}),
			WithHistoryTail(4))
		require.NoError(t, err)
		defer o.Release()
		assert.Equal(t, time.Minute, o.sessionTTL)
		assert.Equal(t, time.Second, o.generationTimeout)
		assert.Equal(t, 2*time.Second, o.storeTimeout)
		assert.Equal(t, 3, o.workers)
		assert.Equal(t, 4, o.historyTail)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewOrchestrator(gen, store, WithGenerationTimeout(0))
		assert.Error(t, err)
		_, err = NewOrchestrator(gen, store, WithStoreTimeout(-time.Second))
		assert.Error(t, err)
		_, err = NewOrchestrator(gen, store, WithSessionTTL(-time.Second))
		assert.Error(t, err)
		_, err = NewOrchestrator(gen, store, WithHistoryTail(-1))
		assert.Error(t, err)
	})

	t.Run("nil generator", func(t *testing.T) {
		_, err := NewOrchestrator(nil, store)
		assert.Equal(t, ErrGeneratorRequired, err)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewOrchestrator(gen, nil)
		assert.Equal(t, ErrStoreRequired, err)
	})
}

func TestDialogueScenarios(t *testing.T) {
	ctx := context.Background()
	store := &storeStub{id: "doc-42"}
	o := newTestOrchestrator(t, ketosisGenerator(), store)

	// Scenario A
	snap, err := o.StartTopic(ctx, "", "ketosis basics", "metabolism")
	require.NoError(t, err)
	assert.Equal(t, core.StageTopicActive, snap.Stage)
	assert.Equal(t, core.PipelineDialogue, snap.Pipeline)
	assert.Equal(t, "ketosis basics", snap.Topic)
	assert.Equal(t, "metabolism", snap.Category)
	id := snap.SessionID
	require.NotEmpty(t, id)

	snap, err = o.SendMessage(ctx, id, "Fat is the primary fuel in ketosis")
	require.NoError(t, err)
	assert.Equal(t, core.StageDiscussing, snap.Stage)
	require.Len(t, snap.ConsensusPoints, 1)
	point := snap.ConsensusPoints[0]
	assert.Equal(t, 0, point.ID)
	assert.Equal(t, "Fat is the primary fuel in ketosis", point.Claim)
	assert.Equal(t, "strong", point.EvidenceLevel)
	assert.False(t, point.Confirmed)
	assert.False(t, snap.CanGenerateArticle)
	assert.Equal(t, 2, snap.HistoryLength)

	// Scenario B
	snap, err = o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)
	assert.True(t, snap.ConsensusPoints[0].Confirmed)
	assert.True(t, snap.CanGenerateArticle)

	snap, err = o.GenerateArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StageArticleReady, snap.Stage)
	assert.True(t, snap.HasDraft)
	assert.Equal(t, "Ketosis relies on fat...", snap.Draft)

	// Scenario C
	snap, err = o.CommitArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StageCommitted, snap.Stage)
	assert.Equal(t, "doc-42", snap.DocumentID)

	docs := store.documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "Ketosis relies on fat...", docs[0].content)
	assert.Equal(t, "1", docs[0].metadata[core.MetaConsensusPointCount])
	assert.Equal(t, "metabolism", docs[0].metadata[core.MetaCategory])
	assert.Equal(t, core.SourceExpertDialogue, docs[0].metadata[core.MetaSource])
	assert.Equal(t, core.VerificationExpertVerified, docs[0].metadata[core.MetaVerificationStatus])
	assert.Equal(t, "ketosis basics", docs[0].metadata[core.MetaTopic])
	assert.NotEmpty(t, docs[0].metadata[core.MetaConsensusDate])
}

func TestScenarioD_RejectedPointCannotBeSynthesized(t *testing.T) {
	ctx := context.Background()
	gen := ketosisGenerator()
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := discussing(t, o, "Fat is the primary fuel in ketosis")

	snap, err := o.RejectPoint(ctx, id, 0)
	require.NoError(t, err)
	assert.Empty(t, snap.ConsensusPoints)

	_, err = o.GenerateArticle(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
	assert.Empty(t, gen.ArticleRequests())

	snap, err = o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, core.StageDiscussing, snap.Stage)
	assert.False(t, snap.HasDraft)
}

func TestScenarioE_UnknownPoint(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})
	id := discussing(t, o, "Fat is the primary fuel in ketosis")

	before, err := o.Snapshot(id)
	require.NoError(t, err)

	_, err = o.ConfirmPoint(ctx, id, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	after, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, before.Stage, after.Stage)
	assert.Equal(t, before.ConsensusPoints, after.ConsensusPoints)
	assert.Equal(t, before.HistoryLength, after.HistoryLength)
}

func TestGenerateArticle_RequiresConfirmedPoint(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})
	id := discussing(t, o, "claim one", "claim two", "claim three")

	_, err := o.GenerateArticle(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.Len(t, snap.ConsensusPoints, 3)
	assert.Equal(t, core.StageDiscussing, snap.Stage)
}

func TestGenerateArticle_UsesOnlyConfirmedPointsInOrder(t *testing.T) {
	ctx := context.Background()
	gen := ketosisGenerator()
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := discussing(t, o, "first", "second", "third", "fourth")

	for _, step := range []struct {
		confirm bool
		id      int
	}{{true, 3}, {true, 0}, {false, 1}, {true, 2}, {false, 3}} {
		var err error
		if step.confirm {
			_, err = o.ConfirmPoint(ctx, id, step.id)
		} else {
			_, err = o.RejectPoint(ctx, id, step.id)
		}
		require.NoError(t, err)
	}

	_, err := o.GenerateArticle(ctx, id)
	require.NoError(t, err)

	reqs := gen.ArticleRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "ketosis basics", reqs[0].Topic)
	assert.Equal(t, "metabolism", reqs[0].Category)
	var claims []string
	for _, p := range reqs[0].Points {
		assert.True(t, p.Confirmed)
		claims = append(claims, p.Claim)
	}
	assert.Equal(t, []string{"first", "third"}, claims)
}

func TestCommit_CountsPointsAtSynthesisTime(t *testing.T) {
	ctx := context.Background()
	gen := ketosisGenerator()
	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
		return &ai.DialogueReply{
			Reply:         "Noted.",
			ProposedPoint: &ai.ProposedPoint{Claim: req.Message, EvidenceLevel: "RCT", Citations: "Source for " + req.Message},
		}, nil
	}
	store := &storeStub{}
	o := newTestOrchestrator(t, gen, store)
	id := discussing(t, o, "alpha", "beta", "gamma")

	_, err := o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)
	_, err = o.ConfirmPoint(ctx, id, 2)
	require.NoError(t, err)
	_, err = o.GenerateArticle(ctx, id)
	require.NoError(t, err)

	// Confirmed after synthesis; not part of the draft.
	_, err = o.ConfirmPoint(ctx, id, 1)
	require.NoError(t, err)

	snap, err := o.CommitArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", snap.DocumentID)

	docs := store.documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "2", docs[0].metadata[core.MetaConsensusPointCount])
	assert.Equal(t, "Source for alpha; Source for gamma", docs[0].metadata[core.MetaCitations])
}

func TestGenerateArticle_RegenerateFromArticleReady(t *testing.T) {
	ctx := context.Background()
	gen := ketosisGenerator()
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := discussing(t, o, "alpha", "beta")

	_, err := o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)
	_, err = o.GenerateArticle(ctx, id)
	require.NoError(t, err)

	_, err = o.ConfirmPoint(ctx, id, 1)
	require.NoError(t, err)
	snap, err := o.GenerateArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StageArticleReady, snap.Stage)

	reqs := gen.ArticleRequests()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[1].Points, 2)
}

func TestIllegalTransitionsLeaveStageUnchanged(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})

	actions := map[string]func(id string) error{
		"startTopic": func(id string) error {
			_, err := o.StartTopic(ctx, id, "another topic", "")
			return err
		},
		"sendMessage": func(id string) error {
			_, err := o.SendMessage(ctx, id, "hello")
			return err
		},
		"generateArticle": func(id string) error {
			_, err := o.GenerateArticle(ctx, id)
			return err
		},
		"commitArticle": func(id string) error {
			_, err := o.CommitArticle(ctx, id)
			return err
		},
		"editDraft": func(id string) error {
			_, err := o.EditDraft(ctx, id, "edited")
			return err
		},
		"uploadExtracted": func(id string) error {
			_, err := o.UploadExtracted(ctx, id, Extraction{Text: "text"})
			return err
		},
		"summarize": func(id string) error {
			_, err := o.Summarize(ctx, id)
			return err
		},
		"approve": func(id string) error {
			_, err := o.Approve(ctx, id, "content")
			return err
		},
		"resetUpload": func(id string) error {
			_, err := o.ResetUpload(ctx, id)
			return err
		},
	}

	setups := map[core.Stage]struct {
		setup   func() string
		illegal []string
	}{
		core.StageIdle: {
			setup: func() string {
				snap, err := o.NewSession(core.PipelineDialogue)
				require.NoError(t, err)
				return snap.SessionID
			},
			illegal: []string{"sendMessage", "generateArticle", "commitArticle", "editDraft",
				"uploadExtracted", "summarize", "approve", "resetUpload"},
		},
		core.StageTopicActive: {
			setup: func() string { return discussing(t, o) },
			illegal: []string{"startTopic", "generateArticle", "commitArticle", "editDraft",
				"summarize", "approve"},
		},
		core.StageDiscussing: {
			setup: func() string {
				id := discussing(t, o, "claim")
				_, err := o.ConfirmPoint(ctx, id, 0)
				require.NoError(t, err)
				return id
			},
			illegal: []string{"startTopic", "commitArticle", "editDraft"},
		},
		core.StageArticleReady: {
			setup: func() string {
				id := discussing(t, o, "claim")
				_, err := o.ConfirmPoint(ctx, id, 0)
				require.NoError(t, err)
				_, err = o.GenerateArticle(ctx, id)
				require.NoError(t, err)
				return id
			},
			illegal: []string{"startTopic", "sendMessage"},
		},
		core.StageCommitted: {
			setup: func() string {
				id := discussing(t, o, "claim")
				_, err := o.ConfirmPoint(ctx, id, 0)
				require.NoError(t, err)
				_, err = o.GenerateArticle(ctx, id)
				require.NoError(t, err)
				_, err = o.CommitArticle(ctx, id)
				require.NoError(t, err)
				return id
			},
			illegal: []string{"startTopic", "sendMessage", "generateArticle", "commitArticle", "editDraft"},
		},
	}

	for stage, tc := range setups {
		for _, name := range tc.illegal {
			t.Run(string(stage)+"/"+name, func(t *testing.T) {
				id := tc.setup()
				before, err := o.Snapshot(id)
				require.NoError(t, err)
				require.Equal(t, stage, before.Stage)

				err = actions[name](id)
				assert.ErrorIs(t, err, ErrInvalidTransition)

				after, err := o.Snapshot(id)
				require.NoError(t, err)
				assert.Equal(t, before.Stage, after.Stage)
				assert.Equal(t, before.ConsensusPoints, after.ConsensusPoints)
				assert.Equal(t, before.Draft, after.Draft)
				assert.Equal(t, before.HistoryLength, after.HistoryLength)
			})
		}
	}
}

func TestPointActionsAfterCommitAreRejected(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})
	id := discussing(t, o, "claim", "other")
	_, err := o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)
	_, err = o.GenerateArticle(ctx, id)
	require.NoError(t, err)
	_, err = o.CommitArticle(ctx, id)
	require.NoError(t, err)

	_, err = o.ConfirmPoint(ctx, id, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = o.RejectPoint(ctx, id, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEmptyInputs(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})

	_, err := o.StartTopic(ctx, "", "   ", "metabolism")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Zero(t, o.SessionCount())

	_, err = o.UploadExtracted(ctx, "", Extraction{Text: "\n\t "})
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Zero(t, o.SessionCount())

	id := discussing(t, o)
	_, err = o.SendMessage(ctx, id, "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Equal(t, KindEmptyInput, KindOf(err))

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, core.StageTopicActive, snap.Stage)
	assert.Zero(t, snap.HistoryLength)
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})

	_, err := o.SendMessage(ctx, "missing", "hello")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = o.StartTopic(ctx, "missing", "topic", "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = o.Snapshot("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, o.CloseSession("missing"), ErrNotFound)

	_, err = o.NewSession("batch")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSendMessage_FailureLeavesHistoryUnchanged(t *testing.T) {
	ctx := context.Background()
	gen := ketosisGenerator()
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := discussing(t, o, "first claim")

	working := gen.DialogueTurnFunc
	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
		return nil, errUpstream
	}

	_, err := o.SendMessage(ctx, id, "second claim")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, errUpstream)
	assert.Equal(t, KindGenerationFailed, KindOf(err))

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.HistoryLength)
	assert.Len(t, snap.ConsensusPoints, 1)
	assert.False(t, snap.Busy)

	// Resubmitting after recovery appends the message exactly once.
	gen.DialogueTurnFunc = working
	snap, err = o.SendMessage(ctx, id, "second claim")
	require.NoError(t, err)
	assert.Equal(t, 4, snap.HistoryLength)
	assert.Equal(t, "second claim", snap.HistoryTail[2].Text)
	assert.Equal(t, core.RoleOperator, snap.HistoryTail[2].Role)
}

func TestSendMessage_EmptyReply(t *testing.T) {
	ctx := context.Background()
	gen := mock.NewMockGenerator()
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := discussing(t, o)

	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
		return &ai.DialogueReply{Reply: "  "}, nil
	}
	_, err := o.SendMessage(ctx, id, "hello")
	assert.ErrorIs(t, err, ErrGenerationFailed)

	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
		return &ai.DialogueReply{ProposedPoint: &ai.ProposedPoint{Claim: "Ketones are made in the liver"}}, nil
	}
	snap, err := o.SendMessage(ctx, id, "hello")
	require.NoError(t, err)
	require.Len(t, snap.ConsensusPoints, 1)
	assert.Equal(t, core.DefaultEvidenceLevel, snap.ConsensusPoints[0].EvidenceLevel)
	assert.Equal(t, "Proposed consensus point: Ketones are made in the liver", snap.HistoryTail[1].Text)
}

func TestSendMessage_BlankClaimWithoutReply(t *testing.T) {
	ctx := context.Background()
	gen := mock.NewMockGenerator()
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := discussing(t, o)

	before, err := o.Snapshot(id)
	require.NoError(t, err)

	gen.DialogueTurnFunc = func(ctx context.Context, req ai.DialogueRequest) (*ai.DialogueReply, error) {
		return &ai.DialogueReply{Reply: " ", ProposedPoint: &ai.ProposedPoint{Claim: "  ", EvidenceLevel: "RCT"}}, nil
	}
	_, err = o.SendMessage(ctx, id, "hello")
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, KindGenerationFailed, KindOf(err))

	after, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, before.HistoryLength, after.HistoryLength)
	assert.Empty(t, after.ConsensusPoints)
	assert.False(t, after.Busy)
}

func TestSendMessage_NoProposedPoint(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, mock.NewMockGenerator(), &storeStub{})
	id := discussing(t, o)

	snap, err := o.SendMessage(ctx, id, "What do we know?")
	require.NoError(t, err)
	assert.Empty(t, snap.ConsensusPoints)
	require.Len(t, snap.HistoryTail, 2)
	assert.Equal(t, core.RoleAssistant, snap.HistoryTail[1].Role)
	assert.Equal(t, "You said: What do we know?", snap.HistoryTail[1].Text)
}

func TestSendMessage_DialogueRequest(t *testing.T) {
	ctx := context.Background()
	gen := ketosisGenerator()
	o := newTestOrchestrator(t, gen, &storeStub{},
		WithRelatedKnowledge(relatedStub{related: []string{"Stored article about fat"}}))
	id := discussing(t, o, "first")
	_, err := o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)

	_, err = o.SendMessage(ctx, id, "second")
	require.NoError(t, err)

	reqs := gen.DialogueRequests()
	require.Len(t, reqs, 2)
	req := reqs[1]
	assert.Equal(t, "second", req.Message)
	assert.Equal(t, "ketosis basics", req.Topic)
	assert.Equal(t, "metabolism", req.Category)
	// operator, assistant, system confirmation
	require.Len(t, req.History, 3)
	assert.Equal(t, "first", req.History[0].Text)
	assert.Equal(t, core.RoleSystem, req.History[2].Role)
	require.Len(t, req.ConfirmedClaims, 1)
	assert.Equal(t, "first", req.ConfirmedClaims[0].Claim)
	assert.Equal(t, []string{"Stored article about fat"}, req.RelatedContext)
}

func TestSendMessage_RelatedKnowledgeFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	gen := ketosisGenerator()
	o := newTestOrchestrator(t, gen, &storeStub{},
		WithRelatedKnowledge(relatedStub{err: errUpstream}))
	id := discussing(t, o)

	_, err := o.SendMessage(ctx, id, "hello")
	require.NoError(t, err)
	assert.Nil(t, gen.DialogueRequests()[0].RelatedContext)
}

func TestGenerateArticle_Failure(t *testing.T) {
	ctx := context.Background()
	gen := ketosisGenerator()
	o := newTestOrchestrator(t, gen, &storeStub{})
	id := discussing(t, o, "claim")
	_, err := o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)

	gen.SynthesizeArticleFunc = func(ctx context.Context, req ai.ArticleRequest) (string, error) {
		return "", errUpstream
	}
	_, err = o.GenerateArticle(ctx, id)
	assert.ErrorIs(t, err, ErrGenerationFailed)

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, core.StageDiscussing, snap.Stage)
	assert.False(t, snap.HasDraft)
}

func TestCommitArticle_StoreFailureAllowsRetry(t *testing.T) {
	ctx := context.Background()
	store := &storeStub{}
	o := newTestOrchestrator(t, ketosisGenerator(), store)
	id := discussing(t, o, "claim")
	_, err := o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)
	_, err = o.GenerateArticle(ctx, id)
	require.NoError(t, err)

	store.setErr(errUpstream)
	_, err = o.CommitArticle(ctx, id)
	assert.ErrorIs(t, err, ErrStoreWriteFailed)
	assert.Equal(t, KindStoreWriteFailed, KindOf(err))

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, core.StageArticleReady, snap.Stage)
	assert.Equal(t, "Ketosis relies on fat...", snap.Draft)
	assert.Empty(t, snap.DocumentID)

	store.setErr(nil)
	snap, err = o.CommitArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StageCommitted, snap.Stage)
	assert.Len(t, store.documents(), 1)
}

func TestEditDraft(t *testing.T) {
	ctx := context.Background()
	store := &storeStub{}
	o := newTestOrchestrator(t, ketosisGenerator(), store)
	id := discussing(t, o, "claim")
	_, err := o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)
	_, err = o.GenerateArticle(ctx, id)
	require.NoError(t, err)

	_, err = o.EditDraft(ctx, id, " ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	snap, err := o.EditDraft(ctx, id, "# Edited\n\nKetosis relies on fat.")
	require.NoError(t, err)
	assert.Equal(t, "# Edited\n\nKetosis relies on fat.", snap.Draft)

	_, err = o.CommitArticle(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "# Edited\n\nKetosis relies on fat.", store.documents()[0].content)
}

func TestResetSession(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{})
	id := discussing(t, o, "claim")

	snap, err := o.ResetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.SessionID)
	assert.Equal(t, core.StageIdle, snap.Stage)
	assert.Empty(t, snap.ConsensusPoints)
	assert.Zero(t, snap.HistoryLength)
	assert.Empty(t, snap.Topic)

	snap, err = o.StartTopic(ctx, id, "fasting", "keto_diet")
	require.NoError(t, err)
	assert.Equal(t, id, snap.SessionID)
	assert.Equal(t, core.StageTopicActive, snap.Stage)

	// Point ids restart with the new topic.
	snap, err = o.SendMessage(ctx, id, "claim")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ConsensusPoints[0].ID)
}

func TestSnapshot_HistoryTail(t *testing.T) {
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{}, WithHistoryTail(3))
	id := discussing(t, o, "one", "two", "three")

	snap, err := o.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 6, snap.HistoryLength)
	require.Len(t, snap.HistoryTail, 3)
	assert.Equal(t, "What's your evidence?", snap.HistoryTail[0].Text)
	assert.Equal(t, "three", snap.HistoryTail[1].Text)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	log := &eventLog{}
	o := newTestOrchestrator(t, ketosisGenerator(), &storeStub{}, WithNotifier(log))
	id := discussing(t, o, "claim")

	assert.Equal(t, []EventType{EventStageChanged, EventStageChanged, EventPointProposed}, log.types())
	proposed := log.last()
	assert.Equal(t, id, proposed.SessionID)
	assert.Equal(t, 0, proposed.PointID)
	assert.False(t, proposed.CanGenerateArticle)

	_, err := o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)
	confirmed := log.last()
	assert.Equal(t, EventPointConfirmed, confirmed.Type)
	assert.True(t, confirmed.CanGenerateArticle)

	count := len(log.types())
	snapBefore, err := o.Snapshot(id)
	require.NoError(t, err)

	snap, err := o.ConfirmPoint(ctx, id, 0)
	require.NoError(t, err)
	assert.Len(t, log.types(), count)
	assert.Equal(t, snapBefore.HistoryLength, snap.HistoryLength)
	assert.Equal(t, snapBefore.ConsensusPoints, snap.ConsensusPoints)

	_, err = o.RejectPoint(ctx, id, 0)
	require.NoError(t, err)
	rejected := log.last()
	assert.Equal(t, EventPointRejected, rejected.Type)
	assert.False(t, rejected.CanGenerateArticle)
}

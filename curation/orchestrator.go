// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package curation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
)

// DefaultSourceLabel names uploads that arrive without a label.
const DefaultSourceLabel = "uploaded text"

var (
	errEmptyGeneration = errors.New("generator returned no text")
	errNoDocumentID    = errors.New("store returned no document id")
)

// Orchestrator exposes the curation actions over a set of live sessions.
// It is safe for concurrent use; actions on one session are serialized and
// actions on different sessions are independent.
type Orchestrator struct {
	generator ai.TextGenerator
	store     KnowledgeStore
	related   RelatedKnowledge
	notifier  Notifier
	logger    *slog.Logger

	sessionTTL        time.Duration
	generationTimeout time.Duration
	storeTimeout      time.Duration
	workers           int
	historyTail       int

	registry *registry
	runner   *runner
	now      func() time.Time
}

// Extraction is source text produced by an extraction collaborator.
type Extraction struct {
	Text        string `json:"text"`
	SourceLabel string `json:"sourceLabel"`
	SourceLink  string `json:"sourceLink,omitempty"`
	Category    string `json:"category,omitempty"`
}

// NewOrchestrator creates an orchestrator that generates with generator and
// commits to store.
func NewOrchestrator(generator ai.TextGenerator, store KnowledgeStore, opts ...Option) (*Orchestrator, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	o := &Orchestrator{
		generator:         generator,
		store:             store,
		notifier:          noopNotifier{},
		logger:            slog.Default().With("component", "curation"),
		sessionTTL:        DefaultSessionTTL,
		generationTimeout: DefaultGenerationTimeout,
		storeTimeout:      DefaultStoreTimeout,
		workers:           DefaultWorkers,
		historyTail:       DefaultHistoryTail,
		now:               func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	r, err := newRunner(o.workers, o.logger)
	if err != nil {
		return nil, err
	}
	o.runner = r
	o.registry = newRegistry(o.sessionTTL, o.logger)
	return o, nil
}

// Release disposes every session and stops the worker pool.
// The orchestrator should not be used after calling Release.
func (o *Orchestrator) Release() {
	o.registry.flush()
	o.runner.release()
}

// NewSession creates an idle session for pipeline.
func (o *Orchestrator) NewSession(pipeline core.Pipeline) (*Snapshot, error) {
	if pipeline.Stages() == nil {
		return nil, fmt.Errorf("%w: unknown pipeline %q", ErrInvalidTransition, pipeline)
	}
	s := o.registry.create(pipeline, o.now())
	s.mu.Lock()
	return o.unlock(s, nil), nil
}

// Snapshot returns the current state of a session. It is allowed while the
// session is busy.
func (o *Orchestrator) Snapshot(sessionID string) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	return o.unlock(s, nil), nil
}

// CloseSession disposes a session immediately.
func (o *Orchestrator) CloseSession(sessionID string) error {
	return o.registry.remove(sessionID)
}

// SessionCount returns the number of live sessions.
func (o *Orchestrator) SessionCount() int {
	return o.registry.count()
}

// StartTopic opens a dialogue on topic. An empty sessionID creates a new
// dialogue session.
func (o *Orchestrator) StartTopic(ctx context.Context, sessionID, topic, category string) (*Snapshot, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrEmptyInput)
	}

	s, err := o.sessionFor(sessionID, core.PipelineDialogue)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.require("start a topic", core.PipelineDialogue, core.StageIdle); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.clear()
	s.topic = topic
	s.category = strings.TrimSpace(category)
	events := o.moveTo(s, core.StageTopicActive, nil)
	return o.unlock(s, events), nil
}

// SendMessage submits the operator's message and records the generator's
// reply. The message enters the history only once the generator succeeds, so
// a failed turn can be resubmitted as is.
func (o *Orchestrator) SendMessage(ctx context.Context, sessionID, message string) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrEmptyInput)
	}

	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.require("send a message", core.PipelineDialogue, core.StageTopicActive, core.StageDiscussing); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	req := ai.DialogueRequest{
		History:         slices.Clone(s.history),
		Message:         message,
		Topic:           s.topic,
		Category:        s.category,
		ConfirmedClaims: s.points.confirmed(),
	}
	s.busy = true
	s.mu.Unlock()

	req.RelatedContext = o.relatedContext(ctx, s.id, message)
	reply, err := call(ctx, o.runner, o.generationTimeout, func(ctx context.Context) (*ai.DialogueReply, error) {
		return o.generator.DialogueTurn(ctx, req)
	})
	if err == nil && (reply == nil || (strings.TrimSpace(reply.Reply) == "" && !hasClaim(reply.ProposedPoint))) {
		err = errEmptyGeneration
	}

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.mu.Unlock()
		o.logger.Error("dialogue turn failed", "session", s.id, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	now := o.now()
	var events []Event
	var proposed *core.ConsensusPoint
	if pp := reply.ProposedPoint; hasClaim(pp) {
		p := s.points.propose(pp.Claim, pp.EvidenceLevel, pp.Citations, now)
		proposed = &p
	}

	text := strings.TrimSpace(reply.Reply)
	if text == "" && proposed != nil {
		text = "Proposed consensus point: " + proposed.Claim
	}
	s.appendTurn(core.RoleOperator, message, now)
	if text != "" {
		s.appendTurn(core.RoleAssistant, text, now)
	}

	events = o.moveTo(s, core.StageDiscussing, events)
	if proposed != nil {
		o.logger.Info("consensus point proposed", "session", s.id, "point", proposed.ID, "evidence", proposed.EvidenceLevel)
		events = append(events, o.event(s, EventPointProposed, proposed.ID))
	}
	return o.unlock(s, events), nil
}

// ConfirmPoint marks a consensus point confirmed. Confirming an already
// confirmed point changes nothing.
func (o *Orchestrator) ConfirmPoint(ctx context.Context, sessionID string, pointID int) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.require("confirm a consensus point", core.PipelineDialogue,
		core.StageTopicActive, core.StageDiscussing, core.StageArticleReady); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	p, changed, err := s.points.confirm(pointID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	var events []Event
	if changed {
		s.appendTurn(core.RoleSystem, "Confirmed consensus point: "+p.Claim, o.now())
		o.logger.Info("consensus point confirmed", "session", s.id, "point", p.ID)
		events = append(events, o.event(s, EventPointConfirmed, p.ID))
	}
	return o.unlock(s, events), nil
}

// RejectPoint removes a consensus point. Rejection cannot be undone.
func (o *Orchestrator) RejectPoint(ctx context.Context, sessionID string, pointID int) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.require("reject a consensus point", core.PipelineDialogue,
		core.StageTopicActive, core.StageDiscussing, core.StageArticleReady); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	p, err := s.points.reject(pointID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.appendTurn(core.RoleSystem, "Rejected consensus point: "+p.Claim, o.now())
	o.logger.Info("consensus point rejected", "session", s.id, "point", p.ID)
	events := []Event{o.event(s, EventPointRejected, p.ID)}
	return o.unlock(s, events), nil
}

// GenerateArticle synthesizes a draft article from the confirmed consensus
// points. It may be called again from ArticleReady to regenerate.
func (o *Orchestrator) GenerateArticle(ctx context.Context, sessionID string) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.require("generate an article", core.PipelineDialogue,
		core.StageDiscussing, core.StageArticleReady); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	points := s.points.confirmed()
	if len(points) == 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: generating an article requires at least one confirmed consensus point", ErrInvalidTransition)
	}
	req := ai.ArticleRequest{Topic: s.topic, Category: s.category, Points: points}
	s.busy = true
	s.mu.Unlock()

	article, err := call(ctx, o.runner, o.generationTimeout, func(ctx context.Context) (string, error) {
		return o.generator.SynthesizeArticle(ctx, req)
	})
	if err == nil && strings.TrimSpace(article) == "" {
		err = errEmptyGeneration
	}

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.mu.Unlock()
		o.logger.Error("article synthesis failed", "session", s.id, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	s.draft = article
	s.articlePoints = points
	o.logger.Info("article synthesized", "session", s.id, "points", len(points))
	events := o.moveTo(s, core.StageArticleReady, nil)
	return o.unlock(s, events), nil
}

// EditDraft replaces the pending draft with operator-edited content.
func (o *Orchestrator) EditDraft(ctx context.Context, sessionID, content string) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: draft content is required", ErrEmptyInput)
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}

	stage := core.StageArticleReady
	if s.pipeline == core.PipelineUpload {
		stage = core.StageAwaitingApproval
	}
	if err := s.require("edit the draft", s.pipeline, stage); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.draft = content
	return o.unlock(s, nil), nil
}

// CommitArticle writes the draft article to the knowledge store. On failure
// the session stays in ArticleReady so the commit can be retried.
func (o *Orchestrator) CommitArticle(ctx context.Context, sessionID string) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.require("commit", core.PipelineDialogue, core.StageArticleReady); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if strings.TrimSpace(s.draft) == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: there is no draft to commit", ErrInvalidTransition)
	}
	content := s.draft
	meta := s.commitMetadata(o.now())
	s.busy = true
	s.mu.Unlock()

	id, err := o.write(ctx, content, meta)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.mu.Unlock()
		o.logger.Error("commit failed", "session", s.id, "err", err)
		return nil, err
	}

	s.documentID = id
	o.logger.Info("article committed", "session", s.id, "document", id)
	events := o.moveTo(s, core.StageCommitted, nil)
	return o.unlock(s, events), nil
}

// ResetSession returns a dialogue session to Idle, discarding its data.
func (o *Orchestrator) ResetSession(ctx context.Context, sessionID string) (*Snapshot, error) {
	return o.reset(sessionID, core.PipelineDialogue)
}

// UploadExtracted starts an upload session from extracted source text. An
// empty sessionID creates a new upload session.
func (o *Orchestrator) UploadExtracted(ctx context.Context, sessionID string, in Extraction) (*Snapshot, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, fmt.Errorf("%w: extracted text is empty", ErrEmptyInput)
	}

	s, err := o.sessionFor(sessionID, core.PipelineUpload)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.require("accept extracted text", core.PipelineUpload, core.StageIdle); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.clear()
	s.extracted = in.Text
	s.sourceLabel = strings.TrimSpace(in.SourceLabel)
	if s.sourceLabel == "" {
		s.sourceLabel = DefaultSourceLabel
	}
	s.sourceLink = strings.TrimSpace(in.SourceLink)
	s.category = strings.TrimSpace(in.Category)
	o.logger.Info("extracted text accepted", "session", s.id, "source", s.sourceLabel, "chars", len(in.Text))
	events := o.moveTo(s, core.StageCollecting, nil)
	return o.unlock(s, events), nil
}

// Summarize asks the generator to summarize the extracted text. While the call
// is in flight the session is in Transforming; on failure it returns to
// Collecting and the same text can be summarized again.
func (o *Orchestrator) Summarize(ctx context.Context, sessionID string) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.require("summarize", core.PipelineUpload, core.StageCollecting); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	text, label := s.extracted, s.sourceLabel
	events := o.moveTo(s, core.StageTransforming, nil)
	s.busy = true
	s.mu.Unlock()
	o.emit(events)

	summary, err := call(ctx, o.runner, o.generationTimeout, func(ctx context.Context) (string, error) {
		return o.generator.Summarize(ctx, text, label)
	})
	if err == nil && strings.TrimSpace(summary) == "" {
		err = errEmptyGeneration
	}

	s.mu.Lock()
	s.busy = false
	if err != nil {
		events = o.moveTo(s, core.StageCollecting, nil)
		s.mu.Unlock()
		o.emit(events)
		o.logger.Error("summarization failed", "session", s.id, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	s.draft = summary
	events = o.moveTo(s, core.StageAwaitingApproval, nil)
	return o.unlock(s, events), nil
}

// Approve commits the summary to the knowledge store. A non-blank content
// replaces the summary with the operator's edited version.
func (o *Orchestrator) Approve(ctx context.Context, sessionID, content string) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if err := s.require("approve", core.PipelineUpload, core.StageAwaitingApproval); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	final := s.draft
	if strings.TrimSpace(content) != "" {
		final = content
	}
	if strings.TrimSpace(final) == "" {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: approved content is empty", ErrEmptyInput)
	}
	meta := s.commitMetadata(o.now())
	s.busy = true
	s.mu.Unlock()

	id, err := o.write(ctx, final, meta)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.mu.Unlock()
		o.logger.Error("approval commit failed", "session", s.id, "err", err)
		return nil, err
	}

	s.draft = final
	s.documentID = id
	o.logger.Info("summary committed", "session", s.id, "document", id)
	events := o.moveTo(s, core.StageCommitted, nil)
	return o.unlock(s, events), nil
}

// ResetUpload returns an upload session to Idle, discarding its data.
func (o *Orchestrator) ResetUpload(ctx context.Context, sessionID string) (*Snapshot, error) {
	return o.reset(sessionID, core.PipelineUpload)
}

func (o *Orchestrator) reset(sessionID string, pipeline core.Pipeline) (*Snapshot, error) {
	s, err := o.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.acquire(); err != nil {
		return nil, err
	}
	if s.pipeline != pipeline {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot reset a %s session as %s", ErrInvalidTransition, s.pipeline, pipeline)
	}

	s.clear()
	events := o.moveTo(s, core.StageIdle, nil)
	return o.unlock(s, events), nil
}

func (o *Orchestrator) sessionFor(sessionID string, pipeline core.Pipeline) (*Session, error) {
	if sessionID == "" {
		return o.registry.create(pipeline, o.now()), nil
	}
	return o.registry.get(sessionID)
}

// relatedContext looks up stored knowledge for a dialogue turn. Failures only
// cost the turn its grounding.
func (o *Orchestrator) relatedContext(ctx context.Context, sessionID, message string) []string {
	if o.related == nil {
		return nil
	}
	related, err := call(ctx, o.runner, relatedLookupTimeout, func(ctx context.Context) ([]string, error) {
		return o.related.RelatedContext(ctx, message)
	})
	if err != nil {
		o.logger.Warn("related knowledge lookup failed", "session", sessionID, "err", err)
		return nil
	}
	return related
}

func (o *Orchestrator) write(ctx context.Context, content string, meta map[string]string) (string, error) {
	id, err := call(ctx, o.runner, o.storeTimeout, func(ctx context.Context) (string, error) {
		return o.store.CreateDocument(ctx, content, meta)
	})
	if err == nil && id == "" {
		err = errNoDocumentID
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}
	return id, nil
}

// moveTo changes the stage of s, which must be locked.
func (o *Orchestrator) moveTo(s *Session, to core.Stage, events []Event) []Event {
	from := s.stage
	if from == to {
		return events
	}
	s.stage = to
	o.logger.Info("stage changed", "session", s.id, "from", from, "to", to)
	return append(events, o.event(s, EventStageChanged, 0))
}

func (o *Orchestrator) event(s *Session, t EventType, pointID int) Event {
	return Event{
		Type:               t,
		SessionID:          s.id,
		Stage:              s.stage,
		PointID:            pointID,
		CanGenerateArticle: s.canGenerateArticle(),
		At:                 o.now(),
	}
}

// unlock snapshots s, unlocks it and then delivers events.
func (o *Orchestrator) unlock(s *Session, events []Event) *Snapshot {
	snap := s.snapshot(o.historyTail)
	s.mu.Unlock()
	o.emit(events)
	return snap
}

func (o *Orchestrator) emit(events []Event) {
	for _, e := range events {
		o.notifier.Notify(e)
	}
}

// hasClaim reports whether a proposed point carries a non-blank claim.
func hasClaim(pp *ai.ProposedPoint) bool {
	return pp != nil && strings.TrimSpace(pp.Claim) != ""
}

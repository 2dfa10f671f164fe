package curation

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/curator/core"
)

// Session is one curation workflow instance.
// All fields are guarded by mu. busy is set while a collaborator call for the
// session is in flight; mutations are refused until it clears.
type Session struct {
	mu sync.Mutex

	id       string
	pipeline core.Pipeline
	stage    core.Stage
	busy     bool

	history []core.Turn
	points  pointStore

	// draft is the synthesized article or the upload summary awaiting commit.
	draft string
	// articlePoints are the confirmed points the current draft was synthesized from.
	articlePoints []core.ConsensusPoint
	// extracted is the upload pipeline's source text.
	extracted string

	topic       string
	category    string
	sourceLabel string
	sourceLink  string

	documentID string
	createdAt  time.Time
}

func newSession(id string, pipeline core.Pipeline, now time.Time) *Session {
	return &Session{
		id:        id,
		pipeline:  pipeline,
		stage:     core.StageIdle,
		createdAt: now,
	}
}

// ID returns the session's handle.
func (s *Session) ID() string {
	return s.id
}

// acquire locks the session for a state change.
// On success the caller holds s.mu and must unlock it.
func (s *Session) acquire() error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return fmt.Errorf("%w: session %s has an action in progress", ErrSessionBusy, s.id)
	}
	return nil
}

// require checks the pipeline and that the current stage is one of allowed.
func (s *Session) require(action string, pipeline core.Pipeline, allowed ...core.Stage) error {
	if s.pipeline != pipeline {
		return fmt.Errorf("%w: cannot %s in a %s session", ErrInvalidTransition, action, s.pipeline)
	}
	if !slices.Contains(allowed, s.stage) {
		return invalidTransition(action, s.pipeline, s.stage)
	}
	return nil
}

func (s *Session) appendTurn(role core.Role, text string, at time.Time) {
	s.history = append(s.history, core.Turn{Role: role, Text: text, Timestamp: at})
}

// clear discards all workflow data, keeping the id and pipeline.
func (s *Session) clear() {
	s.history = nil
	s.points.reset()
	s.draft = ""
	s.articlePoints = nil
	s.extracted = ""
	s.topic = ""
	s.category = ""
	s.sourceLabel = ""
	s.sourceLink = ""
	s.documentID = ""
}

// canGenerateArticle reports whether generateArticle would pass its preconditions.
func (s *Session) canGenerateArticle() bool {
	if s.pipeline != core.PipelineDialogue {
		return false
	}
	if s.stage != core.StageDiscussing && s.stage != core.StageArticleReady {
		return false
	}
	return s.points.confirmedCount() > 0
}

// commitMetadata builds the metadata attached to the committed document.
func (s *Session) commitMetadata(now time.Time) map[string]string {
	meta := map[string]string{}
	if s.category != "" {
		meta[core.MetaCategory] = s.category
	}
	if s.sourceLink != "" {
		meta[core.MetaSourceLink] = s.sourceLink
	}

	switch s.pipeline {
	case core.PipelineDialogue:
		meta[core.MetaSource] = core.SourceExpertDialogue
		meta[core.MetaTopic] = s.topic
		meta[core.MetaVerificationStatus] = core.VerificationExpertVerified
		meta[core.MetaConsensusPointCount] = fmt.Sprint(len(s.articlePoints))
		meta[core.MetaConsensusDate] = now.Format(time.RFC3339)

		var citations []string
		for _, p := range s.articlePoints {
			if p.Citations != "" {
				citations = append(citations, p.Citations)
			}
		}
		if len(citations) > 0 {
			meta[core.MetaCitations] = strings.Join(citations, "; ")
		}
	case core.PipelineUpload:
		meta[core.MetaSource] = s.sourceLabel
		meta[core.MetaVerificationStatus] = core.VerificationOperatorApproved
	}
	return meta
}

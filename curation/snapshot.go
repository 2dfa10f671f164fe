package curation

import (
	"time"

	"github.com/poiesic/curator/core"
)

// Snapshot is the client-visible state of a session after an action.
type Snapshot struct {
	SessionID string        `json:"sessionId"`
	Pipeline  core.Pipeline `json:"pipeline"`
	Stage     core.Stage    `json:"stage"`

	Topic       string `json:"topic,omitempty"`
	Category    string `json:"category,omitempty"`
	SourceLabel string `json:"sourceLabel,omitempty"`
	SourceLink  string `json:"sourceLink,omitempty"`

	HistoryLength int         `json:"historyLength"`
	HistoryTail   []core.Turn `json:"historyTail"`

	ConsensusPoints    []core.ConsensusPoint `json:"consensusPoints"`
	ConfirmedCount     int                   `json:"confirmedCount"`
	CanGenerateArticle bool                  `json:"canGenerateArticle"`

	HasDraft   bool   `json:"hasDraft"`
	Draft      string `json:"draft,omitempty"`
	DocumentID string `json:"documentId,omitempty"`

	Busy      bool      `json:"busy"`
	CreatedAt time.Time `json:"createdAt"`
}

// snapshot copies the session state. The caller must hold s.mu.
func (s *Session) snapshot(tail int) *Snapshot {
	start := 0
	if tail >= 0 && len(s.history) > tail {
		start = len(s.history) - tail
	}
	history := make([]core.Turn, len(s.history)-start)
	copy(history, s.history[start:])

	return &Snapshot{
		SessionID:          s.id,
		Pipeline:           s.pipeline,
		Stage:              s.stage,
		Topic:              s.topic,
		Category:           s.category,
		SourceLabel:        s.sourceLabel,
		SourceLink:         s.sourceLink,
		HistoryLength:      len(s.history),
		HistoryTail:        history,
		ConsensusPoints:    s.points.all(),
		ConfirmedCount:     s.points.confirmedCount(),
		CanGenerateArticle: s.canGenerateArticle(),
		HasDraft:           s.draft != "",
		Draft:              s.draft,
		DocumentID:         s.documentID,
		Busy:               s.busy,
		CreatedAt:          s.createdAt,
	}
}

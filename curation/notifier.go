package curation

import (
	"time"

	"github.com/poiesic/curator/core"
)

// EventType identifies a session event.
type EventType string

const (
	EventPointProposed  EventType = "point_proposed"
	EventPointConfirmed EventType = "point_confirmed"
	EventPointRejected  EventType = "point_rejected"
	EventStageChanged   EventType = "stage_changed"
)

// Event describes a change to a session.
type Event struct {
	Type      EventType  `json:"type"`
	SessionID string     `json:"sessionId"`
	Stage     core.Stage `json:"stage"`

	// PointID is set for point events.
	PointID int `json:"pointId,omitempty"`

	// CanGenerateArticle tells clients whether the generate-article action is enabled.
	CanGenerateArticle bool      `json:"canGenerateArticle"`
	At                 time.Time `json:"at"`
}

// Notifier receives session events after the change is applied.
// Notify is called without any session lock held.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f.
func (f NotifierFunc) Notify(e Event) {
	f(e)
}

type noopNotifier struct{}

func (noopNotifier) Notify(Event) {}

package curation

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultSessionTTL is how long an untouched session is kept.
	DefaultSessionTTL = 2 * time.Hour

	// DefaultGenerationTimeout bounds a single text generator call.
	DefaultGenerationTimeout = 3 * time.Minute

	// DefaultStoreTimeout bounds a single knowledge store write.
	DefaultStoreTimeout = 30 * time.Second

	// DefaultHistoryTail is the number of turns included in snapshots.
	DefaultHistoryTail = 10

	// DefaultWorkers is the number of collaborator calls that may run at once
	// across all sessions.
	DefaultWorkers = 32

	// relatedLookupTimeout bounds the optional related knowledge lookup.
	relatedLookupTimeout = 10 * time.Second
)

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "curation")
		return nil
	}
}

// WithSessionTTL sets the idle lifetime of sessions. Zero keeps sessions
// until they are closed.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *Orchestrator) error {
		if ttl < 0 {
			return fmt.Errorf("session ttl must not be negative, got %s", ttl)
		}
		o.sessionTTL = ttl
		return nil
	}
}

// WithGenerationTimeout bounds each text generator call.
func WithGenerationTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) error {
		if timeout <= 0 {
			return fmt.Errorf("generation timeout must be positive, got %s", timeout)
		}
		o.generationTimeout = timeout
		return nil
	}
}

// WithStoreTimeout bounds each knowledge store write.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) error {
		if timeout <= 0 {
			return fmt.Errorf("store timeout must be positive, got %s", timeout)
		}
		o.storeTimeout = timeout
		return nil
	}
}

// WithWorkers sets the number of concurrent collaborator calls across all sessions.
// Default is DefaultWorkers. Calls beyond the limit fail immediately with
// ErrGenerationFailed or ErrStoreWriteFailed rather than queueing.
func WithWorkers(workers int) Option {
	return func(o *Orchestrator) error {
		if workers < 1 {
			workers = 1
		}
		o.workers = workers
		return nil
	}
}

// WithNotifier sets the receiver of session events.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) error {
		if n == nil {
			n = noopNotifier{}
		}
		o.notifier = n
		return nil
	}
}

// WithRelatedKnowledge enables grounding dialogue turns in stored documents.
func WithRelatedKnowledge(r RelatedKnowledge) Option {
	return func(o *Orchestrator) error {
		o.related = r
		return nil
	}
}

// WithHistoryTail sets how many recent turns snapshots carry.
func WithHistoryTail(n int) Option {
	return func(o *Orchestrator) error {
		if n < 0 {
			return fmt.Errorf("history tail must not be negative, got %d", n)
		}
		o.historyTail = n
		return nil
	}
}

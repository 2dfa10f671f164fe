package curation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"
	"github.com/poiesic/curator/core"
)

// registry owns the live sessions. Sessions idle for longer than the TTL are
// disposed; every lookup refreshes a session's expiry.
type registry struct {
	sessions *cache.Cache
	logger   *slog.Logger
}

func newRegistry(ttl time.Duration, logger *slog.Logger) *registry {
	expiration := ttl
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	cleanup := ttl
	if cleanup > time.Minute {
		cleanup = time.Minute
	}

	r := &registry{
		sessions: cache.New(expiration, cleanup),
		logger:   logger,
	}
	r.sessions.OnEvicted(func(id string, v any) {
		if s, ok := v.(*Session); ok {
			r.logger.Info("session disposed", "session", id, "pipeline", s.pipeline,
				"age", time.Since(s.createdAt).Round(time.Second))
		}
	})
	return r
}

func (r *registry) create(pipeline core.Pipeline, now time.Time) *Session {
	s := newSession(ulid.Make().String(), pipeline, now)
	r.sessions.SetDefault(s.id, s)
	r.logger.Info("session created", "session", s.id, "pipeline", pipeline)
	return s
}

func (r *registry) get(id string) (*Session, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: session %q", ErrNotFound, id)
	}
	s := v.(*Session)
	r.sessions.SetDefault(id, s)
	return s, nil
}

func (r *registry) remove(id string) error {
	if _, ok := r.sessions.Get(id); !ok {
		return fmt.Errorf("%w: session %q", ErrNotFound, id)
	}
	r.sessions.Delete(id)
	return nil
}

func (r *registry) count() int {
	return r.sessions.ItemCount()
}

func (r *registry) flush() {
	r.sessions.Flush()
}

package api

import (
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/curator/curation"
)

// subscriberBuffer is how many events a slow subscriber may fall behind
// before further events for it are dropped.
const subscriberBuffer = 32

// Broker fans curation events out to subscribers of a session. It implements
// curation.Notifier.
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[chan curation.Event]struct{}
	closed bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan curation.Event]struct{})}
}

// Notify delivers e to every subscriber of its session without blocking.
func (b *Broker) Notify(e curation.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[e.SessionID] {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers for events of sessionID. The returned function
// unsubscribes and closes the channel. The channel is also closed when the
// broker closes.
func (b *Broker) Subscribe(sessionID string) (<-chan curation.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan curation.Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan curation.Event]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[sessionID][ch]; !ok {
				return
			}
			delete(b.subs[sessionID], ch)
			if len(b.subs[sessionID]) == 0 {
				delete(b.subs, sessionID)
			}
			close(ch)
		})
	}
}

// Subscribers returns the number of subscribers of sessionID.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[sessionID])
}

// Close ends every subscription.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, chans := range b.subs {
		for ch := range chans {
			close(ch)
		}
		delete(b.subs, id)
	}
}

// GET /api/sessions/:id/events
func (s *Server) streamEvents(c *gin.Context) {
	if s.events == nil {
		c.JSON(http.StatusNotFound, ErrorEnvelope{ErrorKind: curation.KindNotFound, Message: "event streaming is disabled"})
		return
	}
	snap, err := s.orch.Snapshot(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	events, unsubscribe := s.events.Subscribe(snap.SessionID)
	defer unsubscribe()

	c.SSEvent("snapshot", snap)
	c.Writer.Flush()
	c.Stream(func(w io.Writer) bool {
		select {
		case e, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(e.Type), e)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

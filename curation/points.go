package curation

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/curator/core"
)

// pointStore holds a session's consensus points in proposal order.
// Ids come from a counter that never rewinds, so a rejected id is never reused.
type pointStore struct {
	next   int
	points []core.ConsensusPoint
}

// propose adds an unconfirmed point and returns it.
func (s *pointStore) propose(claim, evidenceLevel, citations string, at time.Time) core.ConsensusPoint {
	evidenceLevel = strings.TrimSpace(evidenceLevel)
	if evidenceLevel == "" {
		evidenceLevel = core.DefaultEvidenceLevel
	}
	p := core.ConsensusPoint{
		ID:            s.next,
		Claim:         strings.TrimSpace(claim),
		EvidenceLevel: evidenceLevel,
		Citations:     strings.TrimSpace(citations),
		ProposedAt:    at,
	}
	s.next++
	s.points = append(s.points, p)
	return p
}

// confirm marks a point confirmed. changed is false if it already was.
func (s *pointStore) confirm(id int) (p core.ConsensusPoint, changed bool, err error) {
	i := s.index(id)
	if i < 0 {
		return core.ConsensusPoint{}, false, fmt.Errorf("%w: consensus point %d", ErrNotFound, id)
	}
	if s.points[i].Confirmed {
		return s.points[i], false, nil
	}
	s.points[i].Confirmed = true
	return s.points[i], true, nil
}

// reject removes a point permanently.
func (s *pointStore) reject(id int) (core.ConsensusPoint, error) {
	i := s.index(id)
	if i < 0 {
		return core.ConsensusPoint{}, fmt.Errorf("%w: consensus point %d", ErrNotFound, id)
	}
	p := s.points[i]
	s.points = append(s.points[:i], s.points[i+1:]...)
	return p, nil
}

// confirmed returns copies of the confirmed points in proposal order.
func (s *pointStore) confirmed() []core.ConsensusPoint {
	var out []core.ConsensusPoint
	for _, p := range s.points {
		if p.Confirmed {
			out = append(out, p)
		}
	}
	return out
}

func (s *pointStore) confirmedCount() int {
	n := 0
	for _, p := range s.points {
		if p.Confirmed {
			n++
		}
	}
	return n
}

// all returns a copy of every live point.
func (s *pointStore) all() []core.ConsensusPoint {
	out := make([]core.ConsensusPoint, len(s.points))
	copy(out, s.points)
	return out
}

func (s *pointStore) reset() {
	s.next = 0
	s.points = nil
}

func (s *pointStore) index(id int) int {
	for i := range s.points {
		if s.points[i].ID == id {
			return i
		}
	}
	return -1
}

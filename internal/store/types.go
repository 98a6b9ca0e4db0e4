package store

import (
	"sort"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/domain"
)

// SessionStore holds live session records. It is owned by the Worker goroutine.
type SessionStore struct {
	byID  map[uuid.UUID]*domain.Session
	order []uuid.UUID
}

func newSessionStore() *SessionStore {
	return &SessionStore{byID: make(map[uuid.UUID]*domain.Session)}
}

func (s *SessionStore) insert(sess *domain.Session) bool {
	if _, exists := s.byID[sess.ID]; exists {
		return false
	}
	s.byID[sess.ID] = sess
	s.order = append(s.order, sess.ID)
	return true
}

func (s *SessionStore) get(id uuid.UUID) (*domain.Session, bool) {
	sess, ok := s.byID[id]
	return sess, ok
}

func (s *SessionStore) replace(sess *domain.Session) bool {
	if _, ok := s.byID[sess.ID]; !ok {
		return false
	}
	s.byID[sess.ID] = sess
	return true
}

// all returns live records ordered by creation time, insertion order breaking ties.
func (s *SessionStore) all() []*domain.Session {
	out := make([]*domain.Session, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *SessionStore) len() int { return len(s.order) }

// AgentStore holds live agent records in onboarding order.
type AgentStore struct {
	byID  map[uuid.UUID]*domain.Agent
	order []uuid.UUID
}

func newAgentStore() *AgentStore {
	return &AgentStore{byID: make(map[uuid.UUID]*domain.Agent)}
}

func (s *AgentStore) insert(a *domain.Agent) bool {
	if _, exists := s.byID[a.ID]; exists {
		return false
	}
	s.byID[a.ID] = a
	s.order = append(s.order, a.ID)
	return true
}

func (s *AgentStore) get(id uuid.UUID) (*domain.Agent, bool) {
	a, ok := s.byID[id]
	return a, ok
}

func (s *AgentStore) replace(a *domain.Agent) bool {
	if _, ok := s.byID[a.ID]; !ok {
		return false
	}
	s.byID[a.ID] = a
	return true
}

func (s *AgentStore) all() []*domain.Agent {
	out := make([]*domain.Agent, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *AgentStore) len() int { return len(s.order) }

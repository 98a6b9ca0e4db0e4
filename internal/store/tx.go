package store

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/domain"
	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
)

// Tx is the view of both stores handed to a Do callback. Records returned by a
// Tx are live: field changes are visible to later reads in the same callback and
// are committed when the callback returns. A Tx must not escape its callback.
//
// There is no rollback. Callbacks validate before they mutate.
type Tx struct {
	sessions *SessionStore
	agents   *AgentStore
}

func (tx *Tx) Session(id uuid.UUID) (*domain.Session, error) {
	sess, ok := tx.sessions.get(id)
	if !ok {
		return nil, chatdeskErrors.NotFound(fmt.Sprintf("session %s", id))
	}
	return sess, nil
}

// Sessions returns every session ordered by creation time.
func (tx *Tx) Sessions() []*domain.Session {
	return tx.sessions.all()
}

func (tx *Tx) InsertSession(sess *domain.Session) error {
	if sess == nil || sess.ID == uuid.Nil {
		return chatdeskErrors.InvalidInput("session without id")
	}
	if !tx.sessions.insert(sess) {
		return chatdeskErrors.Conflict(fmt.Sprintf("session %s already exists", sess.ID))
	}
	return nil
}

func (tx *Tx) ReplaceSession(sess *domain.Session) error {
	if sess == nil {
		return chatdeskErrors.InvalidInput("nil session")
	}
	if !tx.sessions.replace(sess) {
		return chatdeskErrors.NotFound(fmt.Sprintf("session %s", sess.ID))
	}
	return nil
}

func (tx *Tx) Agent(id uuid.UUID) (*domain.Agent, error) {
	a, ok := tx.agents.get(id)
	if !ok {
		return nil, chatdeskErrors.NotFound(fmt.Sprintf("agent %s", id))
	}
	return a, nil
}

// Agents returns every agent in onboarding order.
func (tx *Tx) Agents() []*domain.Agent {
	return tx.agents.all()
}

func (tx *Tx) InsertAgent(a *domain.Agent) error {
	if a == nil || a.ID == uuid.Nil {
		return chatdeskErrors.InvalidInput("agent without id")
	}
	if a.CurrentLoad < 0 {
		return chatdeskErrors.InvalidInput(fmt.Sprintf("agent %s has negative load", a.ID))
	}
	if !tx.agents.insert(a) {
		return chatdeskErrors.Conflict(fmt.Sprintf("agent %s already exists", a.ID))
	}
	return nil
}

func (tx *Tx) ReplaceAgent(a *domain.Agent) error {
	if a == nil {
		return chatdeskErrors.InvalidInput("nil agent")
	}
	if a.CurrentLoad < 0 {
		return chatdeskErrors.InvalidInput(fmt.Sprintf("agent %s has negative load", a.ID))
	}
	if !tx.agents.replace(a) {
		return chatdeskErrors.NotFound(fmt.Sprintf("agent %s", a.ID))
	}
	return nil
}

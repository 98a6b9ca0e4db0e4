// Package desk is the request-facing surface over admission and the stores.
package desk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/admission"
	"github.com/harunnryd/chatdesk/internal/capacity"
	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/logger"
	"github.com/harunnryd/chatdesk/internal/queue"
	"github.com/harunnryd/chatdesk/internal/store"
)

type Service struct {
	store  *store.Worker
	clock  clock.Clock
	engine *admission.Engine
}

func NewService(st *store.Worker, clk clock.Clock, engine *admission.Engine) *Service {
	return &Service{store: st, clock: clk, engine: engine}
}

func (s *Service) CreateSession(ctx context.Context) (admission.Result, error) {
	return s.engine.CreateSession(ctx)
}

// Session looks a session up by id.
func (s *Service) Session(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	return s.store.Session(ctx, id)
}

// PollSession records client activity. An Assigned session becomes Active;
// any other status is left as is.
func (s *Service) PollSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var (
		out       *domain.Session
		activated bool
	)
	err := s.store.Do(ctx, "poll_session", func(tx *store.Tx) error {
		sess, err := tx.Session(id)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		sess.LastPollAt = &now
		if sess.Status == domain.StatusAssigned {
			sess.Status = domain.StatusActive
			activated = true
		}
		out = sess.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if activated {
		logger.FromContext(logger.WithChatID(ctx, id.String())).Info("Session active")
	}
	return out, nil
}

func (s *Service) Agents(ctx context.Context) ([]*domain.Agent, error) {
	return s.store.Agents(ctx)
}

type TeamStats struct {
	Team      domain.Team `json:"team"`
	Agents    int         `json:"agents"`
	Accepting int         `json:"accepting"`
	Load      int         `json:"load"`
	Capacity  int         `json:"capacity"`
	MaxDepth  int         `json:"maxDepth"`
	Backlog   int         `json:"backlog"`
}

type LaneStats struct {
	Name  string `json:"name"`
	Depth int    `json:"depth"`
	Cap   int    `json:"capacity"`
}

type Stats struct {
	Now             time.Time             `json:"now"`
	BusinessHours   bool                  `json:"businessHours"`
	MainTeam        domain.Team           `json:"mainTeam"`
	MainHasRoom     bool                  `json:"mainHasRoom"`
	OverflowEnabled bool                  `json:"overflowEnabled"`
	Teams           []TeamStats           `json:"teams"`
	Lanes           []LaneStats           `json:"lanes"`
	Sessions        map[domain.Status]int `json:"sessions"`
}

// Stats reports the capacity picture admission would see right now.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var (
		agents   []*domain.Agent
		sessions []*domain.Session
	)
	err := s.store.Do(ctx, "stats", func(tx *store.Tx) error {
		for _, a := range tx.Agents() {
			agents = append(agents, a.Clone())
		}
		for _, sess := range tx.Sessions() {
			sessions = append(sessions, sess.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect stats: %w", err)
	}

	assessment := s.engine.Evaluator().Evaluate(s.clock.Now(), agents, sessions)
	out := &Stats{
		Now:             assessment.Now,
		BusinessHours:   assessment.BusinessHours,
		MainTeam:        assessment.MainTeam,
		MainHasRoom:     assessment.Main.HasRoom(),
		OverflowEnabled: assessment.OverflowEnabled,
		Sessions:        make(map[domain.Status]int),
	}

	for _, team := range domain.Teams {
		members := capacity.OfTeam(agents, team)
		override := 0
		if team == assessment.MainTeam {
			override = s.engine.Evaluator().Overrides.MainMaxQueue
		}
		lane := capacity.Assess(team, agents, sessions, override)
		ts := TeamStats{
			Team:     team,
			Agents:   len(members),
			Capacity: lane.Capacity,
			MaxDepth: lane.MaxDepth,
			Backlog:  lane.Backlog,
		}
		for _, a := range members {
			if a.Accepting {
				ts.Accepting++
			}
			ts.Load += a.CurrentLoad
		}
		out.Teams = append(out.Teams, ts)
	}

	for _, q := range []*queue.Intake{s.engine.MainIntake(), s.engine.OverflowIntake()} {
		out.Lanes = append(out.Lanes, LaneStats{Name: q.Name(), Depth: q.Len(), Cap: q.Cap()})
	}

	for _, sess := range sessions {
		out.Sessions[sess.Status]++
	}
	return out, nil
}

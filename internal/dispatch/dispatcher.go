// Package dispatch binds queued sessions to agents on a fixed tick.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/assign"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/metrics"
	"github.com/harunnryd/chatdesk/internal/queue"
	"github.com/harunnryd/chatdesk/internal/store"
)

type Assignment struct {
	SessionID uuid.UUID
	AgentID   uuid.UUID
	Team      domain.Team
}

type Dispatcher struct {
	store    *store.Worker
	assigner *assign.RoundRobin
	intakes  []*queue.Intake
	interval time.Duration
}

func NewDispatcher(st *store.Worker, assigner *assign.RoundRobin, interval time.Duration, intakes ...*queue.Intake) *Dispatcher {
	return &Dispatcher{store: st, assigner: assigner, intakes: intakes, interval: interval}
}

func (d *Dispatcher) Name() string            { return "dispatcher" }
func (d *Dispatcher) Interval() time.Duration { return d.interval }

// Tick clears the intake lanes and then assigns queued sessions team by team.
// The store, not the lanes, is the source of which sessions are waiting.
func (d *Dispatcher) Tick(ctx context.Context) error {
	drained := 0
	for _, q := range d.intakes {
		n := len(q.Drain())
		drained += n
		metrics.IntakeDepth.WithLabelValues(q.Name()).Set(float64(q.Len()))
	}

	total := 0
	for _, team := range domain.Teams {
		assigned, err := d.DispatchTeam(ctx, team)
		if err != nil {
			return fmt.Errorf("dispatch %s: %w", team, err)
		}
		total += len(assigned)
	}

	slog.Debug("Dispatch tick complete", "drained", drained, "assigned", total)
	return nil
}

// DispatchTeam offers the team's queued sessions, oldest first, to the assigner.
// All picks in one call share the live agent list, so each increment is seen
// by the next pick.
func (d *Dispatcher) DispatchTeam(ctx context.Context, team domain.Team) ([]Assignment, error) {
	var out []Assignment
	err := d.store.Do(ctx, "dispatch_"+string(team), func(tx *store.Tx) error {
		agents := tx.Agents()
		for _, sess := range tx.Sessions() {
			if sess.Status != domain.StatusQueued || sess.AssignedTeam == nil || *sess.AssignedTeam != team {
				continue
			}

			agent := d.assigner.Next(agents, team)
			if agent == nil {
				continue
			}

			agent.CurrentLoad++
			agentID := agent.ID
			sess.AssignedAgentID = &agentID
			sess.Status = domain.StatusAssigned
			out = append(out, Assignment{SessionID: sess.ID, AgentID: agentID, Team: team})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, a := range out {
		metrics.SessionsAssigned.WithLabelValues(string(team)).Inc()
		slog.Info("Session assigned", "chat_id", a.SessionID, "agent_id", a.AgentID, "team", team)
	}
	return out, nil
}

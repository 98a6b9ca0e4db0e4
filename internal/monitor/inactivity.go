// Package monitor holds the control loops that keep capacity accounting honest.
package monitor

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/metrics"
	"github.com/harunnryd/chatdesk/internal/store"
)

type Reclaimed struct {
	SessionID    uuid.UUID
	AgentID      *uuid.UUID
	HeldCapacity bool
}

// Inactivity marks sessions inactive once clients stop polling and returns
// the capacity they held.
type Inactivity struct {
	store     *store.Worker
	clock     clock.Clock
	threshold time.Duration
	interval  time.Duration
}

func NewInactivity(st *store.Worker, clk clock.Clock, threshold, interval time.Duration) *Inactivity {
	return &Inactivity{store: st, clock: clk, threshold: threshold, interval: interval}
}

func (m *Inactivity) Name() string            { return "inactivity" }
func (m *Inactivity) Interval() time.Duration { return m.interval }

func (m *Inactivity) Tick(ctx context.Context) error {
	_, err := m.Sweep(ctx)
	return err
}

func (m *Inactivity) Sweep(ctx context.Context) ([]Reclaimed, error) {
	var out []Reclaimed
	err := m.store.Do(ctx, "reclaim_inactive", func(tx *store.Tx) error {
		now := m.clock.Now()
		for _, sess := range tx.Sessions() {
			if !sess.Status.Reclaimable() {
				continue
			}
			if now.Sub(sess.LastSeen()) <= m.threshold {
				continue
			}

			r := Reclaimed{SessionID: sess.ID, AgentID: sess.AssignedAgentID}
			holding := sess.Status == domain.StatusAssigned || sess.Status == domain.StatusActive
			if holding && sess.AssignedAgentID != nil {
				if agent, err := tx.Agent(*sess.AssignedAgentID); err == nil {
					r.HeldCapacity = agent.Release()
				}
			}

			sess.Status = domain.StatusInactive
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, r := range out {
		metrics.SessionsReclaimed.WithLabelValues(strconv.FormatBool(r.HeldCapacity)).Inc()
		slog.Info("Session marked inactive", "chat_id", r.SessionID, "released_agent", r.HeldCapacity)
	}
	return out, nil
}

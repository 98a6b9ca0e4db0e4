package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/metrics"
	"github.com/harunnryd/chatdesk/internal/store"
)

// Shift stops assigning to agents whose shift has ended. It never turns an agent back on.
type Shift struct {
	store    *store.Worker
	clock    clock.Clock
	interval time.Duration
}

func NewShift(st *store.Worker, clk clock.Clock, interval time.Duration) *Shift {
	return &Shift{store: st, clock: clk, interval: interval}
}

func (m *Shift) Name() string            { return "shift" }
func (m *Shift) Interval() time.Duration { return m.interval }

func (m *Shift) Tick(ctx context.Context) error {
	_, err := m.Expire(ctx)
	return err
}

func (m *Shift) Expire(ctx context.Context) ([]uuid.UUID, error) {
	var expired []uuid.UUID
	err := m.store.Do(ctx, "expire_shifts", func(tx *store.Tx) error {
		now := m.clock.Now()
		for _, a := range tx.Agents() {
			if a.Accepting && !now.Before(a.ShiftEnd) {
				a.Accepting = false
				expired = append(expired, a.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(expired) > 0 {
		metrics.ShiftsExpired.Add(float64(len(expired)))
		slog.Info("Agent shifts expired", "count", len(expired))
	}
	return expired, nil
}

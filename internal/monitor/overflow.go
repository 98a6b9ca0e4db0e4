package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/harunnryd/chatdesk/internal/admission"
	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/metrics"
	"github.com/harunnryd/chatdesk/internal/store"
)

// Overflow opens the overflow lane while the main team is saturated during
// business hours. Every tick overwrites the accepting flag of every overflow
// agent, including ones whose shift has ended.
type Overflow struct {
	store     *store.Worker
	clock     clock.Clock
	evaluator admission.Evaluator
	interval  time.Duration

	mu      sync.Mutex
	enabled bool
}

func NewOverflow(st *store.Worker, clk clock.Clock, evaluator admission.Evaluator, interval time.Duration) *Overflow {
	if evaluator.Overrides.UsePressureForOverflowTrigger {
		slog.Info("use_pressure_for_overflow_trigger is set; overflow still triggers on backlog")
	}
	return &Overflow{store: st, clock: clk, evaluator: evaluator, interval: interval}
}

func (m *Overflow) Name() string            { return "overflow" }
func (m *Overflow) Interval() time.Duration { return m.interval }

func (m *Overflow) Tick(ctx context.Context) error {
	_, err := m.Evaluate(ctx)
	return err
}

// Evaluate recomputes the trigger and applies it. It returns the new state.
func (m *Overflow) Evaluate(ctx context.Context) (bool, error) {
	var assessment admission.Assessment
	err := m.store.Do(ctx, "overflow_activation", func(tx *store.Tx) error {
		agents := tx.Agents()
		assessment = m.evaluator.Evaluate(m.clock.Now(), agents, tx.Sessions())
		enable := assessment.ShouldEnableOverflow()
		for _, a := range agents {
			if a.Team == domain.TeamOverflow {
				a.Accepting = enable
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	enable := assessment.ShouldEnableOverflow()
	if enable {
		metrics.OverflowEnabled.Set(1)
	} else {
		metrics.OverflowEnabled.Set(0)
	}
	metrics.TeamBacklog.WithLabelValues(string(assessment.MainTeam)).Set(float64(assessment.Main.Backlog))
	metrics.TeamBacklog.WithLabelValues(string(domain.TeamOverflow)).Set(float64(assessment.Overflow.Backlog))

	m.mu.Lock()
	changed := m.enabled != enable
	m.enabled = enable
	m.mu.Unlock()

	if changed {
		slog.Info("Overflow lane toggled",
			"enabled", enable,
			"main_team", assessment.MainTeam,
			"backlog", assessment.Main.Backlog,
			"max_depth", assessment.Main.MaxDepth,
			"business_hours", assessment.BusinessHours,
		)
	}
	return enable, nil
}

// Enabled is the state applied by the most recent tick.
func (m *Overflow) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/daemon"
	"github.com/harunnryd/chatdesk/internal/roster"
)

// RosterComponent seeds the workforce into the store when the daemon starts.
type RosterComponent struct {
	cfg       *config.RosterConfig
	storeComp *StoreComponent
	clock     clock.Clock
	plans     []roster.TeamPlan
	seeded    int
	mu        sync.RWMutex
}

func NewRosterComponent(cfg *config.RosterConfig, storeComp *StoreComponent, clk clock.Clock) *RosterComponent {
	return &RosterComponent{cfg: cfg, storeComp: storeComp, clock: clk}
}

func (r *RosterComponent) Name() string {
	return "Roster"
}

func (r *RosterComponent) Dependencies() []string {
	return []string{"Store"}
}

func (r *RosterComponent) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storeComp == nil {
		return fmt.Errorf("storeComp not provided")
	}
	if r.cfg == nil {
		return fmt.Errorf("roster config not provided")
	}

	plans, err := roster.FromConfig(*r.cfg)
	if err != nil {
		return fmt.Errorf("parse roster: %w", err)
	}
	r.plans = plans
	slog.Info("Roster initialized", "component", r.Name(), "teams", len(plans))
	return nil
}

// Start runs after Store has started, so the worker is accepting requests.
func (r *RosterComponent) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plans == nil {
		return fmt.Errorf("Roster not initialized")
	}
	worker := r.storeComp.GetWorker()
	if worker == nil {
		return fmt.Errorf("store worker not initialized")
	}

	agents, err := roster.Seed(ctx, worker, r.plans, r.clock.Now())
	if err != nil {
		return fmt.Errorf("seed roster: %w", err)
	}
	r.seeded = len(agents)
	slog.Info("Roster seeded", "component", r.Name(), "agents", r.seeded)
	return nil
}

func (r *RosterComponent) Stop(ctx context.Context) error {
	return nil
}

func (r *RosterComponent) Health(ctx context.Context) (*daemon.ComponentHealth, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.plans == nil {
		return &daemon.ComponentHealth{Name: r.Name(), Healthy: false, Error: fmt.Errorf("not initialized")}, nil
	}
	return &daemon.ComponentHealth{Name: r.Name(), Healthy: true}, nil
}

// Seeded reports how many agents were written at start.
func (r *RosterComponent) Seeded() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seeded
}

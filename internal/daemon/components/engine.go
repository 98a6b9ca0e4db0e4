package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/harunnryd/chatdesk/internal/admission"
	"github.com/harunnryd/chatdesk/internal/assign"
	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/daemon"
	"github.com/harunnryd/chatdesk/internal/desk"
	"github.com/harunnryd/chatdesk/internal/dispatch"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/monitor"
	"github.com/harunnryd/chatdesk/internal/policy"
	"github.com/harunnryd/chatdesk/internal/queue"
	"github.com/harunnryd/chatdesk/internal/scheduler"
)

// EngineComponent wires routing policy, admission, dispatch and the monitors
// on top of the store.
type EngineComponent struct {
	cfg       *config.Config
	storeComp *StoreComponent
	clock     clock.Clock

	service    *desk.Service
	admission  *admission.Engine
	dispatcher *dispatch.Dispatcher
	inactivity *monitor.Inactivity
	shift      *monitor.Shift
	overflow   *monitor.Overflow
	mu         sync.RWMutex
}

func NewEngineComponent(cfg *config.Config, storeComp *StoreComponent, clk clock.Clock) *EngineComponent {
	return &EngineComponent{cfg: cfg, storeComp: storeComp, clock: clk}
}

func (e *EngineComponent) Name() string {
	return "Engine"
}

func (e *EngineComponent) Dependencies() []string {
	return []string{"Store", "Roster"}
}

func (e *EngineComponent) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.storeComp == nil {
		return fmt.Errorf("storeComp not provided")
	}
	worker := e.storeComp.GetWorker()
	if worker == nil {
		return fmt.Errorf("store worker not initialized")
	}

	hours, err := policy.NewOfficeHours(e.cfg.OfficeHours.Start, e.cfg.OfficeHours.End, e.cfg.OfficeHours.Timezone)
	if err != nil {
		return fmt.Errorf("office hours: %w", err)
	}
	day, err := domain.ParseTeam(e.cfg.Routing.DayTeam)
	if err != nil {
		return fmt.Errorf("routing day team: %w", err)
	}
	night, err := domain.ParseTeam(e.cfg.Routing.NightTeam)
	if err != nil {
		return fmt.Errorf("routing night team: %w", err)
	}

	dispatchEvery, err := config.Interval("dispatcher.tick_interval", e.cfg.Dispatcher.TickInterval, config.DefaultDispatcherTickInterval)
	if err != nil {
		return err
	}
	inactivityEvery, err := config.Interval("inactivity.tick_interval", e.cfg.Inactivity.TickInterval, config.DefaultInactivityTickInterval)
	if err != nil {
		return err
	}
	threshold, err := config.Interval("inactivity.threshold", e.cfg.Inactivity.Threshold, config.DefaultInactivityThreshold)
	if err != nil {
		return err
	}
	shiftEvery, err := config.Interval("shift.tick_interval", e.cfg.Shift.TickInterval, config.DefaultShiftTickInterval)
	if err != nil {
		return err
	}
	overflowEvery, err := config.Interval("overflow.tick_interval", e.cfg.Overflow.TickInterval, config.DefaultOverflowTickInterval)
	if err != nil {
		return err
	}

	mainCap := e.cfg.Queues.MainCapacity
	if mainCap <= 0 {
		mainCap = config.DefaultQueuesMainCapacity
	}
	overflowCap := e.cfg.Queues.OverflowCapacity
	if overflowCap <= 0 {
		overflowCap = config.DefaultQueuesOverflowCapacity
	}
	mainIntake := queue.NewIntake("main", mainCap)
	overflowIntake := queue.NewIntake("overflow", overflowCap)

	evaluator := admission.Evaluator{
		Router: policy.NewTeamRouter(hours, day, night),
		Overrides: admission.Overrides{
			ForceBusinessHours:            e.cfg.Testing.ForceOfficeHours,
			MainMaxQueue:                  e.cfg.Testing.MainMaxQueueOverride,
			UsePressureForOverflowTrigger: e.cfg.Testing.UsePressureForOverflowTrigger,
		},
	}
	if evaluator.Overrides != (admission.Overrides{}) {
		slog.Warn("Testing overrides active", "component", e.Name(),
			"force_office_hours", evaluator.Overrides.ForceBusinessHours,
			"main_max_queue_override", evaluator.Overrides.MainMaxQueue,
			"use_pressure_for_overflow_trigger", evaluator.Overrides.UsePressureForOverflowTrigger,
		)
	}

	e.admission = admission.NewEngine(worker, e.clock, evaluator, mainIntake, overflowIntake)
	e.service = desk.NewService(worker, e.clock, e.admission)
	e.dispatcher = dispatch.NewDispatcher(worker, assign.NewRoundRobin(), dispatchEvery, mainIntake, overflowIntake)
	e.inactivity = monitor.NewInactivity(worker, e.clock, threshold, inactivityEvery)
	e.shift = monitor.NewShift(worker, e.clock, shiftEvery)
	e.overflow = monitor.NewOverflow(worker, e.clock, evaluator, overflowEvery)

	slog.Info("Engine initialized", "component", e.Name(),
		"day_team", day, "night_team", night,
		"office_hours", e.cfg.OfficeHours.Start+"-"+e.cfg.OfficeHours.End,
		"inactivity_threshold", threshold,
	)
	return nil
}

func (e *EngineComponent) Start(ctx context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.service == nil {
		return fmt.Errorf("Engine not initialized")
	}
	// Settle overflow before the API accepts traffic.
	if _, err := e.overflow.Evaluate(ctx); err != nil {
		return fmt.Errorf("initial overflow evaluation: %w", err)
	}
	return nil
}

func (e *EngineComponent) Stop(ctx context.Context) error {
	return nil
}

func (e *EngineComponent) Health(ctx context.Context) (*daemon.ComponentHealth, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.service == nil {
		return &daemon.ComponentHealth{Name: e.Name(), Healthy: false, Error: fmt.Errorf("not initialized")}, nil
	}
	if !e.storeComp.GetWorker().IsRunning() {
		return &daemon.ComponentHealth{Name: e.Name(), Healthy: false, Error: fmt.Errorf("store not running")}, nil
	}
	return &daemon.ComponentHealth{Name: e.Name(), Healthy: true}, nil
}

func (e *EngineComponent) Service() *desk.Service {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.service
}

// Jobs are the periodic loops, in the order the scheduler starts them.
func (e *EngineComponent) Jobs() []scheduler.Job {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.service == nil {
		return nil
	}
	return []scheduler.Job{e.dispatcher, e.inactivity, e.shift, e.overflow}
}

package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/daemon"
	"github.com/harunnryd/chatdesk/internal/scheduler"
)

type SchedulerComponent struct {
	sched      *scheduler.Scheduler
	cfg        *config.Config
	engineComp *EngineComponent
}

func NewSchedulerComponent(cfg *config.Config, engineComp *EngineComponent) *SchedulerComponent {
	return &SchedulerComponent{
		cfg:        cfg,
		engineComp: engineComp,
	}
}

func (s *SchedulerComponent) Name() string {
	return "Scheduler"
}

func (s *SchedulerComponent) Dependencies() []string {
	return []string{"Engine"}
}

func (s *SchedulerComponent) Init(ctx context.Context) error {
	if s.engineComp == nil {
		return fmt.Errorf("engineComp not provided")
	}

	jobs := s.engineComp.Jobs()
	if len(jobs) == 0 {
		return fmt.Errorf("engine not initialized")
	}

	sched, err := scheduler.NewScheduler(jobs, s.cfg.Scheduler)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.sched = sched

	if err := s.sched.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	slog.Info("Scheduler initialized", "component", s.Name(), "jobs", len(jobs))
	return nil
}

func (s *SchedulerComponent) Start(ctx context.Context) error {
	if s.sched == nil {
		return fmt.Errorf("scheduler not initialized")
	}

	if err := s.sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	slog.Info("Scheduler started", "component", s.Name())
	return nil
}

func (s *SchedulerComponent) Stop(ctx context.Context) error {
	if s.sched == nil {
		slog.Info("Scheduler not initialized, skipping stop", "component", s.Name())
		return nil
	}

	if err := s.sched.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}

	slog.Info("Scheduler stopped", "component", s.Name())
	return nil
}

func (s *SchedulerComponent) Health(ctx context.Context) (*daemon.ComponentHealth, error) {
	if s.sched == nil {
		return &daemon.ComponentHealth{
			Name:    s.Name(),
			Healthy: false,
			Error:   fmt.Errorf("not initialized"),
		}, nil
	}

	if err := s.sched.Health(ctx); err != nil {
		return &daemon.ComponentHealth{
			Name:    s.Name(),
			Healthy: false,
			Error:   err,
		}, nil
	}

	return &daemon.ComponentHealth{
		Name:    s.Name(),
		Healthy: true,
	}, nil
}

func (s *SchedulerComponent) GetScheduler() *scheduler.Scheduler {
	return s.sched
}

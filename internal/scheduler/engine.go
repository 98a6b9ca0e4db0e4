package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/harunnryd/chatdesk/internal/concurrency"
	"github.com/harunnryd/chatdesk/internal/config"
	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
	"github.com/harunnryd/chatdesk/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// Job is one periodic control loop.
type Job interface {
	Name() string
	Interval() time.Duration
	Tick(ctx context.Context) error
}

type JobStatus struct {
	Name      string
	Interval  time.Duration
	Ticks     uint64
	Failures  uint64
	LastTick  time.Time
	LastError string
}

// Scheduler runs every Job on its own goroutine as
// for { tick; sleep interval or stop }.
type Scheduler struct {
	jobs []Job

	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
	running bool
	status  map[string]*JobStatus

	shutdownTimeout time.Duration
}

func NewScheduler(jobs []Job, cfg config.SchedulerConfig) (*Scheduler, error) {
	shutdownTimeout, err := config.DurationOrDefault(cfg.ShutdownTimeout, config.DefaultSchedulerShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse scheduler shutdown timeout: %w", err)
	}

	status := make(map[string]*JobStatus, len(jobs))
	for _, job := range jobs {
		if job.Interval() <= 0 {
			return nil, chatdeskErrors.InvalidInput(fmt.Sprintf("job %s has non-positive interval %v", job.Name(), job.Interval()))
		}
		if _, dup := status[job.Name()]; dup {
			return nil, chatdeskErrors.InvalidInput(fmt.Sprintf("duplicate job name %s", job.Name()))
		}
		status[job.Name()] = &JobStatus{Name: job.Name(), Interval: job.Interval()}
	}

	return &Scheduler{
		jobs:            jobs,
		status:          status,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

func (s *Scheduler) Init(ctx context.Context) error {
	s.mu.Lock()
	// The loops outlive the init context; Stop cancels them.
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Unlock()

	slog.Info("Scheduler initialized", "jobs", len(s.jobs))
	return nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if s.ctx == nil {
		s.mu.Unlock()
		return chatdeskErrors.Internal("scheduler not initialized")
	}
	s.running = true
	g, gctx := errgroup.WithContext(s.ctx)
	s.group = g
	s.mu.Unlock()

	for _, job := range s.jobs {
		job := job
		g.Go(func() error {
			return s.runJob(gctx, job)
		})
	}

	slog.Info("Scheduler started", "jobs", len(s.jobs))
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	g := s.group
	s.mu.Unlock()

	s.cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		slog.Info("Scheduler stopped gracefully")
		return err
	case <-time.After(s.shutdownTimeout):
		slog.Warn("Scheduler shutdown timeout, force stopping")
		return chatdeskErrors.Internal("shutdown timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) Health(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ctx == nil {
		return chatdeskErrors.Internal("scheduler not initialized")
	}
	if !s.running {
		return chatdeskErrors.Internal("scheduler not running")
	}

	now := time.Now()
	for _, st := range s.status {
		if st.LastTick.IsZero() {
			continue
		}
		if stale := 3*st.Interval + time.Second; now.Sub(st.LastTick) > stale {
			return chatdeskErrors.Internal(fmt.Sprintf("job %s has not ticked for %v", st.Name, now.Sub(st.LastTick).Round(time.Millisecond)))
		}
	}
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Status returns a copy of every job's counters.
func (s *Scheduler) Status() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *s.status[job.Name()])
	}
	return out
}

func (s *Scheduler) runJob(ctx context.Context, job Job) error {
	slog.Debug("Loop started", "loop", job.Name(), "interval", job.Interval())
	timer := time.NewTimer(job.Interval())
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			slog.Debug("Loop stopped", "loop", job.Name())
			return nil
		}

		s.tick(ctx, job)

		timer.Reset(job.Interval())
		select {
		case <-ctx.Done():
			slog.Debug("Loop stopped", "loop", job.Name())
			return nil
		case <-timer.C:
		}
	}
}

// tick runs one iteration to completion even if ctx is cancelled meanwhile.
func (s *Scheduler) tick(ctx context.Context, job Job) {
	tickCtx := context.WithoutCancel(ctx)
	start := time.Now()
	err := concurrency.SafeRun(job.Name(), func() error {
		return job.Tick(tickCtx)
	})
	metrics.LoopTickDuration.WithLabelValues(job.Name()).Observe(time.Since(start).Seconds())

	s.mu.Lock()
	st := s.status[job.Name()]
	st.Ticks++
	st.LastTick = time.Now()
	if err != nil {
		st.Failures++
		st.LastError = err.Error()
	} else {
		st.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		metrics.LoopTickErrors.WithLabelValues(job.Name()).Inc()
		slog.Error("Loop tick failed", "loop", job.Name(), "error", err)
	}
}

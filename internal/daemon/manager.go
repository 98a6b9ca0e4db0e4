package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/harunnryd/chatdesk/internal/concurrency"
	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/instance"
)

type timeouts struct {
	shutdown        time.Duration
	startupShutdown time.Duration
	healthEvery     time.Duration
}

// Daemon owns the lifecycle of the chat desk components and the
// single-instance guard around them.
type Daemon struct {
	cfg        *config.Config
	timeouts   timeouts
	components []Component
	// order is the resolved dependency order; Start follows it and Stop
	// walks it backwards.
	order       []string
	initialized []Component
	health      HealthStatus
	uptimeStart time.Time
	mu          sync.RWMutex
	monitorDone chan struct{}
	ready       chan struct{}
	readyOnce   sync.Once
	lock        *instance.Lock
	pidPath     string
}

func NewDaemon(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Daemon{
		cfg:         cfg,
		health:      StatusStarting,
		uptimeStart: time.Now(),
		monitorDone: make(chan struct{}),
		ready:       make(chan struct{}),
	}, nil
}

func (d *Daemon) AddComponent(comp Component) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.components = append(d.components, comp)
	slog.Info("Component registered", "component", comp.Name(), "total_components", len(d.components))
}

// Start runs the daemon until ctx is cancelled or SIGINT/SIGTERM arrives.
func (d *Daemon) Start(ctx context.Context) error {
	slog.Info("Chatdesk daemon starting...", "port", d.cfg.Server.Port)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.validateConfig(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if err := d.preInitChecks(ctx); err != nil {
		return fmt.Errorf("pre-init checks failed: %w", err)
	}
	defer d.releaseInstance()

	if err := d.initializeComponents(ctx); err != nil {
		d.rollback(ctx)
		return fmt.Errorf("component initialization failed: %w", err)
	}

	if err := d.startComponents(ctx); err != nil {
		d.gracefulShutdown(context.Background(), d.timeouts.startupShutdown)
		return fmt.Errorf("component startup failed: %w", err)
	}

	d.setHealth(StatusRunning)
	d.readyOnce.Do(func() { close(d.ready) })
	slog.Info("Chatdesk daemon is running", "components", len(d.components), "order", d.order, "pid", os.Getpid())

	concurrency.SafeGo(func() { d.monitorHealth(ctx) }, func(r interface{}) {
		slog.Error("Health monitor stopped", "panic", r)
	})

	<-ctx.Done()

	slog.Info("Context cancelled, initiating graceful shutdown", "reason", ctx.Err(), "uptime", d.Uptime().Round(time.Second))
	d.setHealth(StatusStopping)
	close(d.monitorDone)
	if err := d.gracefulShutdown(context.Background(), d.timeouts.shutdown); err != nil {
		return err
	}

	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ctx.Err()
	}
	return nil
}

// Ready is closed once every component has started.
func (d *Daemon) Ready() <-chan struct{} {
	return d.ready
}

func (d *Daemon) Health() HealthStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.health
}

func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.uptimeStart)
}

// ComponentHealth probes every registered component. A probe error marks
// the component unhealthy.
func (d *Daemon) ComponentHealth() map[string]*ComponentHealth {
	d.mu.RLock()
	components := slices.Clone(d.components)
	d.mu.RUnlock()

	result := make(map[string]*ComponentHealth, len(components))
	for _, comp := range components {
		health, err := comp.Health(context.Background())
		if health == nil {
			health = &ComponentHealth{Name: comp.Name()}
		}
		if err != nil {
			health.Healthy = false
			health.Error = err
		}
		result[comp.Name()] = health
	}
	return result
}

func (d *Daemon) setHealth(status HealthStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.health = status
}

func (d *Daemon) validateConfig() error {
	slog.Info("Validating configuration...")

	if d.cfg.Server.Port < 1 || d.cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", d.cfg.Server.Port)
	}
	if d.cfg.Daemon.LockPath == "" {
		return fmt.Errorf("daemon lock path is empty")
	}

	var err error
	if d.timeouts.shutdown, err = config.DurationOrDefault(d.cfg.Daemon.ShutdownTimeout, config.DefaultDaemonShutdownTimeout); err != nil {
		return fmt.Errorf("daemon.shutdown_timeout: %w", err)
	}
	if d.timeouts.startupShutdown, err = config.DurationOrDefault(d.cfg.Daemon.StartupShutdownTimeout, config.DefaultDaemonStartupShutdownTimeout); err != nil {
		return fmt.Errorf("daemon.startup_shutdown_timeout: %w", err)
	}
	if d.timeouts.healthEvery, err = config.Interval("daemon.health_check_interval", d.cfg.Daemon.HealthCheckInterval, config.DefaultDaemonHealthCheckInterval); err != nil {
		return err
	}

	for _, p := range []string{d.cfg.Daemon.LockPath, d.cfg.Daemon.PIDPath} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", p, err)
		}
	}

	slog.Info("Configuration validated", "port", d.cfg.Server.Port, "lock", d.cfg.Daemon.LockPath)
	return nil
}

// preInitChecks makes this process the only running instance and records its PID.
func (d *Daemon) preInitChecks(ctx context.Context) error {
	slog.Info("Running pre-init checks...")

	lock, err := instance.AcquireLock(ctx, d.cfg.Daemon.LockPath, instance.DefaultLockConfig())
	if err != nil {
		if pid, pidErr := instance.ReadPIDFile(d.cfg.Daemon.PIDPath); pidErr == nil {
			slog.Error("Another chatdesk instance is running", "pid", pid, "lock", d.cfg.Daemon.LockPath)
		}
		return fmt.Errorf("acquire instance lock: %w", err)
	}

	if d.cfg.Daemon.PIDPath != "" {
		if err := instance.WritePIDFile(d.cfg.Daemon.PIDPath); err != nil {
			lock.Unlock()
			return fmt.Errorf("write pid file: %w", err)
		}
	}

	d.mu.Lock()
	d.lock = lock
	d.pidPath = d.cfg.Daemon.PIDPath
	d.mu.Unlock()

	slog.Info("Pre-init checks completed", "lock", lock.Path(), "pid_file", d.cfg.Daemon.PIDPath)
	return nil
}

func (d *Daemon) releaseInstance() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pidPath != "" {
		instance.RemovePIDFile(d.pidPath)
		d.pidPath = ""
	}
	if d.lock != nil {
		d.lock.Unlock()
		d.lock = nil
	}
}

// initializeComponents resolves the dependency order and inits along it.
// Components that initialized are remembered for rollback.
func (d *Daemon) initializeComponents(ctx context.Context) error {
	slog.Info("Initializing components...")

	if err := d.validateDependencies(); err != nil {
		return fmt.Errorf("dependency validation failed: %w", err)
	}

	order, err := d.resolveOrder()
	if err != nil {
		return fmt.Errorf("failed to resolve init order: %w", err)
	}
	d.order = order
	d.initialized = d.initialized[:0]

	for _, comp := range d.ordered() {
		slog.Info("Initializing component...", "component", comp.Name())
		if err := comp.Init(ctx); err != nil {
			slog.Error("Component initialization failed", "component", comp.Name(), "error", err)
			return fmt.Errorf("component %s init failed: %w", comp.Name(), err)
		}
		d.initialized = append(d.initialized, comp)
	}

	slog.Info("All components initialized", "count", len(d.initialized))
	return nil
}

func (d *Daemon) startComponents(ctx context.Context) error {
	slog.Info("Starting components...")

	for _, comp := range d.ordered() {
		if err := comp.Start(ctx); err != nil {
			slog.Error("Component startup failed", "component", comp.Name(), "error", err)
			return fmt.Errorf("component %s startup failed: %w", comp.Name(), err)
		}
		slog.Info("Component started", "component", comp.Name())
	}

	slog.Info("All components started", "count", len(d.components))
	return nil
}

// ordered returns components in resolved order, or registration order when
// nothing has been resolved yet.
func (d *Daemon) ordered() []Component {
	if len(d.order) == 0 {
		return slices.Clone(d.components)
	}
	out := make([]Component, 0, len(d.order))
	for _, name := range d.order {
		if comp := d.getComponentByName(name); comp != nil {
			out = append(out, comp)
		}
	}
	return out
}

func (d *Daemon) gracefulShutdown(ctx context.Context, timeout time.Duration) error {
	slog.Info("Graceful shutdown initiated", "timeout", timeout)

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- d.shutdownComponents(shutdownCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			slog.Error("Shutdown completed with error", "error", err)
		} else {
			slog.Info("Graceful shutdown completed")
		}
		return err
	case <-shutdownCtx.Done():
		if ctx.Err() != nil {
			return fmt.Errorf("shutdown cancelled: %w", ctx.Err())
		}
		slog.Error("Shutdown timeout exceeded", "timeout", timeout)
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}

// shutdownComponents stops dependents before their dependencies: the HTTP
// server goes first and the store last. Stop errors are logged and joined.
func (d *Daemon) shutdownComponents(ctx context.Context) error {
	var errs []error
	comps := d.ordered()
	for i := len(comps) - 1; i >= 0; i-- {
		comp := comps[i]
		if err := comp.Stop(ctx); err != nil {
			slog.Error("Component stop failed", "component", comp.Name(), "error", err)
			errs = append(errs, fmt.Errorf("stop %s: %w", comp.Name(), err))
			continue
		}
		slog.Info("Component stopped", "component", comp.Name())
	}

	d.setHealth(StatusStopped)
	return errors.Join(errs...)
}

// rollback stops, newest first, only the components whose Init succeeded.
func (d *Daemon) rollback(ctx context.Context) {
	slog.Warn("Rolling back initialized components...", "count", len(d.initialized))

	for i := len(d.initialized) - 1; i >= 0; i-- {
		comp := d.initialized[i]
		if err := comp.Stop(ctx); err != nil {
			slog.Error("Rollback failed", "component", comp.Name(), "error", err)
		}
	}
	d.initialized = nil

	d.setHealth(StatusStopped)
}

func (d *Daemon) getComponentByName(name string) Component {
	for _, comp := range d.components {
		if comp.Name() == name {
			return comp
		}
	}
	return nil
}

func (d *Daemon) Component(name string) Component {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.getComponentByName(name)
}

func (d *Daemon) monitorHealth(ctx context.Context) {
	ticker := time.NewTicker(d.timeouts.healthEvery)
	defer ticker.Stop()

	unhealthy := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.monitorDone:
			return
		case <-ticker.C:
			d.checkComponentHealth(unhealthy)
		}
	}
}

// checkComponentHealth logs transitions only, so a component that stays
// down does not flood the log. unhealthy carries state between calls.
func (d *Daemon) checkComponentHealth(unhealthy map[string]bool) {
	for name, health := range d.ComponentHealth() {
		switch {
		case !health.Healthy && !unhealthy[name]:
			unhealthy[name] = true
			slog.Warn("Component unhealthy", "component", name, "error", health.Error)
		case health.Healthy && unhealthy[name]:
			delete(unhealthy, name)
			slog.Info("Component recovered", "component", name)
		}
	}
	if len(unhealthy) == 0 {
		slog.Debug("All components healthy", "count", len(d.components), "uptime", d.Uptime().Round(time.Second))
	}
}

func (d *Daemon) validateDependencies() error {
	known := make(map[string]bool, len(d.components))
	for _, comp := range d.components {
		if known[comp.Name()] {
			return fmt.Errorf("component %s registered twice", comp.Name())
		}
		known[comp.Name()] = true
	}

	for _, comp := range d.components {
		for _, dep := range comp.Dependencies() {
			if !known[dep] {
				return fmt.Errorf("component %s depends on %s which is not registered", comp.Name(), dep)
			}
		}
	}
	return nil
}

// resolveOrder is a depth-first topological sort that keeps registration
// order among components with no dependency between them.
func (d *Daemon) resolveOrder() ([]string, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(d.components))
	order := make([]string, 0, len(d.components))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("circular dependency detected involving %s", name)
		case done:
			return nil
		}

		comp := d.getComponentByName(name)
		if comp == nil {
			return fmt.Errorf("component %s not found", name)
		}

		state[name] = visiting
		for _, dep := range comp.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, comp := range d.components {
		if err := visit(comp.Name()); err != nil {
			return nil, err
		}
	}

	slog.Info("Component order resolved", "order", order)
	return order, nil
}

package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/daemon"
	"github.com/harunnryd/chatdesk/internal/httpapi"
)

// HealthSource is what the /health endpoint reports on. *daemon.Daemon satisfies it.
type HealthSource interface {
	Health() daemon.HealthStatus
	ComponentHealth() map[string]*daemon.ComponentHealth
}

type HTTPServerComponent struct {
	health       HealthSource
	engineComp   *EngineComponent
	cfg          *config.ServerConfig
	dependencies []string
	server       *http.Server
	listener     net.Listener
	shutdownTTL  time.Duration
	initialized  bool
	started      bool
	mu           sync.RWMutex
	startTime    time.Time
}

func NewHTTPServerComponent(health HealthSource, engineComp *EngineComponent, cfg *config.ServerConfig) *HTTPServerComponent {
	return NewHTTPServerComponentWithDependencies(health, engineComp, cfg, []string{"Engine", "Scheduler"})
}

func NewHTTPServerComponentWithDependencies(health HealthSource, engineComp *EngineComponent, cfg *config.ServerConfig, dependencies []string) *HTTPServerComponent {
	deps := make([]string, len(dependencies))
	copy(deps, dependencies)
	return &HTTPServerComponent{
		health:       health,
		engineComp:   engineComp,
		cfg:          cfg,
		dependencies: deps,
	}
}

func (h *HTTPServerComponent) Name() string {
	return "HTTPServer"
}

func (h *HTTPServerComponent) Dependencies() []string {
	out := make([]string, len(h.dependencies))
	copy(out, h.dependencies)
	return out
}

func (h *HTTPServerComponent) Init(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engineComp == nil || h.engineComp.Service() == nil {
		return fmt.Errorf("engine not initialized")
	}

	readTimeout, err := config.DurationOrDefault(h.cfg.ReadTimeout, config.DefaultServerReadTimeout)
	if err != nil {
		return fmt.Errorf("parse server read timeout: %w", err)
	}
	writeTimeout, err := config.DurationOrDefault(h.cfg.WriteTimeout, config.DefaultServerWriteTimeout)
	if err != nil {
		return fmt.Errorf("parse server write timeout: %w", err)
	}
	idleTimeout, err := config.DurationOrDefault(h.cfg.IdleTimeout, config.DefaultServerIdleTimeout)
	if err != nil {
		return fmt.Errorf("parse server idle timeout: %w", err)
	}
	shutdownTimeout, err := config.DurationOrDefault(h.cfg.ShutdownTimeout, config.DefaultServerShutdownTimeout)
	if err != nil {
		return fmt.Errorf("parse server shutdown timeout: %w", err)
	}

	handlers := httpapi.NewHandlers(h.engineComp.Service(), h.healthReport)
	h.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", h.cfg.Port),
		Handler:      httpapi.NewRouter(handlers),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	h.shutdownTTL = shutdownTimeout

	h.initialized = true
	slog.Info("HTTPServer initialized", "component", h.Name(), "port", h.cfg.Port)
	return nil
}

// Start binds the port before returning, so a taken port fails startup.
func (h *HTTPServerComponent) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return fmt.Errorf("HTTPServer not initialized")
	}

	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.server.Addr, err)
	}
	h.listener = ln

	go func() {
		slog.Info("HTTP server listening", "component", h.Name(), "addr", ln.Addr().String())
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "component", h.Name(), "error", err)
		}
	}()

	h.started = true
	h.startTime = time.Now()
	slog.Info("HTTPServer started", "component", h.Name())
	return nil
}

func (h *HTTPServerComponent) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		slog.Info("HTTPServer not started, skipping stop", "component", h.Name())
		return nil
	}

	slog.Info("Stopping HTTPServer...", "component", h.Name())
	shutdownCtx, cancel := context.WithTimeout(ctx, h.shutdownTTL)
	defer cancel()

	if err := h.server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTPServer shutdown error", "component", h.Name(), "error", err)
		return err
	}

	h.started = false
	slog.Info("HTTPServer stopped", "component", h.Name())
	return nil
}

func (h *HTTPServerComponent) Health(ctx context.Context) (*daemon.ComponentHealth, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.initialized {
		return &daemon.ComponentHealth{
			Name:    h.Name(),
			Healthy: false,
			Error:   fmt.Errorf("not initialized"),
		}, nil
	}

	if !h.started {
		return &daemon.ComponentHealth{
			Name:    h.Name(),
			Healthy: false,
			Error:   fmt.Errorf("not started"),
		}, nil
	}

	return &daemon.ComponentHealth{
		Name:    h.Name(),
		Healthy: true,
	}, nil
}

// Addr is the bound address once started, else the configured one.
func (h *HTTPServerComponent) Addr() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.listener != nil {
		return h.listener.Addr().String()
	}
	if h.server != nil {
		return h.server.Addr
	}
	return ""
}

func (h *HTTPServerComponent) healthReport(ctx context.Context) httpapi.HealthReport {
	report := httpapi.HealthReport{Status: "ok", Components: map[string]httpapi.ComponentHealth{}}
	if h.health == nil {
		return report
	}

	if status := h.health.Health(); !status.Serving() {
		report.Status = string(status)
	}
	for name, ch := range h.health.ComponentHealth() {
		entry := httpapi.ComponentHealth{Healthy: ch.Healthy}
		if ch.Error != nil {
			entry.Error = ch.Error.Error()
		}
		if !ch.Healthy && report.Status == "ok" {
			report.Status = "degraded"
		}
		report.Components[name] = entry
	}
	return report
}

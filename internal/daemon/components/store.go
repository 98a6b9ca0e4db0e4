package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/daemon"
	"github.com/harunnryd/chatdesk/internal/store"
)

type StoreComponent struct {
	storeCfg    *config.StoreConfig
	worker      *store.Worker
	initialized bool
	started     bool
	mu          sync.RWMutex
	startTime   time.Time
}

func NewStoreComponent(storeCfg *config.StoreConfig) *StoreComponent {
	return &StoreComponent{storeCfg: storeCfg}
}

func (s *StoreComponent) Name() string {
	return "Store"
}

func (s *StoreComponent) Dependencies() []string {
	return []string{}
}

func (s *StoreComponent) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("Store init cancelled: %w", ctx.Err())
	default:
	}

	inboxSize := 0
	if s.storeCfg != nil {
		inboxSize = s.storeCfg.InboxSize
	}
	if inboxSize <= 0 {
		inboxSize = config.DefaultStoreInboxSize
	}

	s.worker = store.NewWorker(store.RuntimeConfig{InboxSize: inboxSize})
	s.initialized = true
	slog.Info("Store initialized", "component", s.Name(), "inbox_size", inboxSize)
	return nil
}

func (s *StoreComponent) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return fmt.Errorf("Store not initialized")
	}

	s.worker.Start()
	s.started = true
	s.startTime = time.Now()
	slog.Info("Store started", "component", s.Name())
	return nil
}

func (s *StoreComponent) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		slog.Info("Store not started, skipping stop", "component", s.Name())
		return nil
	}

	slog.Info("Stopping Store...", "component", s.Name(), "pending", s.worker.InboxDepth())
	s.worker.Stop()
	s.started = false
	slog.Info("Store stopped", "component", s.Name(), "uptime", time.Since(s.startTime).Round(time.Second))
	return nil
}

func (s *StoreComponent) Health(ctx context.Context) (*daemon.ComponentHealth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return &daemon.ComponentHealth{Name: s.Name(), Healthy: false, Error: fmt.Errorf("not initialized")}, nil
	}
	if !s.started {
		return &daemon.ComponentHealth{Name: s.Name(), Healthy: false, Error: fmt.Errorf("not started")}, nil
	}
	if !s.worker.IsRunning() {
		return &daemon.ComponentHealth{Name: s.Name(), Healthy: false, Error: fmt.Errorf("loop not running")}, nil
	}

	return &daemon.ComponentHealth{Name: s.Name(), Healthy: true}, nil
}

func (s *StoreComponent) GetWorker() *store.Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.worker
}

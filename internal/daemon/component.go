package daemon

import (
	"context"
)

// HealthStatus is the daemon lifecycle phase reported on /health.
type HealthStatus string

const (
	StatusStarting HealthStatus = "starting"
	StatusRunning  HealthStatus = "running"
	StatusStopping HealthStatus = "stopping"
	StatusStopped  HealthStatus = "stopped"
)

// Serving reports whether the daemon admits and dispatches chats.
func (s HealthStatus) Serving() bool { return s == StatusRunning }

type ComponentHealth struct {
	Name    string
	Healthy bool
	Error   error
}

// Component is one piece of the chat desk owned by the Daemon. Init runs in
// dependency order, Start in registration order, Stop in reverse.
type Component interface {
	Name() string
	Dependencies() []string
	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) (*ComponentHealth, error)
}

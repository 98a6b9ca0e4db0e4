package instance

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"

	"github.com/gofrs/flock"
)

// Lock guarantees at most one chatdesk daemon per lock path.
type Lock struct {
	fileLock   *flock.Flock
	lockPath   string
	acquiredAt time.Time
	mu         sync.RWMutex
}

type LockConfig struct {
	Timeout time.Duration
	Retry   time.Duration
}

func DefaultLockConfig() *LockConfig {
	return &LockConfig{
		Timeout: 2 * time.Second,
		Retry:   100 * time.Millisecond,
	}
}

func AcquireLock(ctx context.Context, lockPath string, cfg *LockConfig) (*Lock, error) {
	if cfg == nil {
		cfg = DefaultLockConfig()
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	fileLock := flock.New(lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, cfg.Retry)
	if err != nil && lockCtx.Err() == nil {
		return nil, fmt.Errorf("failed to attempt lock: %w", err)
	}
	if !locked {
		return nil, chatdeskErrors.Conflict(fmt.Sprintf("chatdesk is already running (lock %s held, waited %v)", lockPath, cfg.Timeout))
	}

	l := &Lock{
		fileLock:   fileLock,
		lockPath:   lockPath,
		acquiredAt: time.Now(),
	}
	slog.Info("Instance lock acquired",
		"path", lockPath,
		"acquired_at", l.acquiredAt.Format(time.RFC3339Nano),
	)
	return l, nil
}

func (l *Lock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLock == nil {
		slog.Warn("Instance lock already released", "path", l.lockPath)
		return
	}

	heldDuration := time.Since(l.acquiredAt)
	if err := l.fileLock.Unlock(); err != nil {
		slog.Error("Failed to release instance lock", "path", l.lockPath, "error", err)
	} else {
		slog.Info("Instance lock released", "path", l.lockPath, "held_duration_ms", heldDuration.Milliseconds())
	}

	l.fileLock = nil
}

func (l *Lock) IsLocked() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fileLock != nil
}

func (l *Lock) Path() string { return l.lockPath }

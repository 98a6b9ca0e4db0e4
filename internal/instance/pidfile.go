package instance

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

// WritePIDFile atomically replaces path with the current process id.
func WritePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create pid dir: %w", err)
	}
	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write pid file %s: %w", path, err)
	}
	return nil
}

func ReadPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pid file %s: %w", path, err)
	}
	return pid, nil
}

// RemovePIDFile deletes path if it still names this process.
func RemovePIDFile(path string) {
	pid, err := ReadPIDFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read pid file", "path", path, "error", err)
		}
		return
	}
	if pid != os.Getpid() {
		slog.Warn("PID file belongs to another process, leaving it", "path", path, "pid", pid)
		return
	}
	if err := os.Remove(path); err != nil {
		slog.Error("Failed to remove pid file", "path", path, "error", err)
	}
}

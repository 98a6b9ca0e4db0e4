package concurrency

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
)

// SafeGo runs a function in a goroutine with panic recovery.
func SafeGo(fn func(), onPanic func(interface{})) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				slog.Error("Panic recovered", "panic", r, "stack", string(stack))
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		fn()
	}()
}

// SafeRun calls fn on the current goroutine and converts a panic into an ErrInternal error.
func SafeRun(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered", "routine", name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%s panicked: %v: %w", name, r, chatdeskErrors.ErrInternal)
		}
	}()
	return fn()
}

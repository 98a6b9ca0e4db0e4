// Package queue implements the bounded intake lanes sessions are pushed to on admission.
package queue

import (
	"context"

	"github.com/google/uuid"
)

// Intake is a fixed-capacity FIFO of session ids. TryEnqueue never blocks and
// refuses the newest item when the lane is full.
type Intake struct {
	name  string
	items chan uuid.UUID
}

func NewIntake(name string, capacity int) *Intake {
	if capacity < 0 {
		capacity = 0
	}
	return &Intake{name: name, items: make(chan uuid.UUID, capacity)}
}

func (q *Intake) Name() string { return q.name }

func (q *Intake) TryEnqueue(id uuid.UUID) bool {
	select {
	case q.items <- id:
		return true
	default:
		return false
	}
}

// Dequeue blocks until an item is available or ctx is done.
func (q *Intake) Dequeue(ctx context.Context) (uuid.UUID, error) {
	select {
	case id := <-q.items:
		return id, nil
	case <-ctx.Done():
		return uuid.Nil, ctx.Err()
	}
}

// Drain removes every queued item without blocking and returns them oldest first.
func (q *Intake) Drain() []uuid.UUID {
	var out []uuid.UUID
	for {
		select {
		case id := <-q.items:
			out = append(out, id)
		default:
			return out
		}
	}
}

func (q *Intake) Len() int { return len(q.items) }

func (q *Intake) Cap() int { return cap(q.items) }

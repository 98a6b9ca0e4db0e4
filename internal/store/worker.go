package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	stdatomic "sync/atomic"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/concurrency"
	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/domain"
	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
)

type Request struct {
	Name   string
	Fn     func(*Tx) error
	Result chan error
}

// Worker is the single writer of record for sessions and agents. Every read
// and write is a Request served in order on one goroutine.
type Worker struct {
	inbox    chan Request
	quit     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  stdatomic.Bool
	served   stdatomic.Uint64

	sessions *SessionStore
	agents   *AgentStore
}

type RuntimeConfig struct {
	InboxSize int
}

func NewWorker(runtimeCfg RuntimeConfig) *Worker {
	if runtimeCfg.InboxSize <= 0 {
		runtimeCfg.InboxSize = config.DefaultStoreInboxSize
	}

	return &Worker{
		inbox:    make(chan Request, runtimeCfg.InboxSize),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
		sessions: newSessionStore(),
		agents:   newAgentStore(),
	}
}

func (w *Worker) Start() {
	w.running.Store(true)
	w.wg.Add(1)
	go w.loop()
}

func (w *Worker) loop() {
	slog.Info("StoreWorker started", "inbox_size", cap(w.inbox))
	defer func() {
		w.running.Store(false)
		close(w.stopped)
		w.wg.Done()
	}()

	for {
		select {
		case req := <-w.inbox:
			w.serve(req)
		case <-w.quit:
			// Answer whatever was accepted before stop.
			for {
				select {
				case req := <-w.inbox:
					w.serve(req)
				default:
					slog.Info("StoreWorker stopping", "served", w.served.Load())
					return
				}
			}
		}
	}
}

func (w *Worker) serve(req Request) {
	tx := &Tx{sessions: w.sessions, agents: w.agents}
	err := concurrency.SafeRun("store."+req.Name, func() error {
		return req.Fn(tx)
	})
	w.served.Add(1)
	if req.Result != nil {
		req.Result <- err
	}
}

// Do runs fn on the worker goroutine. No other request observes the stores
// while fn runs, so compound read-modify-write sequences are atomic.
func (w *Worker) Do(ctx context.Context, name string, fn func(*Tx) error) error {
	if fn == nil {
		return chatdeskErrors.InvalidInput("nil store callback")
	}
	if !w.running.Load() {
		return fmt.Errorf("store %s: %w", name, chatdeskErrors.ErrStopped)
	}

	req := Request{Name: name, Fn: fn, Result: make(chan error, 1)}
	select {
	case w.inbox <- req:
	case <-w.quit:
		return fmt.Errorf("store %s: %w", name, chatdeskErrors.ErrStopped)
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.Result:
		return err
	case <-w.stopped:
		select {
		case err := <-req.Result:
			return err
		default:
			return fmt.Errorf("store %s: %w", name, chatdeskErrors.ErrStopped)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) InsertSession(ctx context.Context, sess *domain.Session) error {
	c := sess.Clone()
	return w.Do(ctx, "insert_session", func(tx *Tx) error {
		return tx.InsertSession(c)
	})
}

// Session returns a copy of the session with id.
func (w *Worker) Session(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var out *domain.Session
	err := w.Do(ctx, "get_session", func(tx *Tx) error {
		sess, err := tx.Session(id)
		if err != nil {
			return err
		}
		out = sess.Clone()
		return nil
	})
	return out, err
}

// Sessions returns copies of every session ordered by creation time.
func (w *Worker) Sessions(ctx context.Context) ([]*domain.Session, error) {
	var out []*domain.Session
	err := w.Do(ctx, "list_sessions", func(tx *Tx) error {
		live := tx.Sessions()
		out = make([]*domain.Session, 0, len(live))
		for _, s := range live {
			out = append(out, s.Clone())
		}
		return nil
	})
	return out, err
}

func (w *Worker) ReplaceSession(ctx context.Context, sess *domain.Session) error {
	c := sess.Clone()
	return w.Do(ctx, "replace_session", func(tx *Tx) error {
		return tx.ReplaceSession(c)
	})
}

func (w *Worker) InsertAgent(ctx context.Context, a *domain.Agent) error {
	c := a.Clone()
	return w.Do(ctx, "insert_agent", func(tx *Tx) error {
		return tx.InsertAgent(c)
	})
}

func (w *Worker) Agent(ctx context.Context, id uuid.UUID) (*domain.Agent, error) {
	var out *domain.Agent
	err := w.Do(ctx, "get_agent", func(tx *Tx) error {
		a, err := tx.Agent(id)
		if err != nil {
			return err
		}
		out = a.Clone()
		return nil
	})
	return out, err
}

// Agents returns copies of every agent in onboarding order.
func (w *Worker) Agents(ctx context.Context) ([]*domain.Agent, error) {
	var out []*domain.Agent
	err := w.Do(ctx, "list_agents", func(tx *Tx) error {
		live := tx.Agents()
		out = make([]*domain.Agent, 0, len(live))
		for _, a := range live {
			out = append(out, a.Clone())
		}
		return nil
	})
	return out, err
}

func (w *Worker) ReplaceAgent(ctx context.Context, a *domain.Agent) error {
	c := a.Clone()
	return w.Do(ctx, "replace_agent", func(tx *Tx) error {
		return tx.ReplaceAgent(c)
	})
}

// Counts reports how many sessions and agents the stores hold.
func (w *Worker) Counts(ctx context.Context) (sessions int, agents int, err error) {
	err = w.Do(ctx, "counts", func(tx *Tx) error {
		sessions = tx.sessions.len()
		agents = tx.agents.len()
		return nil
	})
	return sessions, agents, err
}

func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		slog.Info("StoreWorker Stop called")
		close(w.quit)
	})
	w.wg.Wait()
}

func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

func (w *Worker) InboxDepth() int {
	return len(w.inbox)
}

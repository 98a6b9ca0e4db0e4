// Package admission decides whether a new chat session is accepted and into which lane.
package admission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/logger"
	"github.com/harunnryd/chatdesk/internal/metrics"
	"github.com/harunnryd/chatdesk/internal/queue"
	"github.com/harunnryd/chatdesk/internal/store"
)

const (
	StatusOK       = "OK"
	StatusRejected = "Rejected"
)

const (
	reasonCapacity  = "capacity"
	reasonQueueFull = "queue_full"
)

type Result struct {
	Accepted  bool
	SessionID uuid.UUID
	Status    string
	Team      *domain.Team
}

type Engine struct {
	store     *store.Worker
	clock     clock.Clock
	evaluator Evaluator
	main      *queue.Intake
	overflow  *queue.Intake
	newID     func() uuid.UUID
}

func NewEngine(st *store.Worker, clk clock.Clock, evaluator Evaluator, main, overflow *queue.Intake) *Engine {
	return &Engine{
		store:     st,
		clock:     clk,
		evaluator: evaluator,
		main:      main,
		overflow:  overflow,
		newID:     uuid.New,
	}
}

// CreateSession admits or rejects one new session. The decision and the write
// happen in a single store transaction, so concurrent callers never admit past
// the depth limit together.
func (e *Engine) CreateSession(ctx context.Context) (Result, error) {
	var (
		result Result
		reason string
	)

	err := e.store.Do(ctx, "admit_session", func(tx *store.Tx) error {
		now := e.clock.Now()
		assessment := e.evaluator.Evaluate(now, tx.Agents(), tx.Sessions())

		sess := &domain.Session{ID: e.newID(), CreatedAt: now}
		team, ok := assessment.Target()
		if !ok {
			sess.Status = domain.StatusRejected
			if err := tx.InsertSession(sess); err != nil {
				return err
			}
			result = Result{SessionID: sess.ID, Status: StatusRejected}
			reason = reasonCapacity
			return nil
		}

		sess.Status = domain.StatusQueued
		sess.AssignedTeam = &team
		if err := tx.InsertSession(sess); err != nil {
			return err
		}

		if !e.laneFor(team).TryEnqueue(sess.ID) {
			// The lane keeps its team so the record shows where it was headed.
			sess.Status = domain.StatusRejected
			result = Result{SessionID: sess.ID, Status: StatusRejected}
			reason = reasonQueueFull
			return nil
		}

		result = Result{Accepted: true, SessionID: sess.ID, Status: StatusOK, Team: &team}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("create session: %w", err)
	}

	log := logger.FromContext(logger.WithChatID(ctx, result.SessionID.String()))
	if result.Accepted {
		metrics.SessionsAdmitted.WithLabelValues(string(*result.Team)).Inc()
		log.Info("Session admitted", "team", *result.Team)
	} else {
		metrics.SessionsRejected.WithLabelValues(reason).Inc()
		log.Info("Session rejected", "reason", reason)
	}
	e.observeDepth()
	return result, nil
}

func (e *Engine) laneFor(team domain.Team) *queue.Intake {
	if team == domain.TeamOverflow {
		return e.overflow
	}
	return e.main
}

func (e *Engine) observeDepth() {
	metrics.IntakeDepth.WithLabelValues(e.main.Name()).Set(float64(e.main.Len()))
	metrics.IntakeDepth.WithLabelValues(e.overflow.Name()).Set(float64(e.overflow.Len()))
}

func (e *Engine) Evaluator() Evaluator { return e.evaluator }

func (e *Engine) MainIntake() *queue.Intake     { return e.main }
func (e *Engine) OverflowIntake() *queue.Intake { return e.overflow }

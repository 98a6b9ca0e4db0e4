package desk

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/admission"
	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/domain"
	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
	"github.com/harunnryd/chatdesk/internal/policy"
	"github.com/harunnryd/chatdesk/internal/queue"
	"github.com/harunnryd/chatdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, overrides admission.Overrides, agents ...*domain.Agent) (*Service, *store.Worker, *clock.Fake) {
	t.Helper()
	st := store.NewWorker(store.RuntimeConfig{})
	st.Start()
	t.Cleanup(st.Stop)
	for _, a := range agents {
		require.NoError(t, st.InsertAgent(context.Background(), a))
	}

	hours, err := policy.NewOfficeHours("09:00", "18:00", "UTC")
	require.NoError(t, err)
	clk := clock.NewFake(time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC))
	ev := admission.Evaluator{Router: policy.NewTeamRouter(hours, domain.TeamA, domain.TeamC), Overrides: overrides}
	engine := admission.NewEngine(st, clk, ev, queue.NewIntake("main", 10), queue.NewIntake("overflow", 5))
	return NewService(st, clk, engine), st, clk
}

func TestPollTransitionsAssignedToActiveOnce(t *testing.T) {
	svc, st, clk := newService(t, admission.Overrides{})
	ctx := context.Background()

	team := domain.TeamA
	agentID := uuid.New()
	sess := &domain.Session{ID: uuid.New(), CreatedAt: clk.Now(), Status: domain.StatusAssigned, AssignedTeam: &team, AssignedAgentID: &agentID}
	require.NoError(t, st.InsertSession(ctx, sess))

	first := clk.Advance(time.Second)
	got, err := svc.PollSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	require.NotNil(t, got.LastPollAt)
	assert.Equal(t, first, *got.LastPollAt)

	second := clk.Advance(time.Second)
	got, err = svc.PollSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Equal(t, second, *got.LastPollAt)

	stored, err := svc.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, stored.Status)
}

func TestPollLeavesQueuedAndRejectedStatus(t *testing.T) {
	svc, st, clk := newService(t, admission.Overrides{})
	ctx := context.Background()

	for _, status := range []domain.Status{domain.StatusQueued, domain.StatusRejected, domain.StatusInactive} {
		sess := &domain.Session{ID: uuid.New(), CreatedAt: clk.Now(), Status: status}
		require.NoError(t, st.InsertSession(ctx, sess))

		got, err := svc.PollSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
		assert.NotNil(t, got.LastPollAt)
	}
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	svc, _, _ := newService(t, admission.Overrides{})
	ctx := context.Background()

	_, err := svc.Session(ctx, uuid.New())
	assert.ErrorIs(t, err, chatdeskErrors.ErrNotFound)

	_, err = svc.PollSession(ctx, uuid.New())
	assert.ErrorIs(t, err, chatdeskErrors.ErrNotFound)
}

func TestStatsReflectCapacity(t *testing.T) {
	svc, _, _ := newService(t, admission.Overrides{MainMaxQueue: 2},
		&domain.Agent{ID: uuid.New(), Team: domain.TeamA, Seniority: domain.Mid, Accepting: true, CurrentLoad: 1},
		&domain.Agent{ID: uuid.New(), Team: domain.TeamA, Seniority: domain.Junior, Accepting: false},
		&domain.Agent{ID: uuid.New(), Team: domain.TeamOverflow, Seniority: domain.Junior},
	)
	ctx := context.Background()

	res, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.BusinessHours)
	assert.Equal(t, domain.TeamA, stats.MainTeam)
	assert.True(t, stats.MainHasRoom)
	assert.False(t, stats.OverflowEnabled)
	assert.Equal(t, 1, stats.Sessions[domain.StatusQueued])

	require.Len(t, stats.Teams, 4)
	teamA := stats.Teams[0]
	assert.Equal(t, domain.TeamA, teamA.Team)
	assert.Equal(t, 2, teamA.Agents)
	assert.Equal(t, 1, teamA.Accepting)
	assert.Equal(t, 1, teamA.Load)
	assert.Equal(t, 6, teamA.Capacity)
	assert.Equal(t, 2, teamA.MaxDepth)
	assert.Equal(t, 1, teamA.Backlog)

	overflow := stats.Teams[3]
	assert.Equal(t, 0, overflow.Capacity)
	assert.Equal(t, 0, overflow.MaxDepth)

	require.Len(t, stats.Lanes, 2)
	assert.Equal(t, LaneStats{Name: "main", Depth: 1, Cap: 10}, stats.Lanes[0])
	assert.Equal(t, LaneStats{Name: "overflow", Depth: 0, Cap: 5}, stats.Lanes[1])

	agents, err := svc.Agents(ctx)
	require.NoError(t, err)
	assert.Len(t, agents, 3)
}

package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/policy"
	"github.com/harunnryd/chatdesk/internal/queue"
	"github.com/harunnryd/chatdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noon = time.Date(2026, 4, 6, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *store.Worker
	clock    *clock.Fake
	engine   *Engine
	main     *queue.Intake
	overflow *queue.Intake
}

func newFixture(t *testing.T, overrides Overrides, mainCap int, agents ...*domain.Agent) *fixture {
	t.Helper()
	st := store.NewWorker(store.RuntimeConfig{})
	st.Start()
	t.Cleanup(st.Stop)

	for _, a := range agents {
		require.NoError(t, st.InsertAgent(context.Background(), a))
	}

	hours, err := policy.NewOfficeHours("09:00", "18:00", "UTC")
	require.NoError(t, err)
	ev := Evaluator{Router: policy.NewTeamRouter(hours, domain.TeamA, domain.TeamC), Overrides: overrides}

	clk := clock.NewFake(noon)
	main := queue.NewIntake("main", mainCap)
	overflow := queue.NewIntake("overflow", 10)
	return &fixture{store: st, clock: clk, engine: NewEngine(st, clk, ev, main, overflow), main: main, overflow: overflow}
}

func newAgent(team domain.Team, tier domain.Seniority, accepting bool) *domain.Agent {
	return &domain.Agent{ID: uuid.New(), Team: team, Seniority: tier, Accepting: accepting}
}

func TestCreateSessionAdmitsToMainTeam(t *testing.T) {
	f := newFixture(t, Overrides{}, 10, newAgent(domain.TeamA, domain.Mid, true))
	ctx := context.Background()

	res, err := f.engine.CreateSession(ctx)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, StatusOK, res.Status)
	require.NotNil(t, res.Team)
	assert.Equal(t, domain.TeamA, *res.Team)

	sess, err := f.store.Session(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, sess.Status)
	assert.Equal(t, domain.TeamA, *sess.AssignedTeam)
	assert.Equal(t, noon, sess.CreatedAt)
	assert.Equal(t, 1, f.main.Len())
}

func TestCreateSessionRoutesToNightTeam(t *testing.T) {
	f := newFixture(t, Overrides{}, 10,
		newAgent(domain.TeamA, domain.Mid, true),
		newAgent(domain.TeamC, domain.Mid, true),
	)
	f.clock.Set(time.Date(2026, 4, 6, 22, 0, 0, 0, time.UTC))

	res, err := f.engine.CreateSession(context.Background())
	require.NoError(t, err)
	require.True(t, res.Accepted)
	assert.Equal(t, domain.TeamC, *res.Team)
}

func TestCreateSessionRejectsWhenNoCapacity(t *testing.T) {
	// Main team has nobody accepting, so capacity and depth are zero.
	f := newFixture(t, Overrides{}, 10, newAgent(domain.TeamA, domain.Mid, false))
	ctx := context.Background()

	res, err := f.engine.CreateSession(ctx)
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, StatusRejected, res.Status)
	assert.Nil(t, res.Team)

	sess, err := f.store.Session(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, sess.Status)
	assert.Nil(t, sess.AssignedTeam)
	assert.Equal(t, 0, f.main.Len())
}

func TestCreateSessionRejectsWhenIntakeFull(t *testing.T) {
	f := newFixture(t, Overrides{}, 1, newAgent(domain.TeamA, domain.Mid, true))
	ctx := context.Background()

	first, err := f.engine.CreateSession(ctx)
	require.NoError(t, err)
	require.True(t, first.Accepted)

	second, err := f.engine.CreateSession(ctx)
	require.NoError(t, err)
	assert.False(t, second.Accepted)
	assert.Nil(t, second.Team)

	sess, err := f.store.Session(ctx, second.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, sess.Status)
	require.NotNil(t, sess.AssignedTeam)
	assert.Equal(t, domain.TeamA, *sess.AssignedTeam)
}

func TestCreateSessionUsesOverflowWhenEnabled(t *testing.T) {
	overflowAgent := newAgent(domain.TeamOverflow, domain.Junior, true)
	f := newFixture(t, Overrides{ForceBusinessHours: true, MainMaxQueue: 1}, 10,
		newAgent(domain.TeamA, domain.Mid, true),
		overflowAgent,
	)
	ctx := context.Background()

	first, err := f.engine.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamA, *first.Team)

	second, err := f.engine.CreateSession(ctx)
	require.NoError(t, err)
	require.True(t, second.Accepted)
	assert.Equal(t, domain.TeamOverflow, *second.Team)
	assert.Equal(t, 1, f.overflow.Len())
}

func TestOverflowIgnoredOutsideBusinessHours(t *testing.T) {
	f := newFixture(t, Overrides{MainMaxQueue: 1}, 10,
		newAgent(domain.TeamC, domain.Mid, true),
		newAgent(domain.TeamOverflow, domain.Junior, true),
	)
	f.clock.Set(time.Date(2026, 4, 6, 2, 0, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := f.engine.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamC, *first.Team)

	second, err := f.engine.CreateSession(ctx)
	require.NoError(t, err)
	assert.False(t, second.Accepted)
}

func TestConcurrentAdmissionNeverExceedsDepth(t *testing.T) {
	// One Junior: capacity 4, depth 6.
	f := newFixture(t, Overrides{}, 100, newAgent(domain.TeamA, domain.Junior, true))
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.engine.CreateSession(ctx)
			if err == nil && res.Accepted {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 6, accepted)
}

func TestAssessmentTargetAndTrigger(t *testing.T) {
	hours, err := policy.NewOfficeHours("09:00", "18:00", "UTC")
	require.NoError(t, err)
	ev := Evaluator{Router: policy.NewTeamRouter(hours, domain.TeamA, domain.TeamC), Overrides: Overrides{MainMaxQueue: 2}}

	team := domain.TeamA
	sessions := []*domain.Session{
		{Status: domain.StatusAssigned, AssignedTeam: &team},
		{Status: domain.StatusActive, AssignedTeam: &team},
	}
	agents := []*domain.Agent{newAgent(domain.TeamA, domain.Mid, true)}

	a := ev.Evaluate(noon, agents, sessions)
	assert.True(t, a.BusinessHours)
	assert.Equal(t, 2, a.Main.Backlog)
	assert.Equal(t, 2, a.Main.MaxDepth)
	assert.True(t, a.ShouldEnableOverflow())
	assert.False(t, a.OverflowEnabled)
	_, ok := a.Target()
	assert.False(t, ok)

	night := ev.Evaluate(time.Date(2026, 4, 6, 20, 0, 0, 0, time.UTC), agents, sessions)
	assert.Equal(t, domain.TeamC, night.MainTeam)
	assert.False(t, night.ShouldEnableOverflow())
}

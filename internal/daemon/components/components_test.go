package components

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/domain"
)

func engineConfig() *config.Config {
	return &config.Config{
		OfficeHours: config.OfficeHoursConfig{Start: "09:00", End: "18:00", Timezone: "UTC"},
		Routing:     config.RoutingConfig{DayTeam: "TeamA", NightTeam: "TeamC"},
		Dispatcher:  config.DispatcherConfig{TickInterval: "10ms"},
		Inactivity:  config.InactivityConfig{TickInterval: "10ms", Threshold: "3s"},
		Shift:       config.ShiftConfig{TickInterval: "10ms"},
		Overflow:    config.OverflowConfig{TickInterval: "10ms"},
		Roster: config.RosterConfig{Teams: []config.RosterTeam{
			{Team: "TeamA", Agents: []config.RosterAgent{{Seniority: "Mid", Count: 1}}},
			{Team: "Overflow", Agents: []config.RosterAgent{{Seniority: "Junior", Count: 2}}},
		}},
	}
}

func TestComponentsWireEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := engineConfig()
	clk := clock.NewFake(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))

	storeComp := NewStoreComponent(&cfg.Store)
	rosterComp := NewRosterComponent(&cfg.Roster, storeComp, clk)
	engineComp := NewEngineComponent(cfg, storeComp, clk)
	schedComp := NewSchedulerComponent(cfg, engineComp)

	require.NoError(t, storeComp.Init(ctx))
	require.NoError(t, rosterComp.Init(ctx))
	require.NoError(t, engineComp.Init(ctx))
	require.NoError(t, schedComp.Init(ctx))

	require.NoError(t, storeComp.Start(ctx))
	t.Cleanup(func() { _ = storeComp.Stop(ctx) })
	require.NoError(t, rosterComp.Start(ctx))
	require.NoError(t, engineComp.Start(ctx))
	require.NoError(t, schedComp.Start(ctx))
	t.Cleanup(func() { _ = schedComp.Stop(ctx) })

	assert.Equal(t, 3, rosterComp.Seeded())
	assert.Len(t, engineComp.Jobs(), 4)

	svc := engineComp.Service()
	res, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	assert.Equal(t, domain.TeamA, *res.Team)

	require.Eventually(t, func() bool {
		sess, err := svc.Session(ctx, res.SessionID)
		return err == nil && sess.Status == domain.StatusAssigned
	}, 2*time.Second, 10*time.Millisecond)

	var names []string
	for _, st := range schedComp.GetScheduler().Status() {
		names = append(names, st.Name)
	}
	assert.ElementsMatch(t, []string{"dispatcher", "inactivity", "shift", "overflow"}, names)

	h, err := schedComp.Health(ctx)
	require.NoError(t, err)
	assert.True(t, h.Healthy, "scheduler: %v", h.Error)
	h, err = engineComp.Health(ctx)
	require.NoError(t, err)
	assert.True(t, h.Healthy)
}

func TestEngineComponentRejectsBadConfig(t *testing.T) {
	ctx := context.Background()
	cfg := engineConfig()
	cfg.Routing.DayTeam = "TeamZ"

	storeComp := NewStoreComponent(&cfg.Store)
	require.NoError(t, storeComp.Init(ctx))
	engineComp := NewEngineComponent(cfg, storeComp, clock.System{})
	assert.Error(t, engineComp.Init(ctx))

	cfg = engineConfig()
	cfg.Inactivity.Threshold = "soon"
	engineComp = NewEngineComponent(cfg, storeComp, clock.System{})
	assert.Error(t, engineComp.Init(ctx))

	cfg = engineConfig()
	cfg.Dispatcher.TickInterval = "0s"
	engineComp = NewEngineComponent(cfg, storeComp, clock.System{})
	assert.ErrorContains(t, engineComp.Init(ctx), "dispatcher.tick_interval")

	assert.Empty(t, engineComp.Jobs())
	assert.Error(t, NewSchedulerComponent(cfg, engineComp).Init(ctx))
}

func TestRosterComponentRejectsBadRoster(t *testing.T) {
	cfg := &config.RosterConfig{Teams: []config.RosterTeam{{Team: "TeamA", ShiftCron: "not a cron"}}}
	comp := NewRosterComponent(cfg, NewStoreComponent(nil), clock.System{})
	assert.Error(t, comp.Init(context.Background()))

	h, err := comp.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, h.Healthy)
}

func TestStoreComponentLifecycle(t *testing.T) {
	ctx := context.Background()
	comp := NewStoreComponent(&config.StoreConfig{InboxSize: 4})

	h, _ := comp.Health(ctx)
	assert.False(t, h.Healthy)
	assert.Error(t, comp.Start(ctx))

	require.NoError(t, comp.Init(ctx))
	require.NoError(t, comp.Start(ctx))
	h, _ = comp.Health(ctx)
	assert.True(t, h.Healthy)

	require.NoError(t, comp.Stop(ctx))
	h, _ = comp.Health(ctx)
	assert.False(t, h.Healthy)
	require.NoError(t, comp.Stop(ctx))
}

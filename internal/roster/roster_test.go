package roster

import (
	"context"
	"testing"
	"time"

	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/domain"
	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
	"github.com/harunnryd/chatdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 8, 12, 10, 30, 0, 0, time.Local)

func TestDefaultRosterMatchesSeed(t *testing.T) {
	plans, err := FromConfig(config.RosterConfig{})
	require.NoError(t, err)

	agents := Build(plans, now)
	require.Len(t, agents, 16)

	counts := map[domain.Team]int{}
	for _, a := range agents {
		counts[a.Team]++
		assert.Equal(t, now.Add(-time.Hour), a.ShiftStart)
		assert.Equal(t, now.Add(7*time.Hour), a.ShiftEnd)
		if a.Team == domain.TeamOverflow {
			assert.False(t, a.Accepting, a.Name)
			assert.Equal(t, domain.Junior, a.Seniority)
		} else {
			assert.True(t, a.Accepting, a.Name)
		}
	}
	assert.Equal(t, map[domain.Team]int{domain.TeamA: 4, domain.TeamB: 4, domain.TeamC: 2, domain.TeamOverflow: 6}, counts)
	assert.Equal(t, "TeamA-Lead-1", agents[0].Name)
}

func TestShiftWindowFromCron(t *testing.T) {
	plans, err := FromConfig(config.RosterConfig{Teams: []config.RosterTeam{
		{Team: "TeamA", ShiftCron: "0 9 * * *", ShiftLength: "9h", Agents: []config.RosterAgent{{Seniority: "Mid", Count: 1}}},
		{Team: "TeamC", ShiftCron: "0 22 * * *", ShiftLength: "8h", Agents: []config.RosterAgent{{Seniority: "Mid", Count: 2}}},
	}})
	require.NoError(t, err)

	start, end := plans[0].ShiftWindow(now)
	assert.WithinDuration(t, time.Date(2026, 8, 12, 9, 0, 0, 0, time.Local), start, 0)
	assert.WithinDuration(t, time.Date(2026, 8, 12, 18, 0, 0, 0, time.Local), end, 0)

	// Night shift has not started yet, so the next one is used.
	start, end = plans[1].ShiftWindow(now)
	assert.WithinDuration(t, time.Date(2026, 8, 12, 22, 0, 0, 0, time.Local), start, 0)
	assert.WithinDuration(t, start.Add(8*time.Hour), end, 0)

	agents := Build(plans, now)
	require.Len(t, agents, 3)
	assert.True(t, agents[0].Accepting)
	assert.False(t, agents[1].Accepting)
	assert.False(t, agents[2].Accepting)
}

func TestShiftWindowPicksLatestStart(t *testing.T) {
	plans, err := FromConfig(config.RosterConfig{Teams: []config.RosterTeam{
		{Team: "TeamB", ShiftCron: "0 * * * *", ShiftLength: "3h", Agents: []config.RosterAgent{{Seniority: "Junior", Count: 1}}},
	}})
	require.NoError(t, err)

	start, end := plans[0].ShiftWindow(now)
	assert.WithinDuration(t, time.Date(2026, 8, 12, 10, 0, 0, 0, time.Local), start, 0)
	assert.WithinDuration(t, time.Date(2026, 8, 12, 13, 0, 0, 0, time.Local), end, 0)
}

func TestFromConfigRejectsBadInput(t *testing.T) {
	bad := []config.RosterTeam{
		{Team: "TeamQ"},
		{Team: "TeamA", ShiftCron: "every day"},
		{Team: "TeamA", ShiftLength: "long"},
		{Team: "TeamA", ShiftLength: "-1h"},
		{Team: "TeamA", Agents: []config.RosterAgent{{Seniority: "Intern", Count: 1}}},
		{Team: "TeamA", Agents: []config.RosterAgent{{Seniority: "Mid", Count: -1}}},
	}
	for _, team := range bad {
		_, err := FromConfig(config.RosterConfig{Teams: []config.RosterTeam{team}})
		assert.ErrorIs(t, err, chatdeskErrors.ErrInvalidInput, "%+v", team)
	}
}

func TestSeedInsertsAgents(t *testing.T) {
	st := store.NewWorker(store.RuntimeConfig{})
	st.Start()
	defer st.Stop()

	plans, err := FromConfig(config.RosterConfig{})
	require.NoError(t, err)

	ctx := context.Background()
	seeded, err := Seed(ctx, st, plans, now)
	require.NoError(t, err)

	stored, err := st.Agents(ctx)
	require.NoError(t, err)
	require.Len(t, stored, len(seeded))
	for i := range seeded {
		assert.Equal(t, seeded[i].ID, stored[i].ID)
	}
}

package capacity

import (
	"testing"

	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestMaxConcurrent(t *testing.T) {
	assert.Equal(t, 4, MaxConcurrent(domain.Junior))
	assert.Equal(t, 6, MaxConcurrent(domain.Mid))
	assert.Equal(t, 8, MaxConcurrent(domain.Senior))
	assert.Equal(t, 5, MaxConcurrent(domain.Lead))
	assert.Equal(t, 0, MaxConcurrent(domain.Seniority("Intern")))
}

func TestTeamCapacityIgnoresNonAccepting(t *testing.T) {
	agents := []*domain.Agent{
		{Seniority: domain.Mid, Accepting: true},
		{Seniority: domain.Junior, Accepting: true, CurrentLoad: 4},
		{Seniority: domain.Lead, Accepting: false},
	}
	assert.Equal(t, 10, TeamCapacity(agents))
	assert.Equal(t, 0, TeamCapacity(nil))
}

func TestMaxQueueDepth(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 4: 6, 5: 7, 6: 9, 11: 16, 21: 31}
	for c, want := range cases {
		assert.Equal(t, want, MaxQueueDepth(c), "capacity %d", c)
	}
}

func TestBacklogCountsOnlyLiveStatuses(t *testing.T) {
	a, c := domain.TeamA, domain.TeamC
	sessions := []*domain.Session{
		{Status: domain.StatusQueued, AssignedTeam: &a},
		{Status: domain.StatusAssigned, AssignedTeam: &a},
		{Status: domain.StatusActive, AssignedTeam: &a},
		{Status: domain.StatusInactive, AssignedTeam: &a},
		{Status: domain.StatusRejected, AssignedTeam: &a},
		{Status: domain.StatusClosed, AssignedTeam: &a},
		{Status: domain.StatusQueued, AssignedTeam: &c},
		{Status: domain.StatusRejected},
	}
	assert.Equal(t, 3, Backlog(sessions, domain.TeamA))
	assert.Equal(t, 1, Backlog(sessions, domain.TeamC))
	assert.Equal(t, 0, Backlog(sessions, domain.TeamOverflow))
}

func TestAssessAndRoomIsMonotone(t *testing.T) {
	agents := []*domain.Agent{
		{Team: domain.TeamA, Seniority: domain.Mid, Accepting: true},
		{Team: domain.TeamC, Seniority: domain.Mid, Accepting: true},
	}
	lane := Assess(domain.TeamA, agents, nil, 0)
	assert.Equal(t, 6, lane.Capacity)
	assert.Equal(t, 9, lane.MaxDepth)
	assert.True(t, lane.HasRoom())

	override := Assess(domain.TeamA, agents, nil, 1)
	assert.Equal(t, 1, override.MaxDepth)

	// Room at backlog b implies room at every smaller backlog.
	for b := 0; b <= 12; b++ {
		l := Lane{MaxDepth: 9, Backlog: b}
		if l.HasRoom() {
			for smaller := 0; smaller < b; smaller++ {
				assert.True(t, Lane{MaxDepth: 9, Backlog: smaller}.HasRoom())
			}
		}
		assert.Equal(t, !l.HasRoom(), l.Saturated())
	}
}

// Package capacity converts agent seniority into concurrent-session allowances
// and aggregates them into per-team admission limits.
package capacity

import "github.com/harunnryd/chatdesk/internal/domain"

// baseSessions is the nominal concurrency of a single agent before the tier multiplier.
const baseSessions = 10

// tierPercent holds the tier multipliers as whole percentages so allowances stay exact.
var tierPercent = map[domain.Seniority]int{
	domain.Junior: 40,
	domain.Mid:    60,
	domain.Senior: 80,
	domain.Lead:   50,
}

// MaxConcurrent returns how many sessions one agent of the tier may hold at once.
// Unknown tiers get zero.
func MaxConcurrent(s domain.Seniority) int {
	return baseSessions * tierPercent[s] / 100
}

// TeamCapacity sums the allowance of every accepting agent in agents.
func TeamCapacity(agents []*domain.Agent) int {
	total := 0
	for _, a := range agents {
		if a.Accepting {
			total += MaxConcurrent(a.Seniority)
		}
	}
	return total
}

// MaxQueueDepth is floor(1.5 * capacity).
func MaxQueueDepth(capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return capacity * 3 / 2
}

// Backlog counts sessions of team whose status still occupies capacity.
func Backlog(sessions []*domain.Session, team domain.Team) int {
	n := 0
	for _, s := range sessions {
		if s.AssignedTeam != nil && *s.AssignedTeam == team && s.Status.HoldsBacklog() {
			n++
		}
	}
	return n
}

// OfTeam filters agents down to one team.
func OfTeam(agents []*domain.Agent, team domain.Team) []*domain.Agent {
	out := make([]*domain.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Team == team {
			out = append(out, a)
		}
	}
	return out
}

// Lane is the capacity picture of one team at one instant.
type Lane struct {
	Team     domain.Team
	Capacity int
	MaxDepth int
	Backlog  int
}

// HasRoom is the admission check: backlog strictly below depth.
func (l Lane) HasRoom() bool { return l.Backlog < l.MaxDepth }

// Saturated is the overflow trigger: backlog at or above depth.
func (l Lane) Saturated() bool { return l.Backlog >= l.MaxDepth }

// Assess builds the Lane for team. A positive depthOverride replaces the derived depth.
func Assess(team domain.Team, agents []*domain.Agent, sessions []*domain.Session, depthOverride int) Lane {
	c := TeamCapacity(OfTeam(agents, team))
	depth := MaxQueueDepth(c)
	if depthOverride > 0 {
		depth = depthOverride
	}
	return Lane{
		Team:     team,
		Capacity: c,
		MaxDepth: depth,
		Backlog:  Backlog(sessions, team),
	}
}

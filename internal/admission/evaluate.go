package admission

import (
	"time"

	"github.com/harunnryd/chatdesk/internal/capacity"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/policy"
)

// Overrides are deterministic knobs for tests and tuning.
type Overrides struct {
	ForceBusinessHours bool
	// MainMaxQueue replaces the derived main-lane depth when positive.
	MainMaxQueue int
	// UsePressureForOverflowTrigger is carried through for visibility only;
	// the overflow trigger always uses backlog.
	UsePressureForOverflowTrigger bool
}

// Assessment is the capacity picture both admission and the overflow loop decide on.
type Assessment struct {
	Now             time.Time
	BusinessHours   bool
	MainTeam        domain.Team
	Main            capacity.Lane
	OverflowEnabled bool
	Overflow        capacity.Lane
}

type Evaluator struct {
	Router    *policy.TeamRouter
	Overrides Overrides
}

func (ev Evaluator) Evaluate(now time.Time, agents []*domain.Agent, sessions []*domain.Session) Assessment {
	business := ev.Router.BusinessHours(now, ev.Overrides.ForceBusinessHours)
	mainTeam := ev.Router.SelectMainTeam(now, ev.Overrides.ForceBusinessHours)

	overflowAccepting := false
	for _, a := range agents {
		if a.Team == domain.TeamOverflow && a.Accepting {
			overflowAccepting = true
			break
		}
	}

	return Assessment{
		Now:             now,
		BusinessHours:   business,
		MainTeam:        mainTeam,
		Main:            capacity.Assess(mainTeam, agents, sessions, ev.Overrides.MainMaxQueue),
		OverflowEnabled: business && overflowAccepting,
		Overflow:        capacity.Assess(domain.TeamOverflow, agents, sessions, 0),
	}
}

// Target picks the lane a new session goes to. ok is false when every lane is full.
func (a Assessment) Target() (team domain.Team, ok bool) {
	if a.Main.HasRoom() {
		return a.MainTeam, true
	}
	if a.OverflowEnabled && a.Overflow.HasRoom() {
		return domain.TeamOverflow, true
	}
	return "", false
}

// ShouldEnableOverflow is the overflow loop trigger: business hours with the main lane saturated.
func (a Assessment) ShouldEnableOverflow() bool {
	return a.BusinessHours && a.Main.Saturated()
}

package policy

import (
	"time"

	"github.com/harunnryd/chatdesk/internal/domain"
)

// TeamRouter picks the main team for an instant.
type TeamRouter struct {
	Hours     OfficeHours
	DayTeam   domain.Team
	NightTeam domain.Team
}

func NewTeamRouter(hours OfficeHours, day, night domain.Team) *TeamRouter {
	return &TeamRouter{Hours: hours, DayTeam: day, NightTeam: night}
}

// BusinessHours reports whether now falls in office hours, or force is set.
func (r *TeamRouter) BusinessHours(now time.Time, force bool) bool {
	return force || r.Hours.Contains(now)
}

func (r *TeamRouter) SelectMainTeam(now time.Time, force bool) domain.Team {
	if r.BusinessHours(now, force) {
		return r.DayTeam
	}
	return r.NightTeam
}

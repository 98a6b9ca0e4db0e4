// Package roster turns the configured workforce into seeded agents with shift windows.
package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/domain"
	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
	"github.com/harunnryd/chatdesk/internal/store"

	"github.com/robfig/cron/v3"
)

// Without a shift schedule an agent is treated as one hour into an eight hour shift.
const (
	defaultShiftLead  = time.Hour
	defaultShiftAfter = 7 * time.Hour
)

type AgentPlan struct {
	Seniority domain.Seniority
	Count     int
}

type TeamPlan struct {
	Team        domain.Team
	Schedule    cron.Schedule
	ShiftLength time.Duration
	Agents      []AgentPlan
}

func FromConfig(cfg config.RosterConfig) ([]TeamPlan, error) {
	teams := cfg.Teams
	if len(teams) == 0 {
		teams = config.DefaultRoster()
	}

	plans := make([]TeamPlan, 0, len(teams))
	for _, t := range teams {
		team, err := domain.ParseTeam(t.Team)
		if err != nil {
			return nil, chatdeskErrors.InvalidInput(fmt.Sprintf("roster: %v", err))
		}

		length, err := config.DurationOrDefault(t.ShiftLength, config.DefaultRosterShiftLength)
		if err != nil {
			return nil, chatdeskErrors.InvalidInput(fmt.Sprintf("roster %s shift length: %v", team, err))
		}
		if length <= 0 {
			return nil, chatdeskErrors.InvalidInput(fmt.Sprintf("roster %s shift length must be positive", team))
		}

		plan := TeamPlan{Team: team, ShiftLength: length}
		if spec := strings.TrimSpace(t.ShiftCron); spec != "" {
			schedule, err := cron.ParseStandard(spec)
			if err != nil {
				return nil, chatdeskErrors.InvalidInput(fmt.Sprintf("roster %s shift cron %q: %v", team, spec, err))
			}
			plan.Schedule = schedule
		}

		for _, a := range t.Agents {
			tier, err := domain.ParseSeniority(a.Seniority)
			if err != nil {
				return nil, chatdeskErrors.InvalidInput(fmt.Sprintf("roster %s: %v", team, err))
			}
			if a.Count < 0 {
				return nil, chatdeskErrors.InvalidInput(fmt.Sprintf("roster %s %s count is negative", team, tier))
			}
			plan.Agents = append(plan.Agents, AgentPlan{Seniority: tier, Count: a.Count})
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// ShiftWindow returns the shift in progress at now, or the next one to start.
func (p TeamPlan) ShiftWindow(now time.Time) (start, end time.Time) {
	if p.Schedule == nil {
		return now.Add(-defaultShiftLead), now.Add(defaultShiftAfter)
	}

	var current time.Time
	next := p.Schedule.Next(now.Add(-p.ShiftLength))
	for !next.IsZero() && !next.After(now) {
		current = next
		next = p.Schedule.Next(next)
	}
	if !current.IsZero() {
		return current, current.Add(p.ShiftLength)
	}
	return next, next.Add(p.ShiftLength)
}

// Build creates agents for every plan. Overflow agents never start accepting;
// the overflow loop owns that flag.
func Build(plans []TeamPlan, now time.Time) []*domain.Agent {
	var agents []*domain.Agent
	for _, p := range plans {
		start, end := p.ShiftWindow(now)
		onShift := !now.Before(start) && now.Before(end)
		seq := 0
		for _, ap := range p.Agents {
			for i := 0; i < ap.Count; i++ {
				seq++
				agents = append(agents, &domain.Agent{
					ID:         uuid.New(),
					Name:       fmt.Sprintf("%s-%s-%d", p.Team, ap.Seniority, seq),
					Team:       p.Team,
					Seniority:  ap.Seniority,
					ShiftStart: start,
					ShiftEnd:   end,
					Accepting:  onShift && p.Team != domain.TeamOverflow,
				})
			}
		}
	}
	return agents
}

// Seed inserts the built agents in one transaction.
func Seed(ctx context.Context, st *store.Worker, plans []TeamPlan, now time.Time) ([]*domain.Agent, error) {
	agents := Build(plans, now)
	err := st.Do(ctx, "seed_roster", func(tx *store.Tx) error {
		for _, a := range agents {
			if err := tx.InsertAgent(a.Clone()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed roster: %w", err)
	}

	for _, p := range plans {
		start, end := p.ShiftWindow(now)
		slog.Info("Roster team seeded",
			"team", p.Team,
			"agents", countAgents(p),
			"shift_start", start.Format(time.RFC3339),
			"shift_end", end.Format(time.RFC3339),
		)
	}
	return agents, nil
}

func countAgents(p TeamPlan) int {
	n := 0
	for _, a := range p.Agents {
		n += a.Count
	}
	return n
}

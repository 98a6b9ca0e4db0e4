// Package assign picks the agent that receives the next chat.
package assign

import (
	"sync"

	"github.com/harunnryd/chatdesk/internal/capacity"
	"github.com/harunnryd/chatdesk/internal/domain"
)

type tierKey struct {
	team domain.Team
	tier domain.Seniority
}

// RoundRobin rotates picks within each (team, tier). Tiers are tried
// cheapest first and a later tier is used only when every earlier one is full.
//
// The offset indexes whatever agents are available at call time, so
// rotation is fair over positions rather than over agent identity.
type RoundRobin struct {
	mu      sync.Mutex
	offsets map[tierKey]int
}

func NewRoundRobin() *RoundRobin {
	return &RoundRobin{offsets: make(map[tierKey]int)}
}

// Next returns the next available agent of team, or nil when none has room.
// The returned pointer is an element of agents.
func (r *RoundRobin) Next(agents []*domain.Agent, team domain.Team) *domain.Agent {
	for _, tier := range domain.Tiers {
		available := availableInTier(agents, team, tier)
		if len(available) == 0 {
			continue
		}

		key := tierKey{team: team, tier: tier}
		r.mu.Lock()
		idx := r.offsets[key]
		picked := available[idx%len(available)]
		r.offsets[key] = (idx + 1) % len(available)
		r.mu.Unlock()
		return picked
	}
	return nil
}

// Reset forgets every rotation offset.
func (r *RoundRobin) Reset() {
	r.mu.Lock()
	r.offsets = make(map[tierKey]int)
	r.mu.Unlock()
}

func availableInTier(agents []*domain.Agent, team domain.Team, tier domain.Seniority) []*domain.Agent {
	limit := capacity.MaxConcurrent(tier)
	var out []*domain.Agent
	for _, a := range agents {
		if a.Team != team || a.Seniority != tier || !a.Accepting {
			continue
		}
		if a.CurrentLoad < limit {
			out = append(out, a)
		}
	}
	return out
}

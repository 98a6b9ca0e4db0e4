package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Team string

const (
	TeamA        Team = "TeamA"
	TeamB        Team = "TeamB"
	TeamC        Team = "TeamC"
	TeamOverflow Team = "Overflow"
)

// Teams is the fixed order in which the dispatcher visits teams.
var Teams = []Team{TeamA, TeamB, TeamC, TeamOverflow}

func ParseTeam(s string) (Team, error) {
	for _, t := range Teams {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown team %q", s)
}

type Seniority string

const (
	Junior Seniority = "Junior"
	Mid    Seniority = "Mid"
	Senior Seniority = "Senior"
	Lead   Seniority = "Lead"
)

// Tiers lists seniorities in assignment preference order.
var Tiers = []Seniority{Junior, Mid, Senior, Lead}

func ParseSeniority(s string) (Seniority, error) {
	for _, tier := range Tiers {
		if strings.EqualFold(string(tier), strings.TrimSpace(s)) {
			return tier, nil
		}
	}
	return "", fmt.Errorf("unknown seniority %q", s)
}

type Status string

const (
	StatusQueued   Status = "Queued"
	StatusAssigned Status = "Assigned"
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusClosed   Status = "Closed"
	StatusRejected Status = "Rejected"
)

// HoldsBacklog reports whether a session in this status still occupies team capacity.
func (s Status) HoldsBacklog() bool {
	return s == StatusQueued || s == StatusAssigned || s == StatusActive
}

// Reclaimable reports whether the inactivity loop may still act on the session.
func (s Status) Reclaimable() bool {
	return s != StatusClosed && s != StatusRejected && s != StatusInactive
}

type Agent struct {
	ID          uuid.UUID
	Name        string
	Team        Team
	Seniority   Seniority
	ShiftStart  time.Time
	ShiftEnd    time.Time
	Accepting   bool
	CurrentLoad int
}

type Session struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	Status          Status
	AssignedAgentID *uuid.UUID
	AssignedTeam    *Team
	LastPollAt      *time.Time
}

// LastSeen is the last poll time, or creation time for a session never polled.
func (s *Session) LastSeen() time.Time {
	if s.LastPollAt != nil {
		return *s.LastPollAt
	}
	return s.CreatedAt
}

// Clone returns a copy that shares no pointers with s.
func (s *Session) Clone() *Session {
	c := *s
	if s.AssignedAgentID != nil {
		id := *s.AssignedAgentID
		c.AssignedAgentID = &id
	}
	if s.AssignedTeam != nil {
		team := *s.AssignedTeam
		c.AssignedTeam = &team
	}
	if s.LastPollAt != nil {
		at := *s.LastPollAt
		c.LastPollAt = &at
	}
	return &c
}

func (a *Agent) Clone() *Agent {
	c := *a
	return &c
}

// Release gives back one unit of load, never dropping below zero.
func (a *Agent) Release() bool {
	if a.CurrentLoad <= 0 {
		a.CurrentLoad = 0
		return false
	}
	a.CurrentLoad--
	return true
}

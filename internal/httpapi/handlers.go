// Package httpapi exposes the chat desk over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/harunnryd/chatdesk/internal/admission"
	"github.com/harunnryd/chatdesk/internal/capacity"
	"github.com/harunnryd/chatdesk/internal/desk"
	"github.com/harunnryd/chatdesk/internal/domain"
)

// Desk is the part of desk.Service the handlers call.
type Desk interface {
	CreateSession(ctx context.Context) (admission.Result, error)
	Session(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	PollSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Agents(ctx context.Context) ([]*domain.Agent, error)
	Stats(ctx context.Context) (*desk.Stats, error)
}

// ComponentHealth is one entry of the /health report.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type HealthReport struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// HealthFunc reports daemon health. A nil HealthFunc always answers ok.
type HealthFunc func(ctx context.Context) HealthReport

type Handlers struct {
	desk   Desk
	health HealthFunc
}

func NewHandlers(d Desk, health HealthFunc) *Handlers {
	return &Handlers{desk: d, health: health}
}

type CreateChatResponse struct {
	ChatID uuid.UUID    `json:"chatId"`
	Status string       `json:"status"`
	Team   *domain.Team `json:"team,omitempty"`
}

type PollResponse struct {
	ID              uuid.UUID     `json:"id"`
	Status          domain.Status `json:"status"`
	AssignedAgentID *uuid.UUID    `json:"assignedAgentId"`
	AssignedTeam    *domain.Team  `json:"assignedTeam"`
}

type ChatResponse struct {
	PollResponse
	LastPollAt *time.Time `json:"lastPollAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type AgentResponse struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Team          domain.Team      `json:"team"`
	Seniority     domain.Seniority `json:"seniority"`
	ShiftStart    time.Time        `json:"shiftStart"`
	ShiftEnd      time.Time        `json:"shiftEnd"`
	Accepting     bool             `json:"accepting"`
	CurrentLoad   int              `json:"currentLoad"`
	MaxConcurrent int              `json:"maxConcurrent"`
}

func pollView(s *domain.Session) PollResponse {
	return PollResponse{
		ID:              s.ID,
		Status:          s.Status,
		AssignedAgentID: s.AssignedAgentID,
		AssignedTeam:    s.AssignedTeam,
	}
}

func chatView(s *domain.Session) ChatResponse {
	return ChatResponse{PollResponse: pollView(s), LastPollAt: s.LastPollAt, CreatedAt: s.CreatedAt}
}

// CreateChat handles POST /chats.
func (h *Handlers) CreateChat(w http.ResponseWriter, r *http.Request) {
	res, err := h.desk.CreateSession(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if !res.Accepted {
		writeJSON(w, http.StatusTooManyRequests, CreateChatResponse{ChatID: res.SessionID, Status: res.Status})
		return
	}
	writeJSON(w, http.StatusOK, CreateChatResponse{ChatID: res.SessionID, Status: res.Status, Team: res.Team})
}

// GetChat handles GET /chats/{id}.
func (h *Handlers) GetChat(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	sess, err := h.desk.Session(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatView(sess))
}

// PollChat handles GET /chats/{id}/poll.
func (h *Handlers) PollChat(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	sess, err := h.desk.PollSession(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pollView(sess))
}

func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.desk.Agents(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]AgentResponse, 0, len(agents))
	for _, a := range agents {
		out = append(out, AgentResponse{
			ID:            a.ID,
			Name:          a.Name,
			Team:          a.Team,
			Seniority:     a.Seniority,
			ShiftStart:    a.ShiftStart,
			ShiftEnd:      a.ShiftEnd,
			Accepting:     a.Accepting,
			CurrentLoad:   a.CurrentLoad,
			MaxConcurrent: capacity.MaxConcurrent(a.Seniority),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.desk.Stats(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Health answers 200 when every component is healthy and 503 otherwise.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	report := HealthReport{Status: "ok"}
	if h.health != nil {
		report = h.health(r.Context())
	}
	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

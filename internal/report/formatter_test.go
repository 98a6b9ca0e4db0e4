package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harunnryd/chatdesk/internal/desk"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/httpapi"
)

func sampleAgents() []httpapi.AgentResponse {
	return []httpapi.AgentResponse{
		{ID: uuid.New(), Name: "TeamA-Lead-1", Team: domain.TeamA, Seniority: domain.Lead, Accepting: true, CurrentLoad: 2, MaxConcurrent: 5, ShiftEnd: time.Now()},
		{ID: uuid.New(), Name: "Overflow-Junior-1", Team: domain.TeamOverflow, Seniority: domain.Junior, MaxConcurrent: 4, ShiftEnd: time.Now()},
	}
}

func sampleStats() *desk.Stats {
	return &desk.Stats{
		Now:           time.Now(),
		BusinessHours: true,
		MainTeam:      domain.TeamA,
		MainHasRoom:   true,
		Teams:         []desk.TeamStats{{Team: domain.TeamA, Agents: 2, Accepting: 2, Capacity: 9, MaxDepth: 13, Backlog: 3}},
		Lanes:         []desk.LaneStats{{Name: "main", Depth: 1, Cap: 1000}},
		Sessions:      map[domain.Status]int{domain.StatusQueued: 3, domain.StatusActive: 1},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  OutputFormat
		wantErr bool
	}{
		{name: "table format", format: OutputFormatTable},
		{name: "json format", format: OutputFormatJSON},
		{name: "yaml format", format: OutputFormatYAML},
		{name: "invalid format", format: OutputFormat("invalid"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && f == nil {
				t.Error("New() returned nil formatter for valid format")
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	for input, want := range map[string]OutputFormat{"TABLE": OutputFormatTable, "json": OutputFormatJSON, "Yaml": OutputFormatYAML} {
		got, err := ParseOutputFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestTableFormatter_FormatAgents(t *testing.T) {
	out, err := NewTableFormatter().FormatAgents(sampleAgents())
	if err != nil {
		t.Fatalf("FormatAgents() error = %v", err)
	}
	for _, want := range []string{"TeamA-Lead-1", "Overflow-Junior-1", "2/5", "yes", "no"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatAgents() output missing %q", want)
		}
	}

	empty, _ := NewTableFormatter().FormatAgents(nil)
	if empty != "No agents found" {
		t.Errorf("empty output = %q", empty)
	}
}

func TestTableFormatter_FormatStats(t *testing.T) {
	out, err := NewTableFormatter().FormatStats(sampleStats())
	if err != nil {
		t.Fatalf("FormatStats() error = %v", err)
	}
	for _, want := range []string{"Main team", "TeamA", "1000", "Queued", "Active"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatStats() output missing %q", want)
		}
	}
}

func TestTableFormatter_FormatValueChat(t *testing.T) {
	team := domain.TeamC
	out, err := NewTableFormatter().FormatValue(&httpapi.CreateChatResponse{ChatID: uuid.New(), Status: "OK", Team: &team})
	if err != nil {
		t.Fatalf("FormatValue() error = %v", err)
	}
	if !strings.Contains(out, "TeamC") {
		t.Errorf("FormatValue() output missing team: %s", out)
	}
}

func TestJSONAndYAMLKeepAPIFieldNames(t *testing.T) {
	j, err := NewJSONFormatter().FormatStats(sampleStats())
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(j, `"mainTeam": "TeamA"`) {
		t.Errorf("json output missing mainTeam: %s", j)
	}

	y, err := NewYAMLFormatter().FormatAgents(sampleAgents())
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(y, "currentLoad: 2") || !strings.Contains(y, "name: TeamA-Lead-1") {
		t.Errorf("yaml output missing fields: %s", y)
	}
}

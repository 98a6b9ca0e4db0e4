package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/harunnryd/chatdesk/internal/desk"
	"github.com/harunnryd/chatdesk/internal/domain"
	"github.com/harunnryd/chatdesk/internal/httpapi"
)

type TableFormatter struct {
	headerStyle  lipgloss.Style
	cellStyle    lipgloss.Style
	oddRowStyle  lipgloss.Style
	evenRowStyle lipgloss.Style
	borderStyle  lipgloss.Style
}

func NewTableFormatter() *TableFormatter {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	return &TableFormatter{
		headerStyle: lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			Align(lipgloss.Center).
			Padding(0, 1),
		cellStyle: lipgloss.NewStyle().
			Padding(0, 1),
		oddRowStyle: lipgloss.NewStyle().
			Foreground(gray).
			Padding(0, 1),
		evenRowStyle: lipgloss.NewStyle().
			Foreground(lightGray).
			Padding(0, 1),
		borderStyle: lipgloss.NewStyle().
			Foreground(purple),
	}
}

func (f *TableFormatter) grid(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(f.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return f.headerStyle
			case row%2 == 0:
				return f.evenRowStyle
			default:
				return f.oddRowStyle
			}
		}).
		Headers(headers...)
}

func (f *TableFormatter) FormatAgents(agents []httpapi.AgentResponse) (string, error) {
	if len(agents) == 0 {
		return "No agents found", nil
	}

	t := f.grid("Name", "Team", "Seniority", "Load", "Accepting", "Shift Ends")
	for _, a := range agents {
		t.Row(
			truncateString(a.Name, 24),
			string(a.Team),
			string(a.Seniority),
			fmt.Sprintf("%d/%d", a.CurrentLoad, a.MaxConcurrent),
			yesNo(a.Accepting),
			a.ShiftEnd.Local().Format(time.DateTime),
		)
	}
	return t.String(), nil
}

func (f *TableFormatter) FormatStats(stats *desk.Stats) (string, error) {
	if stats == nil {
		return "No stats available", nil
	}

	summary := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(f.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return f.headerStyle
			}
			return f.cellStyle
		})
	summary.Row("Now", stats.Now.Local().Format(time.DateTime))
	summary.Row("Business hours", yesNo(stats.BusinessHours))
	summary.Row("Main team", string(stats.MainTeam))
	summary.Row("Main has room", yesNo(stats.MainHasRoom))
	summary.Row("Overflow", yesNo(stats.OverflowEnabled))

	teams := f.grid("Team", "Agents", "Accepting", "Load", "Capacity", "Backlog", "Max Depth")
	for _, ts := range stats.Teams {
		teams.Row(
			string(ts.Team),
			strconv.Itoa(ts.Agents),
			strconv.Itoa(ts.Accepting),
			strconv.Itoa(ts.Load),
			strconv.Itoa(ts.Capacity),
			strconv.Itoa(ts.Backlog),
			strconv.Itoa(ts.MaxDepth),
		)
	}

	lanes := f.grid("Lane", "Depth", "Capacity")
	for _, l := range stats.Lanes {
		lanes.Row(l.Name, strconv.Itoa(l.Depth), strconv.Itoa(l.Cap))
	}

	statuses := make([]string, 0, len(stats.Sessions))
	for s := range stats.Sessions {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	sessions := f.grid("Status", "Sessions")
	for _, s := range statuses {
		sessions.Row(s, strconv.Itoa(stats.Sessions[domain.Status(s)]))
	}

	return strings.Join([]string{summary.String(), teams.String(), lanes.String(), sessions.String()}, "\n"), nil
}

// FormatValue renders a payload as a two-column key/value table.
func (f *TableFormatter) FormatValue(v any) (string, error) {
	switch x := v.(type) {
	case *httpapi.CreateChatResponse:
		team := "-"
		if x.Team != nil {
			team = string(*x.Team)
		}
		return f.pairs([][2]string{{"Chat", x.ChatID.String()}, {"Status", x.Status}, {"Team", team}}), nil
	case *httpapi.ChatResponse:
		return f.pairs(append(pollPairs(&x.PollResponse),
			[2]string{"Created", x.CreatedAt.Local().Format(time.DateTime)},
			[2]string{"Last poll", timeOrDash(x.LastPollAt)},
		)), nil
	case *httpapi.PollResponse:
		return f.pairs(pollPairs(x)), nil
	default:
		return NewJSONFormatter().FormatValue(v)
	}
}

func (f *TableFormatter) pairs(rows [][2]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(f.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return f.headerStyle
			}
			return f.cellStyle
		})
	for _, r := range rows {
		t.Row(r[0], r[1])
	}
	return t.String()
}

func pollPairs(p *httpapi.PollResponse) [][2]string {
	agent, team := "-", "-"
	if p.AssignedAgentID != nil {
		agent = p.AssignedAgentID.String()
	}
	if p.AssignedTeam != nil {
		team = string(*p.AssignedTeam)
	}
	return [][2]string{{"Chat", p.ID.String()}, {"Status", string(p.Status)}, {"Agent", agent}, {"Team", team}}
}

func timeOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

package report

import (
	"encoding/json"

	"github.com/harunnryd/chatdesk/internal/desk"
	"github.com/harunnryd/chatdesk/internal/httpapi"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) FormatAgents(agents []httpapi.AgentResponse) (string, error) {
	return f.FormatValue(agents)
}

func (f *JSONFormatter) FormatStats(stats *desk.Stats) (string, error) {
	return f.FormatValue(stats)
}

func (f *JSONFormatter) FormatValue(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

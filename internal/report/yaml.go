package report

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harunnryd/chatdesk/internal/desk"
	"github.com/harunnryd/chatdesk/internal/httpapi"
)

// YAMLFormatter keeps the API's JSON field names by going through the JSON
// encoding first.
type YAMLFormatter struct{}

func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

func (f *YAMLFormatter) FormatAgents(agents []httpapi.AgentResponse) (string, error) {
	return f.FormatValue(agents)
}

func (f *YAMLFormatter) FormatStats(stats *desk.Stats) (string, error) {
	return f.FormatValue(stats)
}

func (f *YAMLFormatter) FormatValue(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return "", err
	}
	data, err := yaml.Marshal(tree)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/harunnryd/chatdesk/internal/config"

	"github.com/spf13/cobra"
)

func withDaemon(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	saved := cfg
	t.Cleanup(func() { cfg = saved })
	cfg = &config.Config{Client: config.ClientConfig{BaseURL: srv.URL, Timeout: "1s"}}
}

func runCommand(t *testing.T, c *cobra.Command, output string, args ...string) (string, error) {
	t.Helper()
	cmd := &cobra.Command{}
	addOutputFlag(cmd, "json")
	if output != "" {
		if err := cmd.Flags().Set("output", output); err != nil {
			t.Fatalf("set output: %v", err)
		}
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	err := c.RunE(cmd, args)
	return out.String(), err
}

func TestChatCreatePrintsJSON(t *testing.T) {
	id := uuid.New()
	withDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"chatId": id, "status": "OK", "team": "TeamA"})
	})

	out, err := runCommand(t, chatCreateCmd, "")
	if err != nil {
		t.Fatalf("chat create: %v", err)
	}
	if !strings.Contains(out, id.String()) || !strings.Contains(out, `"team": "TeamA"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestChatGetRejectsBadID(t *testing.T) {
	withDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("daemon should not be called")
	})

	if _, err := runCommand(t, chatGetCmd, "", "nope"); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestChatPollReportsNotFound(t *testing.T) {
	withDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"chat not found"}`))
	})

	_, err := runCommand(t, chatPollCmd, "", uuid.NewString())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAgentsRendersTable(t *testing.T) {
	withDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agents" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"` + uuid.NewString() + `","name":"TeamC-Mid-1","team":"TeamC","seniority":"Mid","accepting":true,"currentLoad":1,"maxConcurrent":6}]`))
	})

	out, err := runCommand(t, agentsCmd, "table")
	if err != nil {
		t.Fatalf("agents: %v", err)
	}
	if !strings.Contains(out, "TeamC-Mid-1") || !strings.Contains(out, "1/6") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestOutputFlagValidated(t *testing.T) {
	withDaemon(t, func(w http.ResponseWriter, r *http.Request) {})

	if _, err := runCommand(t, statsCmd, "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

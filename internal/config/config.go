package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server      ServerConfig      `koanf:"server" yaml:"server"`
	Dispatcher  DispatcherConfig  `koanf:"dispatcher" yaml:"dispatcher"`
	Inactivity  InactivityConfig  `koanf:"inactivity" yaml:"inactivity"`
	Shift       ShiftConfig       `koanf:"shift" yaml:"shift"`
	Overflow    OverflowConfig    `koanf:"overflow" yaml:"overflow"`
	OfficeHours OfficeHoursConfig `koanf:"office_hours" yaml:"office_hours"`
	Routing     RoutingConfig     `koanf:"routing" yaml:"routing"`
	Queues      QueuesConfig      `koanf:"queues" yaml:"queues"`
	Testing     TestingConfig     `koanf:"testing" yaml:"testing"`
	Store       StoreConfig       `koanf:"store" yaml:"store"`
	Roster      RosterConfig      `koanf:"roster" yaml:"roster"`
	Scheduler   SchedulerConfig   `koanf:"scheduler" yaml:"scheduler"`
	Daemon      DaemonConfig      `koanf:"daemon" yaml:"daemon"`
	Client      ClientConfig      `koanf:"client" yaml:"client"`
}

type ServerConfig struct {
	Port            int    `koanf:"port" yaml:"port"`
	LogLevel        string `koanf:"log_level" yaml:"log_level"`
	ReadTimeout     string `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type DispatcherConfig struct {
	TickInterval string `koanf:"tick_interval" yaml:"tick_interval"`
}

type InactivityConfig struct {
	TickInterval string `koanf:"tick_interval" yaml:"tick_interval"`
	Threshold    string `koanf:"threshold" yaml:"threshold"`
}

type ShiftConfig struct {
	TickInterval string `koanf:"tick_interval" yaml:"tick_interval"`
}

type OverflowConfig struct {
	TickInterval string `koanf:"tick_interval" yaml:"tick_interval"`
}

type OfficeHoursConfig struct {
	Start    string `koanf:"start" yaml:"start"`
	End      string `koanf:"end" yaml:"end"`
	Timezone string `koanf:"timezone" yaml:"timezone"`
}

type RoutingConfig struct {
	DayTeam   string `koanf:"day_team" yaml:"day_team"`
	NightTeam string `koanf:"night_team" yaml:"night_team"`
}

type QueuesConfig struct {
	MainCapacity     int `koanf:"main_capacity" yaml:"main_capacity"`
	OverflowCapacity int `koanf:"overflow_capacity" yaml:"overflow_capacity"`
}

// TestingConfig holds knobs that make admission scenarios deterministic.
type TestingConfig struct {
	ForceOfficeHours              bool `koanf:"force_office_hours" yaml:"force_office_hours"`
	MainMaxQueueOverride          int  `koanf:"main_max_queue_override" yaml:"main_max_queue_override"`
	UsePressureForOverflowTrigger bool `koanf:"use_pressure_for_overflow_trigger" yaml:"use_pressure_for_overflow_trigger"`
}

type StoreConfig struct {
	InboxSize int `koanf:"inbox_size" yaml:"inbox_size"`
}

type RosterConfig struct {
	Teams []RosterTeam `koanf:"teams" yaml:"teams"`
}

type RosterTeam struct {
	Team        string        `koanf:"team" yaml:"team"`
	ShiftCron   string        `koanf:"shift_cron" yaml:"shift_cron"`
	ShiftLength string        `koanf:"shift_length" yaml:"shift_length"`
	Agents      []RosterAgent `koanf:"agents" yaml:"agents"`
}

type RosterAgent struct {
	Seniority string `koanf:"seniority" yaml:"seniority"`
	Count     int    `koanf:"count" yaml:"count"`
}

type SchedulerConfig struct {
	ShutdownTimeout string `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type DaemonConfig struct {
	ShutdownTimeout        string `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
	HealthCheckInterval    string `koanf:"health_check_interval" yaml:"health_check_interval"`
	StartupShutdownTimeout string `koanf:"startup_shutdown_timeout" yaml:"startup_shutdown_timeout"`
	LockPath               string `koanf:"lock_path" yaml:"lock_path"`
	PIDPath                string `koanf:"pid_path" yaml:"pid_path"`
}

type ClientConfig struct {
	BaseURL string `koanf:"base_url" yaml:"base_url"`
	Timeout string `koanf:"timeout" yaml:"timeout"`
}

const (
	DefaultServerPort                   = 8080
	DefaultServerLogLevel               = "info"
	DefaultServerReadTimeout            = "10s"
	DefaultServerWriteTimeout           = "10s"
	DefaultServerIdleTimeout            = "60s"
	DefaultServerShutdownTimeout        = "5s"
	DefaultDispatcherTickInterval       = "250ms"
	DefaultInactivityTickInterval       = "1s"
	DefaultInactivityThreshold          = "3s"
	DefaultShiftTickInterval            = "5s"
	DefaultOverflowTickInterval         = "1s"
	DefaultOfficeHoursStart             = "09:00"
	DefaultOfficeHoursEnd               = "18:00"
	DefaultOfficeHoursTimezone          = "Local"
	DefaultRoutingDayTeam               = "TeamA"
	DefaultRoutingNightTeam             = "TeamC"
	DefaultQueuesMainCapacity           = 1000
	DefaultQueuesOverflowCapacity       = 500
	DefaultStoreInboxSize               = 256
	DefaultRosterShiftLength            = "8h"
	DefaultSchedulerShutdownTimeout     = "10s"
	DefaultDaemonShutdownTimeout        = "30s"
	DefaultDaemonHealthCheckInterval    = "30s"
	DefaultDaemonStartupShutdownTimeout = "10s"
	DefaultClientBaseURL                = "http://localhost:8080"
	DefaultClientTimeout                = "5s"
)

// DefaultRoster mirrors the workforce the service has always been seeded with.
func DefaultRoster() []RosterTeam {
	return []RosterTeam{
		{Team: "TeamA", Agents: []RosterAgent{{Seniority: "Lead", Count: 1}, {Seniority: "Mid", Count: 2}, {Seniority: "Junior", Count: 1}}},
		{Team: "TeamB", Agents: []RosterAgent{{Seniority: "Senior", Count: 1}, {Seniority: "Mid", Count: 1}, {Seniority: "Junior", Count: 2}}},
		{Team: "TeamC", Agents: []RosterAgent{{Seniority: "Mid", Count: 2}}},
		{Team: "Overflow", Agents: []RosterAgent{{Seniority: "Junior", Count: 6}}},
	}
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                               DefaultServerPort,
		"server.log_level":                          DefaultServerLogLevel,
		"server.read_timeout":                       DefaultServerReadTimeout,
		"server.write_timeout":                      DefaultServerWriteTimeout,
		"server.idle_timeout":                       DefaultServerIdleTimeout,
		"server.shutdown_timeout":                   DefaultServerShutdownTimeout,
		"dispatcher.tick_interval":                  DefaultDispatcherTickInterval,
		"inactivity.tick_interval":                  DefaultInactivityTickInterval,
		"inactivity.threshold":                      DefaultInactivityThreshold,
		"shift.tick_interval":                       DefaultShiftTickInterval,
		"overflow.tick_interval":                    DefaultOverflowTickInterval,
		"office_hours.start":                        DefaultOfficeHoursStart,
		"office_hours.end":                          DefaultOfficeHoursEnd,
		"office_hours.timezone":                     DefaultOfficeHoursTimezone,
		"routing.day_team":                          DefaultRoutingDayTeam,
		"routing.night_team":                        DefaultRoutingNightTeam,
		"queues.main_capacity":                      DefaultQueuesMainCapacity,
		"queues.overflow_capacity":                  DefaultQueuesOverflowCapacity,
		"testing.force_office_hours":                false,
		"testing.main_max_queue_override":           0,
		"testing.use_pressure_for_overflow_trigger": false,
		"store.inbox_size":                          DefaultStoreInboxSize,
		"scheduler.shutdown_timeout":                DefaultSchedulerShutdownTimeout,
		"daemon.shutdown_timeout":                   DefaultDaemonShutdownTimeout,
		"daemon.health_check_interval":              DefaultDaemonHealthCheckInterval,
		"daemon.startup_shutdown_timeout":           DefaultDaemonStartupShutdownTimeout,
		"daemon.lock_path":                          filepath.Join(os.TempDir(), "chatdesk.lock"),
		"daemon.pid_path":                           filepath.Join(os.TempDir(), "chatdesk.pid"),
		"client.base_url":                           DefaultClientBaseURL,
		"client.timeout":                            DefaultClientTimeout,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".chatdesk", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Keys such as office_hours.start contain underscores, so env names are
	// matched against the known key set before falling back to dot splitting.
	envKeys := make(map[string]string, len(defaults))
	for key := range defaults {
		envKeys[strings.ReplaceAll(key, ".", "_")] = key
	}
	k.Load(env.Provider("CHATDESK_", ".", func(s string) string {
		name := strings.ToLower(strings.TrimPrefix(s, "CHATDESK_"))
		if key, ok := envKeys[name]; ok {
			return key
		}
		return strings.Replace(name, "_", ".", -1)
	}), nil)

	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if len(cfg.Roster.Teams) == 0 {
		cfg.Roster.Teams = DefaultRoster()
	}
	for i := range cfg.Roster.Teams {
		if strings.TrimSpace(cfg.Roster.Teams[i].ShiftLength) == "" {
			cfg.Roster.Teams[i].ShiftLength = DefaultRosterShiftLength
		}
	}

	if err := normalizePathFields(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func normalizePathFields(cfg *Config) error {
	lockPath, err := expandPath(cfg.Daemon.LockPath)
	if err != nil {
		return fmt.Errorf("expand daemon lock path: %w", err)
	}
	cfg.Daemon.LockPath = lockPath

	pidPath, err := expandPath(cfg.Daemon.PIDPath)
	if err != nil {
		return fmt.Errorf("expand daemon pid path: %w", err)
	}
	cfg.Daemon.PIDPath = pidPath
	return nil
}

// expandPath resolves environment variables and a leading "~/".
func expandPath(path string) (string, error) {
	trimmed := os.ExpandEnv(strings.TrimSpace(path))
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Clean(trimmed), nil
}

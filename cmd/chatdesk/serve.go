package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harunnryd/chatdesk/internal/clock"
	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/daemon"
	"github.com/harunnryd/chatdesk/internal/daemon/components"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chatdesk daemon",
	Long:  `Starts the routing engine, its periodic loops and the HTTP API, and runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		daemonMgr, err := buildDaemon(cfg)
		if err != nil {
			return err
		}

		slog.Info("Chatdesk daemon starting up...", "port", cfg.Server.Port)
		err = daemonMgr.Start(context.Background())
		if err != nil {
			// Cancellation via signal/context is a graceful shutdown case for CLI.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				slog.Info("Chatdesk daemon stopped gracefully")
				return nil
			}
			return fmt.Errorf("daemon failed: %w", err)
		}

		slog.Info("Chatdesk daemon stopped gracefully")
		return nil
	},
}

func buildDaemon(cfg *config.Config) (*daemon.Daemon, error) {
	daemonMgr, err := daemon.NewDaemon(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon manager: %w", err)
	}

	clk := clock.System{}
	storeComp := components.NewStoreComponent(&cfg.Store)
	rosterComp := components.NewRosterComponent(&cfg.Roster, storeComp, clk)
	engineComp := components.NewEngineComponent(cfg, storeComp, clk)
	schedulerComp := components.NewSchedulerComponent(cfg, engineComp)
	httpComp := components.NewHTTPServerComponent(daemonMgr, engineComp, &cfg.Server)

	daemonMgr.AddComponent(storeComp)
	daemonMgr.AddComponent(rosterComp)
	daemonMgr.AddComponent(engineComp)
	daemonMgr.AddComponent(schedulerComp)
	daemonMgr.AddComponent(httpComp)
	return daemonMgr, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

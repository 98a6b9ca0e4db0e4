package main

import (
	"context"

	"github.com/harunnryd/chatdesk/internal/client"
	"github.com/harunnryd/chatdesk/internal/report"

	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List agents with their load and eligibility",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithClient(cmd, func(ctx context.Context, c *client.Client, f report.Formatter) (string, error) {
			agents, err := c.Agents(ctx)
			if err != nil {
				return "", err
			}
			return f.FormatAgents(agents)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show team capacity, backlog and lane depth",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithClient(cmd, func(ctx context.Context, c *client.Client, f report.Formatter) (string, error) {
			stats, err := c.Stats(ctx)
			if err != nil {
				return "", err
			}
			return f.FormatStats(stats)
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show daemon component health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithClient(cmd, func(ctx context.Context, c *client.Client, f report.Formatter) (string, error) {
			h, err := c.Health(ctx)
			if err != nil {
				return "", err
			}
			return f.FormatValue(h)
		})
	},
}

func init() {
	addOutputFlag(agentsCmd, report.OutputFormatTable)
	addOutputFlag(statsCmd, report.OutputFormatTable)
	addOutputFlag(healthCmd, report.OutputFormatJSON)
	rootCmd.AddCommand(agentsCmd, statsCmd, healthCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/harunnryd/chatdesk/internal/client"
	"github.com/harunnryd/chatdesk/internal/config"
	"github.com/harunnryd/chatdesk/internal/report"

	"github.com/spf13/cobra"
)

// executeWithClient hands fn a client for the configured daemon and the
// formatter chosen with --output.
func executeWithClient(cmd *cobra.Command, fn func(context.Context, *client.Client, report.Formatter) (string, error)) error {
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	timeout, err := config.DurationOrDefault(cfg.Client.Timeout, config.DefaultClientTimeout)
	if err != nil {
		return fmt.Errorf("parse client timeout: %w", err)
	}

	output, _ := cmd.Flags().GetString("output")
	format, err := report.ParseOutputFormat(output)
	if err != nil {
		return err
	}
	formatter, err := report.New(format)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	out, err := fn(ctx, client.New(cfg.Client.BaseURL, timeout), formatter)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func addOutputFlag(cmd *cobra.Command, def report.OutputFormat) {
	cmd.Flags().StringP("output", "o", string(def), "output format (table, json, yaml)")
}

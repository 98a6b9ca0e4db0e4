package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harunnryd/chatdesk/internal/client"
	"github.com/harunnryd/chatdesk/internal/report"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Create and inspect chats",
	Long:  `Talk to a running daemon: create a chat, look one up or poll it.`,
}

var chatCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Request a new chat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeWithClient(cmd, func(ctx context.Context, c *client.Client, f report.Formatter) (string, error) {
			res, err := c.CreateChat(ctx)
			if err != nil {
				return "", err
			}
			return f.FormatValue(res)
		})
	},
}

var chatGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		return executeWithClient(cmd, func(ctx context.Context, c *client.Client, f report.Formatter) (string, error) {
			res, err := c.GetChat(ctx, id)
			if err != nil {
				return "", err
			}
			return f.FormatValue(res)
		})
	},
}

var chatPollCmd = &cobra.Command{
	Use:   "poll [id]",
	Short: "Poll a chat, marking the client as active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseChatID(args[0])
		if err != nil {
			return err
		}
		return executeWithClient(cmd, func(ctx context.Context, c *client.Client, f report.Formatter) (string, error) {
			res, err := c.PollChat(ctx, id)
			if err != nil {
				return "", err
			}
			return f.FormatValue(res)
		})
	},
}

func parseChatID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid chat id %q: %w", s, err)
	}
	return id, nil
}

func init() {
	for _, c := range []*cobra.Command{chatCreateCmd, chatGetCmd, chatPollCmd} {
		addOutputFlag(c, report.OutputFormatJSON)
		chatCmd.AddCommand(c)
	}
	rootCmd.AddCommand(chatCmd)
}

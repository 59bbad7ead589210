package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dariolabs/ractor/internal/actor"
	"github.com/spf13/cobra"
)

var (
	askPriority bool
	askTimeout  time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask <actor-id> <message>",
	Short: "Post a message and poll for its correlated result",
	Args:  cobra.ExactArgs(2),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(
		&askPriority, "priority", false,
		"Push to the head of the inbox so this message is claimed next",
	)
	askCmd.Flags().DurationVar(
		&askTimeout, "timeout", 5*time.Second,
		"How long to wait for the result before giving up",
	)
	rootCmd.AddCommand(askCmd)
}

func runAsk(_ *cobra.Command, args []string) error {
	actorID, message := args[0], args[1]

	adapter, c, err := openAdapter()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	mailbox := actor.NewMailbox(adapter, c, actor.NewKeys(actorID))
	correlationID := actor.NewID()

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	payload, err := c.Encode(message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if err := mailbox.Push(
		ctx, payload, correlationID, askPriority,
	); err != nil {
		return fmt.Errorf("failed to post: %w", err)
	}

	const pollInterval = 50 * time.Millisecond
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		raw, found, err := mailbox.ReadResult(ctx, correlationID, false)
		if err != nil {
			return fmt.Errorf("failed to read result: %w", err)
		}
		if found {
			var out any
			if err := c.Decode(raw, &out); err != nil {
				return fmt.Errorf("failed to decode result: %w", err)
			}
			fmt.Println(out)
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return actor.ErrTimeout
		}
	}
}

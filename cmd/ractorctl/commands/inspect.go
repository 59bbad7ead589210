package commands

import (
	"context"
	"fmt"

	"github.com/dariolabs/ractor/internal/actor"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <actor-id>",
	Short: "Print inbox, pipeline, and error queue lengths for an actor",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	actorID := args[0]

	adapter, c, err := openAdapter()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	ctx := context.Background()
	keys := actor.NewKeys(actorID)
	mailbox := actor.NewMailbox(adapter, c, keys)

	queueLen, err := mailbox.QueueLength(ctx)
	if err != nil {
		return fmt.Errorf("failed to read inbox length: %w", err)
	}

	inFlight, err := mailbox.Recover(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pipeline entries: %w", err)
	}

	errCount, err := adapter.ListLength(ctx, keys.Errors)
	if err != nil {
		return fmt.Errorf("failed to read error queue length: %w", err)
	}

	fmt.Printf("actor:    %s\n", actorID)
	fmt.Printf("inbox:    %d\n", queueLen)
	fmt.Printf("pipeline: %d\n", len(inFlight))
	fmt.Printf("errors:   %d\n", errCount)

	return nil
}

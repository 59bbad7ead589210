package commands

import (
	"context"
	"fmt"

	"github.com/dariolabs/ractor/internal/actor"
	"github.com/spf13/cobra"
)

var postPriority bool

var postCmd = &cobra.Command{
	Use:   "post <actor-id> <message>",
	Short: "Fire-and-forget post a message into an actor's inbox",
	Args:  cobra.ExactArgs(2),
	RunE:  runPost,
}

func init() {
	postCmd.Flags().BoolVar(
		&postPriority, "priority", false,
		"Push to the head of the inbox so this message is claimed next",
	)
	rootCmd.AddCommand(postCmd)
}

func runPost(_ *cobra.Command, args []string) error {
	actorID, message := args[0], args[1]

	adapter, c, err := openAdapter()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	payload, err := c.Encode(message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	mailbox := actor.NewMailbox(adapter, c, actor.NewKeys(actorID))
	if err := mailbox.Push(
		context.Background(), payload, "", postPriority,
	); err != nil {
		return fmt.Errorf("failed to post: %w", err)
	}

	fmt.Printf("posted to %s\n", actorID)
	return nil
}

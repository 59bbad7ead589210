// Package commands implements ractorctl's cobra command tree: a thin
// operator wrapper over the Store Adapter for posting messages, awaiting
// replies, and inspecting an actor's mailbox. It is explicitly
// administrative tooling (spec §1 Non-goals) and never touches the
// dispatcher directly.
package commands

import (
	"github.com/dariolabs/ractor/internal/codec"
	"github.com/dariolabs/ractor/internal/store"
	"github.com/spf13/cobra"
)

var (
	// storeURL is the Store Adapter connection URL used by every
	// subcommand.
	storeURL string
)

// rootCmd is the base command for ractorctl.
var rootCmd = &cobra.Command{
	Use:   "ractorctl",
	Short: "Operator CLI for the ractor actor mailbox",
	Long: `ractorctl posts messages into an actor's mailbox, reads back
correlated results, and inspects queue/pipeline/error lengths, all by
talking directly to the store the actors share.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&storeURL, "store", "redis://localhost:6379/0",
		"Store Adapter connection URL",
	)
}

// openAdapter builds an adapter for the configured store and returns it
// alongside the default codec used to encode/decode CLI payloads.
func openAdapter() (store.Adapter, codec.Codec, error) {
	adapter, err := store.RedisAdapterFromURL(storeURL)
	if err != nil {
		return nil, nil, err
	}
	return adapter, codec.NewMsgpackCodec(), nil
}

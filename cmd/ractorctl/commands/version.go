package commands

import (
	"fmt"

	"github.com/dariolabs/ractor/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("ractorctl version %s", build.Version())

	if build.Commit != "" {
		fmt.Printf(" commit=%s", build.Commit)
	}
	if build.GoVersion != "" {
		fmt.Printf(" go=%s", build.GoVersion)
	}

	fmt.Println()
}

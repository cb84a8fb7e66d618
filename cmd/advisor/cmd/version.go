package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set via -ldflags at release time
var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the advisor version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("advisor %s (%s)\n", version, commit)
	},
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "advisor — sourcing-restriction advisor engine",
	Long:  "Scans captured profile pages against the team's sourcing-restriction rules and serves the local admin API.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func defaultDataDir() string {
	if d := os.Getenv("SOURCING_ADVISOR_DATA_DIR"); d != "" {
		return d
	}
	return "."
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory holding config, rule cache and seeds")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

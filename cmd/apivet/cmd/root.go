// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/kusari-oss/apivet/cmd/apivet/cmd/plan"
	"github.com/kusari-oss/apivet/cmd/apivet/cmd/run"
	"github.com/kusari-oss/apivet/internal/version"
	"github.com/kusari-oss/apivet/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	// Configuration path override
	configFile string

	// Verbose logging
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "apivet",
	Short: "API Stability Verification Tool",
	Long: `Apivet validates AI-generated API test plans through a deterministic
gate, executes the accepted plans against a live target with bounded
concurrency, and scores the target's stability from the classified results.`,
	Version: fmt.Sprintf("%s (commit: %s)", version.Version, version.Commit),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(plan.GetPlanCmd())
	rootCmd.AddCommand(run.GetRunCmd())

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ~/.apivet/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")
}

// SPDX-License-Identifier: Apache-2.0

package run

import (
	"fmt"
	"os"

	"github.com/kusari-oss/apivet/internal/core/config"
	"github.com/kusari-oss/apivet/internal/vet/analyzer"
	"github.com/spf13/cobra"
)

func getAnalyzeCmd() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [run-id]",
		Short: "Enrich a run's failures with analyzer explanations",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runID := args[0]
			analyzerURL, _ := cmd.Flags().GetString("analyzer-url")
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Error loading configuration: %v\n", err)
				os.Exit(1)
			}

			if analyzerURL == "" {
				analyzerURL = cfg.AnalyzerURL
			}
			if analyzerURL == "" {
				fmt.Println("No analyzer URL configured. Set analyzer_url in the config or pass --analyzer-url.")
				os.Exit(1)
			}

			st, err := openStore(cfg)
			if err != nil {
				fmt.Printf("%v\n", err)
				os.Exit(1)
			}

			record, err := analyzer.EnrichRun(cmd.Context(), st, analyzer.NewHTTPAnalyzer(analyzerURL), runID)
			if err != nil {
				fmt.Printf("Error analyzing run: %v\n", err)
				os.Exit(1)
			}

			analyzed := 0
			for i := range record.Failures {
				if record.Failures[i].Analyzed() {
					analyzed++
				}
			}
			fmt.Printf("Run %s: %d of %d failures analyzed.\n", runID, analyzed, len(record.Failures))
		},
	}

	analyzeCmd.Flags().StringP("analyzer-url", "a", "", "Analyzer endpoint (default from config)")

	return analyzeCmd
}

// SPDX-License-Identifier: Apache-2.0

package run

import (
	"fmt"
	"os"

	"github.com/kusari-oss/apivet/internal/core/config"
	"github.com/kusari-oss/apivet/internal/vet"
	"github.com/spf13/cobra"
)

func getExecuteCmd() *cobra.Command {
	executeCmd := &cobra.Command{
		Use:   "execute [plan-hash]",
		Short: "Execute a cached plan against its target",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			planHash := args[0]
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			timeoutSeconds, _ := cmd.Flags().GetInt("timeout")
			rulesFile, _ := cmd.Flags().GetString("rules")
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Error loading configuration: %v\n", err)
				os.Exit(1)
			}

			st, err := openStore(cfg)
			if err != nil {
				fmt.Printf("%v\n", err)
				os.Exit(1)
			}

			engine, err := buildEngine(cfg, rulesFile)
			if err != nil {
				fmt.Printf("%v\n", err)
				os.Exit(1)
			}

			record, err := vet.ExecuteRun(cmd.Context(), st, engine, planHash, engineOptions(cfg, concurrency, timeoutSeconds))
			if err != nil {
				fmt.Printf("Error executing run: %v\n", err)
				os.Exit(1)
			}

			summary := record.Summary
			fmt.Printf("Run %s completed.\n", summary.RunID)
			fmt.Printf("  Total: %d  Passed: %d  Failed: %d  Errors: %d\n",
				summary.TotalTests, summary.Passed, summary.Failed, summary.Errors)
			fmt.Printf("  Stability score: %.2f\n", summary.StabilityScore)
		},
	}

	executeCmd.Flags().IntP("concurrency", "c", 0, "Maximum in-flight requests (default from config)")
	executeCmd.Flags().IntP("timeout", "t", 0, "Per-request timeout in seconds (default from config)")
	executeCmd.Flags().StringP("rules", "r", "", "Custom classification rules file")

	return executeCmd
}

// SPDX-License-Identifier: Apache-2.0

package run

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kusari-oss/apivet/internal/core/config"
	"github.com/kusari-oss/apivet/internal/core/format"
	"github.com/kusari-oss/apivet/internal/vet"
	"github.com/kusari-oss/apivet/internal/vet/analyzer"
	"github.com/kusari-oss/apivet/internal/vet/gate"
	"github.com/kusari-oss/apivet/internal/vet/report"
	"github.com/kusari-oss/apivet/internal/vet/store"
	"github.com/spf13/cobra"
)

// reuseWindow bounds how old a completed run may be before flow re-executes
// the plan instead of reusing the stored results.
const reuseWindow = time.Hour

func getFlowCmd() *cobra.Command {
	flowCmd := &cobra.Command{
		Use:   "flow [plan-file]",
		Short: "Validate, execute, optionally analyze, and report in one step",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			planFile := args[0]
			baseURL, _ := cmd.Flags().GetString("base-url")
			analyze, _ := cmd.Flags().GetBool("analyze")
			force, _ := cmd.Flags().GetBool("force")
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			timeoutSeconds, _ := cmd.Flags().GetInt("timeout")
			rulesFile, _ := cmd.Flags().GetString("rules")
			outputFile, _ := cmd.Flags().GetString("output")
			asJSON, _ := cmd.Flags().GetBool("json")
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

			// Stage 1: gate.
			var raw map[string]interface{}
			if err := format.ParseFile(planFile, &raw); err != nil {
				fmt.Printf("Error parsing plan file: %v\n", err)
				os.Exit(1)
			}

			accepted, err := gate.Validate(raw, baseURL)
			if err != nil {
				var rejection *gate.RejectionError
				if errors.As(err, &rejection) {
					fmt.Println("Plan rejected:")
					for _, reason := range rejection.Reasons {
						fmt.Printf("  - %s\n", reason)
					}
					os.Exit(1)
				}
				fmt.Printf("Error validating plan: %v\n", err)
				os.Exit(1)
			}

			if st.HasPlan(accepted.Hash) {
				fmt.Printf("Reusing cached plan %s\n", accepted.Hash)
			} else if err := st.SavePlan(accepted); err != nil {
				fmt.Printf("Error saving plan: %v\n", err)
				os.Exit(1)
			}

			// Stage 2: execute, unless a recent run can be reused.
			var record *store.RunRecord
			if !force {
				record, err = vet.FindRecentRun(st, accepted.Hash, reuseWindow)
				if err != nil {
					fmt.Printf("Error checking for recent runs: %v\n", err)
					os.Exit(1)
				}
				if record != nil {
					fmt.Printf("Reusing run %s from %s\n",
						record.Summary.RunID, record.Summary.StartedAt.Format(time.RFC3339))
				}
			}
			if record == nil {
				engine, err := buildEngine(cfg, rulesFile)
				if err != nil {
					fmt.Printf("%v\n", err)
					os.Exit(1)
				}
				record, err = vet.ExecuteRun(cmd.Context(), st, engine, accepted.Hash, engineOptions(cfg, concurrency, timeoutSeconds))
				if err != nil {
					fmt.Printf("Error executing run: %v\n", err)
					os.Exit(1)
				}
			}

			// Optional analysis before the report.
			if analyze {
				analyzerURL := cfg.AnalyzerURL
				if analyzerURL == "" {
					fmt.Println("No analyzer URL configured; skipping analysis.")
				} else {
					record, err = analyzer.EnrichRun(cmd.Context(), st, analyzer.NewHTTPAnalyzer(analyzerURL), record.Summary.RunID)
					if err != nil {
						fmt.Printf("Error analyzing run: %v\n", err)
						os.Exit(1)
					}
				}
			}

			// Stage 3: report.
			rep := report.Build(record)

			if outputFile != "" {
				if err := format.WriteFile(outputFile, rep); err != nil {
					fmt.Printf("Error writing output file: %v\n", err)
					os.Exit(1)
				}
				fmt.Printf("Report saved to %s\n", outputFile)
				return
			}

			out, err := format.FormatData(rep, !asJSON)
			if err != nil {
				fmt.Printf("Error formatting report: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(out)
		},
	}

	flowCmd.Flags().StringP("base-url", "b", "", "Base URL of the target API")
	flowCmd.Flags().Bool("analyze", false, "Run failure analysis before reporting")
	flowCmd.Flags().Bool("force", false, "Always execute, even when a recent run exists")
	flowCmd.Flags().IntP("concurrency", "c", 0, "Maximum in-flight requests (default from config)")
	flowCmd.Flags().IntP("timeout", "t", 0, "Per-request timeout in seconds (default from config)")
	flowCmd.Flags().StringP("rules", "r", "", "Custom classification rules file")
	flowCmd.Flags().StringP("output", "o", "", "Output file for the report")
	flowCmd.Flags().Bool("json", false, "Print JSON instead of YAML")
	_ = flowCmd.MarkFlagRequired("base-url")

	return flowCmd
}

// SPDX-License-Identifier: Apache-2.0

package run

import (
	"fmt"
	"os"

	"github.com/kusari-oss/apivet/internal/core/config"
	"github.com/kusari-oss/apivet/internal/core/format"
	"github.com/kusari-oss/apivet/internal/vet/report"
	"github.com/spf13/cobra"
)

func getReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Build the report for a completed run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runID := args[0]
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

			record, err := st.GetRun(runID)
			if err != nil {
				fmt.Printf("Error loading run %s: %v\n", runID, err)
				os.Exit(1)
			}

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

	reportCmd.Flags().StringP("output", "o", "", "Output file for the report")
	reportCmd.Flags().Bool("json", false, "Print JSON instead of YAML")

	return reportCmd
}

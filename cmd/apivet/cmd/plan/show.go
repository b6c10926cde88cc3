// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"os"

	"github.com/kusari-oss/apivet/internal/core/config"
	"github.com/kusari-oss/apivet/internal/core/format"
	"github.com/kusari-oss/apivet/internal/vet/store"
	"github.com/spf13/cobra"
)

func getShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [plan-hash]",
		Short: "Show a cached plan",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			hash := args[0]
			outputFile, _ := cmd.Flags().GetString("output")
			asJSON, _ := cmd.Flags().GetBool("json")
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Error loading configuration: %v\n", err)
				os.Exit(1)
			}

			st, err := store.New(cfg.DataDir)
			if err != nil {
				fmt.Printf("Error opening store: %v\n", err)
				os.Exit(1)
			}

			p, err := st.GetPlan(hash)
			if err != nil {
				fmt.Printf("Error loading plan %s: %v\n", hash, err)
				os.Exit(1)
			}

			if outputFile != "" {
				if err := format.WriteFile(outputFile, p); err != nil {
					fmt.Printf("Error writing output file: %v\n", err)
					os.Exit(1)
				}
				fmt.Printf("Plan saved to %s\n", outputFile)
				return
			}

			out, err := format.FormatData(p, !asJSON)
			if err != nil {
				fmt.Printf("Error formatting plan: %v\n", err)
				os.Exit(1)
			}
			fmt.Print(out)
		},
	}

	showCmd.Flags().StringP("output", "o", "", "Output file for the plan")
	showCmd.Flags().Bool("json", false, "Print JSON instead of YAML")

	return showCmd
}

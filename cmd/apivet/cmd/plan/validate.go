// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"errors"
	"fmt"
	"os"

	"github.com/kusari-oss/apivet/internal/core/config"
	"github.com/kusari-oss/apivet/internal/core/format"
	"github.com/kusari-oss/apivet/internal/vet/gate"
	"github.com/kusari-oss/apivet/internal/vet/store"
	"github.com/spf13/cobra"
)

func getValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate [plan-file]",
		Short: "Validate a planner document and cache the accepted plan",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			planFile := args[0]
			baseURL, _ := cmd.Flags().GetString("base-url")
			outputFile, _ := cmd.Flags().GetString("output")
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Error loading configuration: %v\n", err)
				os.Exit(1)
			}

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

			st, err := store.New(cfg.DataDir)
			if err != nil {
				fmt.Printf("Error opening store: %v\n", err)
				os.Exit(1)
			}

			// Same endpoints against the same target reuse the cached plan.
			if st.HasPlan(accepted.Hash) {
				cached, err := st.GetPlan(accepted.Hash)
				if err != nil {
					fmt.Printf("Error loading cached plan: %v\n", err)
					os.Exit(1)
				}
				accepted = cached
				fmt.Printf("Plan already cached: %s\n", accepted.Hash)
			} else {
				if err := st.SavePlan(accepted); err != nil {
					fmt.Printf("Error saving plan: %v\n", err)
					os.Exit(1)
				}
				fmt.Printf("Plan accepted and cached: %s\n", accepted.Hash)
			}

			fmt.Printf("  %d endpoints, %d test cases against %s\n",
				len(accepted.Endpoints), len(accepted.TestCases), accepted.BaseURL)

			if outputFile != "" {
				if err := format.WriteFile(outputFile, accepted); err != nil {
					fmt.Printf("Error writing output file: %v\n", err)
					os.Exit(1)
				}
				fmt.Printf("Plan saved to %s\n", outputFile)
			}
		},
	}

	validateCmd.Flags().StringP("base-url", "b", "", "Base URL of the target API")
	validateCmd.Flags().StringP("output", "o", "", "Output file for the accepted plan")
	_ = validateCmd.MarkFlagRequired("base-url")

	return validateCmd
}

// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"os"

	"github.com/kusari-oss/apivet/internal/core/config"
	"github.com/kusari-oss/apivet/internal/vet/store"
	"github.com/spf13/cobra"
)

func getListCmd() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached plans, newest first",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
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

			plans, err := st.ListPlans()
			if err != nil {
				fmt.Printf("Error listing plans: %v\n", err)
				os.Exit(1)
			}

			if len(plans) == 0 {
				fmt.Println("No cached plans.")
				return
			}

			for _, p := range plans {
				fmt.Printf("%s  %s  %d endpoints  %d cases  %s\n",
					p.Hash[:12], p.BaseURL, len(p.Endpoints), len(p.TestCases),
					p.CreatedAt.Format("2006-01-02 15:04:05"))
			}
		},
	}

	return listCmd
}

// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage validated test plans",
	Long:  `Commands for validating, caching and inspecting API test plans.`,
}

func GetPlanCmd() *cobra.Command {
	return planCmd
}

func init() {
	planCmd.AddCommand(getValidateCmd())
	planCmd.AddCommand(getListCmd())
	planCmd.AddCommand(getShowCmd())
}

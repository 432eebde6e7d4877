// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "authgate",
	Short: "authgate is a centralized permission resolution service",
	Long: `authgate is a centralized permission resolution service. It answers
"may user U perform action A" by resolving hierarchical group memberships,
direct grants, and attribute conditions into a single audited allow or deny.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

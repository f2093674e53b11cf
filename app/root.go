// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pressroom",
	Short: "Pressroom is an editorial content service with database-backed RBAC",
	Long: `Pressroom is an editorial content service. Access control is
role-based: users hold roles, roles hold permissions, and every
authorization decision is resolved from the database at request time.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Package cli wires the cobra command tree. Commands stay thin: they parse
// flags, build the runtime context and delegate to the actions package.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pgbranch",
		Short: "Per-branch PostgreSQL databases that follow your git checkouts",
		Long: `pgbranch gives every git branch its own PostgreSQL database, cloned from a
template database. Install the git hooks and your database follows your
checkouts automatically.`,
	}

	rootCmd.AddCommand(
		newInitCmd(),
		newCreateCmd(),
		newSwitchCmd(),
		newListCmd(),
		newDeleteCmd(),
		newCleanupCmd(),
		newCheckCmd(),
		newConfigCmd(),
		newInstallHooksCmd(),
		newUninstallHooksCmd(),
		newGitHookCmd(),
		newTemplatesCmd(),
		newTestPostCommandsCmd(),
		newTestSwitchCmd(),
		newVersionCmd(version, commit, date),
	)

	return rootCmd
}

// newVersionCmd creates the version command
func newVersionCmd(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pgbranch %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"pgbranch.dev/pgbranch/internal/actions"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// newSwitchCmd creates the switch command
func newSwitchCmd() *cobra.Command {
	var (
		template    bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "switch [branch]",
		Short: "Switch to a branch database. With no branch, opens an interactive selector.",
		Long: `Switch to a branch database. With no branch, opens an interactive selector.

Use --template to go straight back to the template database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Close()

			branch := ""
			if len(args) > 0 {
				branch = args[0]
			}
			return actions.SwitchAction(ctx, actions.SwitchOptions{
				Branch:      branch,
				Template:    template,
				Interactive: interactive || (branch == "" && !template),
			})
		},
	}

	cmd.Flags().BoolVarP(&template, "template", "t", false, "Switch back to the template database")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick the target interactively")

	return cmd
}

// newTestSwitchCmd creates the test-switch command
func newTestSwitchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-switch [branch]",
		Short: "Show what a branch change would do, without doing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Close()

			branch := ""
			if len(args) > 0 {
				branch = args[0]
			}
			return actions.TestSwitchAction(ctx, actions.TestSwitchOptions{Branch: branch})
		},
	}

	return cmd
}

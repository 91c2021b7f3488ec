package cli

import (
	"github.com/spf13/cobra"

	"pgbranch.dev/pgbranch/internal/actions"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// newDeleteCmd creates the delete command
func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete <branch>",
		Aliases: []string{"rm"},
		Short:   "Drop the database for a branch and forget it",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Close()

			return actions.DeleteAction(ctx, actions.DeleteOptions{
				Branch: args[0],
				Force:  force,
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")

	return cmd
}

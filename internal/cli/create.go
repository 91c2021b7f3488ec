package cli

import (
	"github.com/spf13/cobra"

	"pgbranch.dev/pgbranch/internal/actions"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// newCreateCmd creates the create command
func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [branch]",
		Short: "Create a database for a branch without switching to it",
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
			return actions.CreateAction(ctx, actions.CreateOptions{Branch: branch})
		},
	}

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"pgbranch.dev/pgbranch/internal/actions"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// newTemplatesCmd creates the templates command
func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates [branch]",
		Short: "List the variables available in post-commands",
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
			return actions.TemplatesAction(ctx, actions.TemplatesOptions{Branch: branch})
		},
	}

	return cmd
}

// newTestPostCommandsCmd creates the test-post-commands command
func newTestPostCommandsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-post-commands [branch]",
		Short: "Run the post-command pipeline without switching",
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
			return actions.TestPostCommandsAction(ctx, actions.TestPostCommandsOptions{Branch: branch})
		},
	}

	return cmd
}

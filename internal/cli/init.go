package cli

import (
	"github.com/spf13/cobra"

	"pgbranch.dev/pgbranch/internal/actions"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var (
		force        bool
		installHooks bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .pgbranch.yml at the repository root",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContextAllowMissingConfig()
			if err != nil {
				return err
			}
			defer ctx.Close()

			return actions.InitAction(ctx, actions.InitOptions{
				Force:        force,
				InstallHooks: installHooks,
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	cmd.Flags().BoolVar(&installHooks, "install-hooks", false, "Also install the git hooks")

	return cmd
}

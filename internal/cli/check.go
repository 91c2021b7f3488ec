package cli

import (
	"github.com/spf13/cobra"

	"pgbranch.dev/pgbranch/internal/actions"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// newCheckCmd creates the check command
func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify config, server connectivity, privileges and git hooks",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContextAllowMissingConfig()
			if err != nil {
				return err
			}
			defer ctx.Close()

			return actions.CheckAction(ctx, actions.CheckOptions{})
		},
	}

	return cmd
}

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Close()

			return actions.ShowConfigAction(ctx, actions.ShowConfigOptions{})
		},
	}

	return cmd
}

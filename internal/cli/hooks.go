package cli

import (
	"github.com/spf13/cobra"

	"pgbranch.dev/pgbranch/internal/actions"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// newInstallHooksCmd creates the install-hooks command
func newInstallHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install-hooks",
		Short: "Install the post-checkout and post-merge git hooks",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Close()

			return actions.InstallHooksAction(ctx, actions.InstallHooksOptions{})
		},
	}

	return cmd
}

// newUninstallHooksCmd creates the uninstall-hooks command
func newUninstallHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall-hooks",
		Short: "Remove the git hooks pgbranch installed",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContextAllowMissingConfig()
			if err != nil {
				return err
			}
			defer ctx.Close()

			return actions.UninstallHooksAction(ctx, actions.UninstallHooksOptions{})
		},
	}

	return cmd
}

// newGitHookCmd creates the hidden git-hook command the installed hooks call
func newGitHookCmd() *cobra.Command {
	var event string

	cmd := &cobra.Command{
		Use:    "git-hook",
		Hidden: true,
		Short:  "Handle a git hook invocation",
		RunE: func(_ *cobra.Command, _ []string) error {
			// A broken setup must not break git checkouts, so any failure
			// to even build the context is swallowed.
			ctx, err := runtime.GetContext()
			if err != nil {
				return nil
			}
			defer ctx.Close()

			return actions.GitHookAction(ctx, actions.GitHookOptions{Event: event})
		},
	}

	cmd.Flags().StringVar(&event, "event", "", "Hook name that fired (post-checkout or post-merge)")

	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"pgbranch.dev/pgbranch/internal/actions"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// newCleanupCmd creates the cleanup command
func newCleanupCmd() *cobra.Command {
	var maxCount int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Drop the oldest database branches down to the configured limit",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext()
			if err != nil {
				return err
			}
			defer ctx.Close()

			return actions.CleanupAction(ctx, actions.CleanupOptions{MaxCount: maxCount})
		},
	}

	cmd.Flags().IntVar(&maxCount, "max-count", 0, "Keep at most this many branches (defaults to behavior.max_branches)")

	return cmd
}

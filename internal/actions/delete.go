package actions

import (
	"fmt"

	"pgbranch.dev/pgbranch/internal/runtime"
	"pgbranch.dev/pgbranch/internal/tui"
)

// DeleteOptions contains options for the delete command
type DeleteOptions struct {
	Branch string
	Force  bool
}

// DeleteAction drops the database for a branch and forgets it.
func DeleteAction(ctx *runtime.Context, opts DeleteOptions) error {
	splog := ctx.Splog

	if opts.Branch == "" {
		return fmt.Errorf("delete requires a branch name")
	}

	if !opts.Force {
		msg := fmt.Sprintf("Drop the database for branch %q? This cannot be undone.", opts.Branch)
		confirmed, err := tui.Confirm(msg, false)
		if err != nil {
			return fmt.Errorf("failed to get confirmation: %w", err)
		}
		if !confirmed {
			splog.Info("Delete canceled.")
			return nil
		}
	}

	if err := ctx.Engine.Delete(ctx.Context, opts.Branch); err != nil {
		return fmt.Errorf("failed to delete database branch: %w", err)
	}

	splog.Info("Deleted database branch for %s", opts.Branch)
	return nil
}

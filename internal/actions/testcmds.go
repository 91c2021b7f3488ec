package actions

import (
	"fmt"
	"path/filepath"

	"pgbranch.dev/pgbranch/internal/postcmd"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// TestPostCommandsOptions contains options for the test-post-commands command
type TestPostCommandsOptions struct {
	// Branch to render bindings for. Defaults to the current branch.
	Branch string
}

// TestPostCommandsAction runs the configured post-command pipeline for a
// branch without switching to it. Useful for debugging command templates.
func TestPostCommandsAction(ctx *runtime.Context, opts TestPostCommandsOptions) error {
	splog := ctx.Splog

	if len(ctx.Config.PostCommands) == 0 {
		splog.Info("No post-commands configured.")
		return nil
	}

	branch, err := resolveBranch(ctx, opts.Branch)
	if err != nil {
		return err
	}

	exec := postcmd.New(filepath.Dir(ctx.ConfigPath))
	results, runErr := exec.Run(ctx.Context, ctx.Config.PostCommands, currentBindings(ctx, branch))
	for _, step := range results {
		switch step.Outcome {
		case postcmd.OutcomeSkipped:
			splog.Info("skipped   %s", step.Name)
		case postcmd.OutcomeSucceeded:
			splog.Info("succeeded %s", step.Name)
		case postcmd.OutcomeFailed:
			splog.Error("failed    %s: %v", step.Name, step.Err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("post-command pipeline failed: %w", runErr)
	}
	splog.Info("All post-commands completed.")
	return nil
}

package actions

import (
	"fmt"

	"pgbranch.dev/pgbranch/internal/runtime"
)

// CleanupOptions contains options for the cleanup command
type CleanupOptions struct {
	// MaxCount overrides behavior.max_branches when positive.
	MaxCount int
}

// CleanupAction evicts the oldest database branches down to the limit.
func CleanupAction(ctx *runtime.Context, opts CleanupOptions) error {
	splog := ctx.Splog

	limit := opts.MaxCount
	if limit <= 0 {
		limit = ctx.Config.Behavior.MaxBranches
	}

	evicted, err := ctx.Engine.Cleanup(ctx.Context, limit)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if len(evicted) == 0 {
		splog.Info("Nothing to clean up (limit %d).", limit)
		return nil
	}
	for _, rec := range evicted {
		splog.Info("Dropped %s (branch %s)", rec.Database, rec.GitBranch)
	}
	splog.Info("Cleaned up %d database branch(es).", len(evicted))
	return nil
}

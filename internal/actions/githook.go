package actions

import (
	"pgbranch.dev/pgbranch/internal/runtime"
)

// GitHookOptions contains options for the hidden git-hook command
type GitHookOptions struct {
	// Event is the hook name that fired, post-checkout or post-merge.
	Event string
}

// GitHookAction handles a git hook invocation. It never returns an error:
// a broken database setup must not make git checkouts fail, so problems are
// logged and swallowed.
func GitHookAction(ctx *runtime.Context, opts GitHookOptions) error {
	splog := ctx.Splog

	branch, err := ctx.Repo.CurrentBranch()
	if err != nil {
		// Detached HEAD, mid-rebase and similar states have no branch to act on.
		splog.Debug("git-hook %s: no branch checked out: %v", opts.Event, err)
		return nil
	}

	res, err := ctx.Engine.HandleBranchChange(ctx.Context, branch)
	reportPipeline(splog, res)
	if err != nil {
		splog.Warn("pgbranch could not follow branch %s: %v", branch, err)
		return nil
	}
	if res == nil {
		splog.Debug("git-hook %s: branch %s filtered out", opts.Event, branch)
		return nil
	}

	if res.Template {
		splog.Info("pgbranch: on template database %s", ctx.Config.Database.TemplateDatabase)
		return nil
	}
	if res.Created {
		splog.Info("pgbranch: created database %s", res.Branch.Database)
	}
	splog.Info("pgbranch: now on %s", res.Branch.Database)
	return nil
}

// Package actions implements the command behaviors behind the CLI. Each
// action takes a runtime context plus an options struct and reports through
// the context's logger.
package actions

import (
	"fmt"

	"pgbranch.dev/pgbranch/internal/runtime"
)

// CreateOptions contains options for the create command
type CreateOptions struct {
	// Branch to create a database for. Defaults to the current branch.
	Branch string
}

// CreateAction creates a database branch for a git branch.
func CreateAction(ctx *runtime.Context, opts CreateOptions) error {
	splog := ctx.Splog

	branch, err := resolveBranch(ctx, opts.Branch)
	if err != nil {
		return err
	}

	rec, created, err := ctx.Engine.Create(ctx.Context, branch)
	if err != nil {
		return fmt.Errorf("failed to create database branch: %w", err)
	}

	if created {
		splog.Info("Created database %s for branch %s", rec.Database, rec.GitBranch)
	} else {
		splog.Info("Database %s already exists for branch %s", rec.Database, rec.GitBranch)
	}
	return nil
}

// resolveBranch falls back to the checked-out branch when none was given.
func resolveBranch(ctx *runtime.Context, branch string) (string, error) {
	if branch != "" {
		return branch, nil
	}
	current, err := ctx.Repo.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("failed to determine current branch: %w", err)
	}
	return current, nil
}

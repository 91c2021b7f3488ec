package actions

import (
	"fmt"
	"os"
	"path/filepath"

	"pgbranch.dev/pgbranch/internal/config"
	"pgbranch.dev/pgbranch/internal/runtime"
)

// InitOptions contains options for the init command
type InitOptions struct {
	Force        bool
	InstallHooks bool
}

// InitAction writes a default config file at the repository root and
// optionally installs the git hooks.
func InitAction(ctx *runtime.Context, opts InitOptions) error {
	splog := ctx.Splog

	path := filepath.Join(ctx.Repo.Root(), config.FileNames[0])
	if ctx.ConfigPath != "" && !opts.Force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", ctx.ConfigPath)
	}
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.Default()
	if main, err := ctx.Repo.DetectMainBranch(); err == nil {
		cfg.Git.MainBranch = main
	}

	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	splog.Info("Wrote %s", path)
	splog.Tip("Edit the database section to point at your PostgreSQL server, then run 'pgbranch check'.")

	if opts.InstallHooks {
		return InstallHooksAction(ctx, InstallHooksOptions{})
	}
	return nil
}

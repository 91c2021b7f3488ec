package actions

import (
	"fmt"

	"pgbranch.dev/pgbranch/internal/runtime"
)

// InstallHooksOptions contains options for the install-hooks command
type InstallHooksOptions struct{}

// InstallHooksAction installs the post-checkout and post-merge hooks.
func InstallHooksAction(ctx *runtime.Context, _ InstallHooksOptions) error {
	if err := ctx.Repo.InstallHooks(); err != nil {
		return fmt.Errorf("failed to install git hooks: %w", err)
	}
	ctx.Splog.Info("Installed post-checkout and post-merge hooks.")
	return nil
}

// UninstallHooksOptions contains options for the uninstall-hooks command
type UninstallHooksOptions struct{}

// UninstallHooksAction removes the hooks pgbranch installed, leaving any
// user-written hooks alone.
func UninstallHooksAction(ctx *runtime.Context, _ UninstallHooksOptions) error {
	if err := ctx.Repo.UninstallHooks(); err != nil {
		return fmt.Errorf("failed to uninstall git hooks: %w", err)
	}
	ctx.Splog.Info("Removed pgbranch git hooks.")
	return nil
}

package actions

import (
	"fmt"

	"pgbranch.dev/pgbranch/internal/runtime"
	"pgbranch.dev/pgbranch/internal/tui"
)

// CheckOptions contains options for the check command
type CheckOptions struct{}

// CheckAction verifies the local setup: config, server connectivity, the
// CREATEDB privilege, the template database and the git hooks.
func CheckAction(ctx *runtime.Context, _ CheckOptions) error {
	splog := ctx.Splog
	failures := 0

	pass := func(format string, args ...interface{}) {
		splog.Info("%s %s", tui.ColorGreen("✓"), fmt.Sprintf(format, args...))
	}
	fail := func(format string, args ...interface{}) {
		failures++
		splog.Info("%s %s", tui.ColorRed("✗"), fmt.Sprintf(format, args...))
	}

	pass("Git repository at %s", ctx.Repo.Root())

	if ctx.Config == nil {
		fail("No config file found. Run 'pgbranch init'.")
		return fmt.Errorf("1 check failed")
	}
	pass("Config at %s", ctx.ConfigPath)

	db := ctx.Config.Database
	if err := ctx.Driver.Ping(ctx.Context); err != nil {
		fail("PostgreSQL unreachable at %s:%d: %v", db.Host, db.Port, err)
	} else {
		pass("Connected to PostgreSQL at %s:%d as %s", db.Host, db.Port, db.User)

		if ok, err := ctx.Driver.CanCreateDatabases(ctx.Context); err != nil {
			fail("Could not check CREATEDB privilege: %v", err)
		} else if ok {
			pass("Role %s can create databases", db.User)
		} else {
			fail("Role %s lacks the CREATEDB privilege", db.User)
		}

		if exists, err := ctx.Driver.Exists(ctx.Context, db.TemplateDatabase); err != nil {
			fail("Could not check template database: %v", err)
		} else if exists {
			pass("Template database %s exists", db.TemplateDatabase)
		} else {
			fail("Template database %s does not exist", db.TemplateDatabase)
		}
	}

	if installed, err := ctx.Repo.HooksInstalled(); err != nil {
		fail("Could not inspect git hooks: %v", err)
	} else if installed {
		pass("Git hooks installed")
	} else {
		splog.Info("%s Git hooks not installed (run 'pgbranch install-hooks' for automatic switching)", tui.ColorYellow("-"))
	}

	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	splog.Info("All checks passed.")
	return nil
}

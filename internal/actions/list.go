package actions

import (
	"fmt"

	"pgbranch.dev/pgbranch/internal/runtime"
	"pgbranch.dev/pgbranch/internal/tui"
)

// ListOptions contains options for the list command
type ListOptions struct{}

// ListAction prints all database branches. When the server is unreachable it
// degrades to recorded state instead of failing.
func ListAction(ctx *runtime.Context, _ ListOptions) error {
	splog := ctx.Splog

	statuses, verified, err := ctx.Engine.Status(ctx.Context)
	if err != nil {
		return fmt.Errorf("failed to list database branches: %w", err)
	}
	if !verified {
		splog.Warn("Could not reach PostgreSQL at %s:%d; showing recorded state only",
			ctx.Config.Database.Host, ctx.Config.Database.Port)
	}

	current, err := ctx.Engine.Current()
	if err != nil {
		return err
	}
	if current == nil {
		splog.Info("On template database %s", tui.ColorCyan(ctx.Config.Database.TemplateDatabase))
	}

	if len(statuses) == 0 {
		splog.Info("No database branches. Run 'pgbranch create' to make one.")
		return nil
	}

	for _, bs := range statuses {
		marker := "  "
		name := bs.GitBranch
		if bs.Current {
			marker = "* "
			name = tui.ColorGreen(name)
		}
		line := fmt.Sprintf("%s%s %s", marker, name, tui.Dim(bs.Database))
		if bs.Missing {
			line += " " + tui.ColorRed("(database missing)")
		}
		splog.Info("%s", line)
	}
	return nil
}

package actions

import (
	"pgbranch.dev/pgbranch/internal/runtime"
	"pgbranch.dev/pgbranch/internal/template"
	"pgbranch.dev/pgbranch/internal/tui"
)

// TemplatesOptions contains options for the templates command
type TemplatesOptions struct {
	// Branch to render example values for. Defaults to the current branch.
	Branch string
}

// TemplatesAction lists the variables available in post-commands, with the
// values they would take for a branch.
func TemplatesAction(ctx *runtime.Context, opts TemplatesOptions) error {
	splog := ctx.Splog

	branch, err := resolveBranch(ctx, opts.Branch)
	if err != nil {
		return err
	}
	b := currentBindings(ctx, branch)

	splog.Info("Template variables for branch %s:", tui.ColorGreen(branch))
	for _, v := range template.Variables(b) {
		splog.Info("  {%s} = %s", v.Name, v.Value)
	}
	return nil
}

// currentBindings builds the post-command bindings for a branch.
func currentBindings(ctx *runtime.Context, branch string) template.Bindings {
	cfg := ctx.Config
	return template.Bindings{
		BranchName:   branch,
		DatabaseName: cfg.DatabaseName(branch),
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		TemplateDB:   cfg.Database.TemplateDatabase,
		Prefix:       cfg.Database.DatabasePrefix,
	}
}

package actions

import (
	"fmt"

	"pgbranch.dev/pgbranch/internal/engine"
	"pgbranch.dev/pgbranch/internal/postcmd"
	"pgbranch.dev/pgbranch/internal/runtime"
	"pgbranch.dev/pgbranch/internal/tui"
)

// SwitchOptions contains options for the switch command
type SwitchOptions struct {
	// Branch to switch to. Defaults to the current git branch.
	Branch string
	// Template switches back to the template database.
	Template bool
	// Interactive picks the target from a list of known branches.
	Interactive bool
}

// SwitchAction points pgbranch at another database branch and runs the
// post-command pipeline.
func SwitchAction(ctx *runtime.Context, opts SwitchOptions) error {
	splog := ctx.Splog

	if opts.Template {
		res, err := ctx.Engine.SwitchToTemplate(ctx.Context)
		reportPipeline(splog, res)
		if err != nil {
			return fmt.Errorf("switch to template failed: %w", err)
		}
		splog.Info("Switched to template database %s", tui.ColorCyan(ctx.Config.Database.TemplateDatabase))
		return nil
	}

	branch := opts.Branch
	if opts.Interactive {
		picked, template, err := pickCandidate(ctx)
		if err != nil {
			return err
		}
		if template {
			return SwitchAction(ctx, SwitchOptions{Template: true})
		}
		branch = picked
	}

	branch, err := resolveBranch(ctx, branch)
	if err != nil {
		return err
	}

	res, err := ctx.Engine.Switch(ctx.Context, branch)
	reportPipeline(splog, res)
	if err != nil {
		return fmt.Errorf("switch failed: %w", err)
	}

	if res.Created {
		splog.Info("Created database %s", res.Branch.Database)
	}
	splog.Info("Switched to %s (%s)", tui.ColorGreen(res.Branch.GitBranch), tui.Dim(res.Branch.Database))
	return nil
}

// pickCandidate shows the interactive target picker. The bool result reports
// whether the template entry was chosen.
func pickCandidate(ctx *runtime.Context) (string, bool, error) {
	cands, err := ctx.Engine.Candidates()
	if err != nil {
		return "", false, err
	}

	options := make([]string, len(cands))
	for i, c := range cands {
		label := c.Name
		if c.IsTemplate {
			label = fmt.Sprintf("%s (main)", c.Database)
		}
		if c.IsCurrent {
			label = "* " + label
		} else {
			label = "  " + label
		}
		options[i] = label
	}

	index, err := tui.Pick("Switch to:", options)
	if err != nil {
		return "", false, err
	}
	return cands[index].Name, cands[index].IsTemplate, nil
}

func reportPipeline(splog *tui.Splog, res *engine.SwitchResult) {
	if res == nil {
		return
	}
	for _, step := range res.Pipeline {
		switch step.Outcome {
		case postcmd.OutcomeSkipped:
			splog.Debug("post-command %s skipped", step.Name)
		case postcmd.OutcomeSucceeded:
			splog.Info("post-command %s ok", step.Name)
		case postcmd.OutcomeFailed:
			splog.Error("post-command %s failed: %v", step.Name, step.Err)
		}
	}
}

// TestSwitchOptions contains options for the test-switch command
type TestSwitchOptions struct {
	Branch string
}

// TestSwitchAction simulates a switch to a branch: it explains what a hook
// event would do and runs the post-command pipeline with that branch's
// bindings, touching neither the cluster nor the state file.
func TestSwitchAction(ctx *runtime.Context, opts TestSwitchOptions) error {
	splog := ctx.Splog

	branch, err := resolveBranch(ctx, opts.Branch)
	if err != nil {
		return err
	}

	plan, err := ctx.Engine.Plan(branch)
	if err != nil {
		return err
	}
	switch {
	case plan.Template:
		splog.Info("Branch %s is the main branch: would switch to template database %s",
			branch, ctx.Config.Database.TemplateDatabase)
	case plan.Filtered:
		splog.Info("Branch %s is filtered out: nothing would happen (%s)", branch, plan.Reason)
		return nil
	case plan.WouldCreate:
		splog.Info("Branch %s would create and switch to database %s", branch, plan.Database)
	case plan.WouldSwitch:
		splog.Info("Branch %s would switch to database %s", branch, plan.Database)
	default:
		splog.Info("Branch %s has no database and auto-create is off: nothing would happen", branch)
		return nil
	}

	return TestPostCommandsAction(ctx, TestPostCommandsOptions{Branch: branch})
}

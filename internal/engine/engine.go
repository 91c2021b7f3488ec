// Package engine implements the branch lifecycle state machine. It owns the
// mapping between git branches and their databases, the persisted state file,
// and the post-command pipeline that runs after a switch.
package engine

import (
	"context"
	"time"

	"pgbranch.dev/pgbranch/internal/config"
	"pgbranch.dev/pgbranch/internal/naming"
	"pgbranch.dev/pgbranch/internal/pg"
	"pgbranch.dev/pgbranch/internal/postcmd"
	"pgbranch.dev/pgbranch/internal/state"
	"pgbranch.dev/pgbranch/internal/template"
)

type Engine struct {
	cfg    *config.Config
	filter *config.Filter
	store  *state.Store
	driver pg.Driver
	exec   *postcmd.Executor

	// now is swapped out in tests to get deterministic record ordering.
	now func() time.Time
}

func New(cfg *config.Config, store *state.Store, driver pg.Driver, exec *postcmd.Executor) (*Engine, error) {
	filter, err := config.NewFilter(cfg.Git)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		filter: filter,
		store:  store,
		driver: driver,
		exec:   exec,
		now:    time.Now,
	}, nil
}

// SwitchResult describes what a switch did: which record is now current (nil
// when the engine switched back to the template), whether a database had to be
// created along the way, and the per-step trace of the post-command pipeline.
type SwitchResult struct {
	Branch   *state.DatabaseBranch
	Template bool
	Created  bool
	Pipeline []postcmd.StepResult
}

func (e *Engine) bindings(branchName, dbName string) template.Bindings {
	return template.Bindings{
		BranchName:   branchName,
		DatabaseName: dbName,
		Host:         e.cfg.Database.Host,
		Port:         e.cfg.Database.Port,
		User:         e.cfg.Database.User,
		Password:     e.cfg.Database.Password,
		TemplateDB:   e.cfg.Database.TemplateDatabase,
		Prefix:       e.cfg.Database.DatabasePrefix,
	}
}

func (e *Engine) runPipeline(ctx context.Context, branchName, dbName string) ([]postcmd.StepResult, error) {
	if len(e.cfg.PostCommands) == 0 {
		return nil, nil
	}
	return e.exec.Run(ctx, e.cfg.PostCommands, e.bindings(branchName, dbName))
}

func normalize(branch string) string {
	return naming.Sanitize(branch)
}

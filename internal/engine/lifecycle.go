package engine

import (
	"context"
	stderrors "errors"

	"pgbranch.dev/pgbranch/internal/errors"
	"pgbranch.dev/pgbranch/internal/state"
)

// Create ensures a database exists for branch and records it. Creating a
// branch that already has a record is a no-op. The returned bool reports
// whether a new database was actually created (false when the record already
// existed or when an orphaned database was adopted).
func (e *Engine) Create(ctx context.Context, branch string) (*state.DatabaseBranch, bool, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, false, err
	}
	rec, created, err := e.ensure(ctx, st, branch)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return rec, false, nil
	}
	out := *rec
	if err := e.autoCleanup(ctx, st); err != nil {
		return nil, false, err
	}
	if err := e.store.Save(st); err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

// ensure adds a record for branch to st, creating the database if needed. It
// mutates st but does not save it. All validation happens before the database
// is touched, so a failed create leaves both the cluster and st unchanged.
func (e *Engine) ensure(ctx context.Context, st *state.EngineState, branch string) (*state.DatabaseBranch, bool, error) {
	name := normalize(branch)
	if name == state.TemplateMarker {
		// The marker names the template pointer in the state file; a git
		// branch claiming it would make OnTemplate lie after a switch.
		return nil, false, errors.NewNameCollisionError(branch, state.TemplateMarker, e.cfg.DatabaseName(branch))
	}
	if rec := st.Get(name); rec != nil {
		// Distinct git branches can sanitize to the same name; treat a
		// record owned by a different branch as a collision, not a no-op.
		if rec.GitBranch != "" && rec.GitBranch != branch {
			return nil, false, errors.NewNameCollisionError(branch, rec.GitBranch, rec.Database)
		}
		return rec, false, nil
	}

	dbName := e.cfg.DatabaseName(branch)
	if other := st.GetByDatabase(dbName); other != nil {
		return nil, false, errors.NewNameCollisionError(branch, other.GitBranch, dbName)
	}

	exists, err := e.driver.Exists(ctx, dbName)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		if err := e.driver.CreateFromTemplate(ctx, dbName, e.cfg.Database.TemplateDatabase); err != nil {
			return nil, false, err
		}
	}

	now := e.now()
	rec := state.DatabaseBranch{
		Name:           name,
		Database:       dbName,
		GitBranch:      branch,
		CreatedAt:      now,
		LastSwitchedAt: now,
	}
	st.Upsert(rec)
	return st.Get(name), !exists, nil
}

// Switch makes branch the current branch, creating its database first when no
// record exists yet. The updated pointer is persisted before post-commands
// run, so a failed pipeline reports its error but does not revert the switch.
func (e *Engine) Switch(ctx context.Context, branch string) (*SwitchResult, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	rec, created, err := e.ensure(ctx, st, branch)
	if err != nil {
		return nil, err
	}
	rec.LastSwitchedAt = e.now()
	st.Current = rec.Name
	current := *rec
	if err := e.autoCleanup(ctx, st); err != nil {
		return nil, err
	}
	if err := e.store.Save(st); err != nil {
		return nil, err
	}

	res := &SwitchResult{Branch: &current, Created: created}
	res.Pipeline, err = e.runPipeline(ctx, current.GitBranch, current.Database)
	return res, err
}

// SwitchToTemplate points the engine back at the template database without
// touching any branch database.
func (e *Engine) SwitchToTemplate(ctx context.Context) (*SwitchResult, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	st.Current = state.TemplateMarker
	if err := e.store.Save(st); err != nil {
		return nil, err
	}

	res := &SwitchResult{Template: true}
	res.Pipeline, err = e.runPipeline(ctx, state.TemplateMarker, e.cfg.Database.TemplateDatabase)
	return res, err
}

// Delete drops the database for branch and removes its record. The current
// branch and anything that maps to the template database are refused.
func (e *Engine) Delete(ctx context.Context, branch string) error {
	st, err := e.store.Load()
	if err != nil {
		return err
	}

	name := normalize(branch)
	rec := st.Get(name)
	if rec == nil {
		return errors.NewDatabaseNotFoundError(branch)
	}
	if rec.Database == e.cfg.Database.TemplateDatabase {
		return errors.NewProtectedBranchError(branch, "maps to the template database")
	}
	if st.Current == name {
		return errors.NewProtectedBranchError(branch, "currently switched to")
	}

	if err := e.dropDatabase(ctx, rec.Database); err != nil {
		return err
	}
	st.Remove(name)
	return e.store.Save(st)
}

// Cleanup evicts the oldest non-current records until at most maxCount remain,
// dropping their databases. It returns the evicted records.
func (e *Engine) Cleanup(ctx context.Context, maxCount int) ([]state.DatabaseBranch, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	evicted, err := e.evict(ctx, st, maxCount)
	if err != nil {
		return evicted, err
	}
	if len(evicted) == 0 {
		return nil, nil
	}
	return evicted, e.store.Save(st)
}

func (e *Engine) autoCleanup(ctx context.Context, st *state.EngineState) error {
	if !e.cfg.Behavior.AutoCleanup || e.cfg.Behavior.MaxBranches <= 0 {
		return nil
	}
	_, err := e.evict(ctx, st, e.cfg.Behavior.MaxBranches)
	return err
}

// evict drops oldest-first until at most maxCount non-current records remain.
// The current record never counts toward the limit and is never evicted.
func (e *Engine) evict(ctx context.Context, st *state.EngineState, maxCount int) ([]state.DatabaseBranch, error) {
	var victims []state.DatabaseBranch
	for _, rec := range st.List() {
		if rec.Name == st.Current || rec.Database == e.cfg.Database.TemplateDatabase {
			continue
		}
		victims = append(victims, rec)
	}
	if len(victims) <= maxCount {
		return nil, nil
	}
	victims = victims[:len(victims)-maxCount]

	var evicted []state.DatabaseBranch
	for _, rec := range victims {
		if err := e.dropDatabase(ctx, rec.Database); err != nil {
			return evicted, err
		}
		st.Remove(rec.Name)
		evicted = append(evicted, rec)
	}
	return evicted, nil
}

// dropDatabase tolerates a database that is already gone so stale records can
// still be cleaned up.
func (e *Engine) dropDatabase(ctx context.Context, dbName string) error {
	err := e.driver.Drop(ctx, dbName)
	if err != nil && !stderrors.Is(err, errors.ErrDatabaseNotFound) {
		return err
	}
	return nil
}

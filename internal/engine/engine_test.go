package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pgbranch.dev/pgbranch/internal/config"
	"pgbranch.dev/pgbranch/internal/errors"
	"pgbranch.dev/pgbranch/internal/postcmd"
	"pgbranch.dev/pgbranch/internal/state"
)

// fakeDriver is an in-memory Driver. It records the mutations the engine
// asks for so tests can assert on exactly what touched the cluster.
type fakeDriver struct {
	mu        sync.Mutex
	databases map[string]bool

	createErr error
	dropErr   error
	pingErr   error

	creates []string
	drops   []string
}

func newFakeDriver(existing ...string) *fakeDriver {
	d := &fakeDriver{databases: map[string]bool{}}
	for _, name := range existing {
		d.databases[name] = true
	}
	return d
}

func (d *fakeDriver) CreateFromTemplate(_ context.Context, name, template string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return d.createErr
	}
	if d.databases[name] {
		return errors.NewDatabaseExistsError(name)
	}
	d.databases[name] = true
	d.creates = append(d.creates, name)
	return nil
}

func (d *fakeDriver) Drop(_ context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dropErr != nil {
		return d.dropErr
	}
	if !d.databases[name] {
		return errors.NewDatabaseNotFoundError(name)
	}
	delete(d.databases, name)
	d.drops = append(d.drops, name)
	return nil
}

func (d *fakeDriver) Exists(_ context.Context, name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.databases[name], nil
}

func (d *fakeDriver) ListDatabases(_ context.Context, _ string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for name := range d.databases {
		out = append(out, name)
	}
	return out, nil
}

func (d *fakeDriver) Ping(_ context.Context) error { return d.pingErr }

func (d *fakeDriver) CanCreateDatabases(_ context.Context) (bool, error) { return true, nil }

type fixture struct {
	eng    *Engine
	drv    *fakeDriver
	store  *state.Store
	cfg    *config.Config
	dir    string
	ctx    context.Context
	lastTs time.Time
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	dir := t.TempDir()
	f := &fixture{
		drv:    newFakeDriver(),
		store:  state.NewStore(filepath.Join(dir, state.FileName)),
		cfg:    cfg,
		dir:    dir,
		ctx:    context.Background(),
		lastTs: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	eng, err := New(cfg, f.store, f.drv, postcmd.New(dir))
	require.NoError(t, err)
	// Monotonic fake clock so record ordering is deterministic.
	eng.now = func() time.Time {
		f.lastTs = f.lastTs.Add(time.Minute)
		return f.lastTs
	}
	f.eng = eng
	return f
}

func (f *fixture) loadState(t *testing.T) *state.EngineState {
	t.Helper()
	st, err := f.store.Load()
	require.NoError(t, err)
	return st
}

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates database and persists record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		rec, created, err := f.eng.Create(f.ctx, "feature/user-auth")
		require.NoError(t, err)
		require.True(t, created)
		require.Equal(t, "feature_user_auth", rec.Name)
		require.Equal(t, "pgbranch_feature_user_auth", rec.Database)
		require.Equal(t, "feature/user-auth", rec.GitBranch)
		require.Equal(t, []string{"pgbranch_feature_user_auth"}, f.drv.creates)

		st := f.loadState(t)
		require.NotNil(t, st.Get("feature_user_auth"))
		require.True(t, st.OnTemplate(), "create must not move the current pointer")
	})

	t.Run("existing record is a no-op", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		_, _, err := f.eng.Create(f.ctx, "feature/auth")
		require.NoError(t, err)

		rec, created, err := f.eng.Create(f.ctx, "feature/auth")
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, "pgbranch_feature_auth", rec.Database)
		require.Len(t, f.drv.creates, 1)
	})

	t.Run("adopts an orphaned database without copying", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		f.drv.databases["pgbranch_feature_auth"] = true

		rec, created, err := f.eng.Create(f.ctx, "feature/auth")
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, "pgbranch_feature_auth", rec.Database)
		require.Empty(t, f.drv.creates)
		require.NotNil(t, f.loadState(t).Get("feature_auth"))
	})

	t.Run("name collision detected before any mutation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		// A record left behind by a renamed branch still owns the
		// database name the new branch would compute.
		st := f.loadState(t)
		st.Upsert(state.DatabaseBranch{
			Name:      "old_feature",
			Database:  "pgbranch_feature_auth",
			GitBranch: "old-feature",
		})
		require.NoError(t, f.store.Save(st))

		_, _, err := f.eng.Create(f.ctx, "feature/auth")
		require.ErrorIs(t, err, errors.ErrNameCollision)
		var collision *errors.NameCollisionError
		require.ErrorAs(t, err, &collision)
		require.Equal(t, "pgbranch_feature_auth", collision.DatabaseName)
		require.Equal(t, "old-feature", collision.OtherBranch)

		require.Empty(t, f.drv.creates, "collision must not touch the cluster")
		require.Nil(t, f.loadState(t).Get("feature_auth"))
	})

	t.Run("branches sanitizing to the same name collide", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		_, _, err := f.eng.Create(f.ctx, "feature/auth")
		require.NoError(t, err)

		_, _, err = f.eng.Create(f.ctx, "feature.auth")
		require.ErrorIs(t, err, errors.ErrNameCollision)
		require.Len(t, f.drv.creates, 1)
	})

	t.Run("branch sanitizing to the template marker is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		_, _, err := f.eng.Create(f.ctx, "-main")
		require.ErrorIs(t, err, errors.ErrNameCollision)
		require.Empty(t, f.drv.creates)
		require.Empty(t, f.loadState(t).Branches)

		_, err = f.eng.Switch(f.ctx, "-main")
		require.ErrorIs(t, err, errors.ErrNameCollision)
		require.True(t, f.loadState(t).OnTemplate())
	})

	t.Run("template in use leaves state untouched", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		f.drv.createErr = errors.NewTemplateInUseError("template0")

		_, _, err := f.eng.Create(f.ctx, "feature/auth")
		require.ErrorIs(t, err, errors.ErrTemplateInUse)

		st := f.loadState(t)
		require.Empty(t, st.Branches)
		require.True(t, st.OnTemplate())
	})
}

func TestSwitch(t *testing.T) {
	t.Parallel()

	t.Run("creates on first switch and moves the pointer", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		res, err := f.eng.Switch(f.ctx, "feature/auth")
		require.NoError(t, err)
		require.True(t, res.Created)
		require.False(t, res.Template)
		require.Equal(t, "pgbranch_feature_auth", res.Branch.Database)

		st := f.loadState(t)
		require.Equal(t, "feature_auth", st.Current)
		require.False(t, st.OnTemplate())
	})

	t.Run("second switch reuses the record and bumps last switched", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		first, err := f.eng.Switch(f.ctx, "feature/auth")
		require.NoError(t, err)
		_, err = f.eng.Switch(f.ctx, "feature/billing")
		require.NoError(t, err)

		res, err := f.eng.Switch(f.ctx, "feature/auth")
		require.NoError(t, err)
		require.False(t, res.Created)
		require.True(t, res.Branch.LastSwitchedAt.After(first.Branch.LastSwitchedAt))
		require.Equal(t, first.Branch.CreatedAt, res.Branch.CreatedAt)
		require.Equal(t, "feature_auth", f.loadState(t).Current)
	})

	t.Run("runs post-commands with the branch bindings", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(cfg *config.Config) {
			cfg.PostCommands = []config.PostCommand{{
				Kind:   config.KindSimple,
				Simple: "printf '%s' '{db_name}' > out.txt",
			}}
		})

		res, err := f.eng.Switch(f.ctx, "feature/auth")
		require.NoError(t, err)
		require.Len(t, res.Pipeline, 1)
		require.Equal(t, postcmd.OutcomeSucceeded, res.Pipeline[0].Outcome)

		data, err := os.ReadFile(filepath.Join(f.dir, "out.txt"))
		require.NoError(t, err)
		require.Equal(t, "pgbranch_feature_auth", string(data))
	})

	t.Run("failed pipeline does not revert the switch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(cfg *config.Config) {
			cfg.PostCommands = []config.PostCommand{{
				Kind:   config.KindSimple,
				Simple: "exit 3",
			}}
		})

		res, err := f.eng.Switch(f.ctx, "feature/auth")
		require.ErrorIs(t, err, errors.ErrCommandFailed)
		require.NotNil(t, res)
		require.Equal(t, postcmd.OutcomeFailed, res.Pipeline[0].Outcome)

		st := f.loadState(t)
		require.Equal(t, "feature_auth", st.Current, "pointer moves before post-commands run")
		require.NotNil(t, st.Get("feature_auth"))
	})

	t.Run("switch to template sets the sentinel", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, err := f.eng.Switch(f.ctx, "feature/auth")
		require.NoError(t, err)

		res, err := f.eng.SwitchToTemplate(f.ctx)
		require.NoError(t, err)
		require.True(t, res.Template)
		require.Nil(t, res.Branch)

		st := f.loadState(t)
		require.True(t, st.OnTemplate())
		require.NotNil(t, st.Get("feature_auth"), "records survive switching away")
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	t.Run("drops the database and removes the record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, _, err := f.eng.Create(f.ctx, "feature/auth")
		require.NoError(t, err)

		require.NoError(t, f.eng.Delete(f.ctx, "feature/auth"))
		require.Equal(t, []string{"pgbranch_feature_auth"}, f.drv.drops)
		require.Nil(t, f.loadState(t).Get("feature_auth"))
	})

	t.Run("refuses the current branch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, err := f.eng.Switch(f.ctx, "feature/auth")
		require.NoError(t, err)

		err = f.eng.Delete(f.ctx, "feature/auth")
		require.ErrorIs(t, err, errors.ErrProtectedBranch)
		require.NotNil(t, f.loadState(t).Get("feature_auth"))
		require.Empty(t, f.drv.drops)
	})

	t.Run("refuses a record that maps to the template database", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		st := f.loadState(t)
		st.Upsert(state.DatabaseBranch{Name: "legacy", Database: f.cfg.Database.TemplateDatabase})
		require.NoError(t, f.store.Save(st))

		err := f.eng.Delete(f.ctx, "legacy")
		require.ErrorIs(t, err, errors.ErrProtectedBranch)
	})

	t.Run("unknown branch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		err := f.eng.Delete(f.ctx, "feature/nope")
		require.ErrorIs(t, err, errors.ErrDatabaseNotFound)
	})

	t.Run("stale record with missing database is still removed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, _, err := f.eng.Create(f.ctx, "feature/auth")
		require.NoError(t, err)
		delete(f.drv.databases, "pgbranch_feature_auth")

		require.NoError(t, f.eng.Delete(f.ctx, "feature/auth"))
		require.Nil(t, f.loadState(t).Get("feature_auth"))
	})
}

func TestCleanup(t *testing.T) {
	t.Parallel()

	t.Run("evicts oldest first down to the limit", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		for _, b := range []string{"b1", "b2", "b3", "b4", "b5", "b6"} {
			_, _, err := f.eng.Create(f.ctx, b)
			require.NoError(t, err)
		}

		evicted, err := f.eng.Cleanup(f.ctx, 5)
		require.NoError(t, err)
		require.Len(t, evicted, 1)
		require.Equal(t, "b1", evicted[0].Name)
		require.Equal(t, []string{"pgbranch_b1"}, f.drv.drops)
		require.Len(t, f.loadState(t).Branches, 5)
	})

	t.Run("current branch never counts and is never evicted", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, err := f.eng.Switch(f.ctx, "keep-me")
		require.NoError(t, err)
		for _, b := range []string{"b1", "b2", "b3"} {
			_, _, err := f.eng.Create(f.ctx, b)
			require.NoError(t, err)
		}

		evicted, err := f.eng.Cleanup(f.ctx, 1)
		require.NoError(t, err)
		require.Len(t, evicted, 2)

		st := f.loadState(t)
		require.NotNil(t, st.Get("keep_me"))
		require.Equal(t, "keep_me", st.Current)
		require.Len(t, st.Branches, 2)
	})

	t.Run("under the limit is a no-op", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, _, err := f.eng.Create(f.ctx, "b1")
		require.NoError(t, err)

		evicted, err := f.eng.Cleanup(f.ctx, 5)
		require.NoError(t, err)
		require.Empty(t, evicted)
	})

	t.Run("auto cleanup runs after create when enabled", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(cfg *config.Config) {
			cfg.Behavior.AutoCleanup = true
			cfg.Behavior.MaxBranches = 2
		})

		for _, b := range []string{"b1", "b2", "b3"} {
			_, _, err := f.eng.Create(f.ctx, b)
			require.NoError(t, err)
		}

		st := f.loadState(t)
		require.Len(t, st.Branches, 2)
		require.Nil(t, st.Get("b1"))
		require.Equal(t, []string{"pgbranch_b1"}, f.drv.drops)
	})
}

func TestHandleBranchChange(t *testing.T) {
	t.Parallel()

	t.Run("main branch switches back to the template", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, err := f.eng.Switch(f.ctx, "feature/auth")
		require.NoError(t, err)

		res, err := f.eng.HandleBranchChange(f.ctx, "main")
		require.NoError(t, err)
		require.NotNil(t, res)
		require.True(t, res.Template)
		require.True(t, f.loadState(t).OnTemplate())
	})

	t.Run("excluded branch does nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(cfg *config.Config) {
			cfg.Git.ExcludeBranches = append(cfg.Git.ExcludeBranches, "release/v2")
		})

		res, err := f.eng.HandleBranchChange(f.ctx, "release/v2")
		require.NoError(t, err)
		require.Nil(t, res)
		require.Empty(t, f.drv.creates)
	})

	t.Run("accepted branch switches and auto-creates", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		res, err := f.eng.HandleBranchChange(f.ctx, "feature/auth")
		require.NoError(t, err)
		require.NotNil(t, res)
		require.True(t, res.Created)
		require.Equal(t, "feature_auth", f.loadState(t).Current)
	})

	t.Run("no record and auto-create off does nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(cfg *config.Config) {
			cfg.Git.AutoCreateOnBranch = false
		})

		res, err := f.eng.HandleBranchChange(f.ctx, "feature/auth")
		require.NoError(t, err)
		require.Nil(t, res)
		require.Empty(t, f.drv.creates)
	})

	t.Run("existing record switches even with auto-create off", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(cfg *config.Config) {
			cfg.Git.AutoCreateOnBranch = false
		})
		_, _, err := f.eng.Create(f.ctx, "feature/auth")
		require.NoError(t, err)

		res, err := f.eng.HandleBranchChange(f.ctx, "feature/auth")
		require.NoError(t, err)
		require.NotNil(t, res)
		require.False(t, res.Created)
		require.Equal(t, "feature_auth", f.loadState(t).Current)
	})

	t.Run("auto-switch off disables hook handling entirely", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, func(cfg *config.Config) {
			cfg.Git.AutoSwitchOnBranch = false
		})

		res, err := f.eng.HandleBranchChange(f.ctx, "feature/auth")
		require.NoError(t, err)
		require.Nil(t, res)
	})
}

func TestQueries(t *testing.T) {
	t.Parallel()

	t.Run("candidates list template first", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, _, err := f.eng.Create(f.ctx, "b1")
		require.NoError(t, err)
		_, err = f.eng.Switch(f.ctx, "b2")
		require.NoError(t, err)

		cands, err := f.eng.Candidates()
		require.NoError(t, err)
		require.Len(t, cands, 3)
		require.True(t, cands[0].IsTemplate)
		require.Equal(t, "template0", cands[0].Database)
		require.False(t, cands[0].IsCurrent)
		require.Equal(t, "b1", cands[1].Name)
		require.True(t, cands[2].IsCurrent)
	})

	t.Run("status flags databases dropped behind our back", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, _, err := f.eng.Create(f.ctx, "b1")
		require.NoError(t, err)
		_, _, err = f.eng.Create(f.ctx, "b2")
		require.NoError(t, err)
		delete(f.drv.databases, "pgbranch_b1")

		statuses, verified, err := f.eng.Status(f.ctx)
		require.NoError(t, err)
		require.True(t, verified)
		require.Len(t, statuses, 2)
		require.True(t, statuses[0].Missing)
		require.False(t, statuses[1].Missing)
	})

	t.Run("status degrades when the server is unreachable", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		_, _, err := f.eng.Create(f.ctx, "b1")
		require.NoError(t, err)
		f.drv.pingErr = errors.NewConnectionError("localhost", 5432, os.ErrDeadlineExceeded)

		statuses, verified, err := f.eng.Status(f.ctx)
		require.NoError(t, err)
		require.False(t, verified)
		require.Len(t, statuses, 1)
		require.False(t, statuses[0].Missing)
	})

	t.Run("current", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)

		cur, err := f.eng.Current()
		require.NoError(t, err)
		require.Nil(t, cur)

		_, err = f.eng.Switch(f.ctx, "feature/auth")
		require.NoError(t, err)
		cur, err = f.eng.Current()
		require.NoError(t, err)
		require.Equal(t, "feature_auth", cur.Name)
	})
}

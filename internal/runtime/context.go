// Package runtime provides a context type that holds the engine, repo and
// logger for use throughout the application. This avoids passing multiple
// parameters.
package runtime

import (
	gocontext "context"
	"fmt"
	"os"
	"path/filepath"

	"pgbranch.dev/pgbranch/internal/config"
	"pgbranch.dev/pgbranch/internal/engine"
	"pgbranch.dev/pgbranch/internal/git"
	"pgbranch.dev/pgbranch/internal/pg"
	"pgbranch.dev/pgbranch/internal/postcmd"
	"pgbranch.dev/pgbranch/internal/state"
	"pgbranch.dev/pgbranch/internal/tui"
)

// Context provides access to the engine, repository and output for commands.
// Config and Engine are nil when pgbranch is not initialized; GetContext
// guards against that, GetContextAllowMissingConfig does not.
type Context struct {
	Context    gocontext.Context
	Engine     *engine.Engine
	Config     *config.Config
	ConfigPath string
	Repo       *git.Repo
	Driver     pg.Driver
	Splog      *tui.Splog

	client *pg.Client
}

// GetContext builds the full runtime context for commands that need an
// initialized pgbranch setup. It fails when no config file is found.
func GetContext() (*Context, error) {
	ctx, err := GetContextAllowMissingConfig()
	if err != nil {
		return nil, err
	}
	if ctx.Config == nil {
		return nil, fmt.Errorf("pgbranch not initialized. Run 'pgbranch init' first")
	}
	return ctx, nil
}

// GetContextAllowMissingConfig builds the runtime context for commands that
// work without a config file, like init and check. Config, Driver and Engine
// are nil when no config file was found.
func GetContextAllowMissingConfig() (*Context, error) {
	splog, err := tui.NewSplogWithLogFile(tui.GetLogFilePath())
	if err != nil {
		// File logging is best effort; fall back to console only.
		splog = tui.NewSplog()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	repo, err := git.Open(cwd)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Context: gocontext.Background(),
		Repo:    repo,
		Splog:   splog,
	}

	configPath, err := config.Find(cwd)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return ctx, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	ctx.Config = cfg
	ctx.ConfigPath = configPath

	ctx.client = pg.NewClient(cfg.Database)
	ctx.Driver = ctx.client

	store := state.NewStore(state.Path(repo.GitDir()))
	// Post-commands run from the directory holding the config file.
	exec := postcmd.New(filepath.Dir(configPath))
	eng, err := engine.New(cfg, store, ctx.Driver, exec)
	if err != nil {
		return nil, err
	}
	ctx.Engine = eng

	return ctx, nil
}

// Close releases the database connection and the log file.
func (c *Context) Close() {
	if c.client != nil {
		c.client.Close(gocontext.Background())
	}
	if c.Splog != nil {
		_ = c.Splog.Close()
	}
}

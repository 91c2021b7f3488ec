package engine

import (
	"context"

	"pgbranch.dev/pgbranch/internal/config"
	"pgbranch.dev/pgbranch/internal/state"
)

// Candidate is one switch target: either the template database or a recorded
// branch database.
type Candidate struct {
	Name       string
	Database   string
	IsTemplate bool
	IsCurrent  bool
}

// Candidates lists switch targets from recorded state alone, template first.
// It never touches the cluster, so pickers keep working when the database is
// unreachable.
func (e *Engine) Candidates() ([]Candidate, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	out := []Candidate{{
		Name:       state.TemplateMarker,
		Database:   e.cfg.Database.TemplateDatabase,
		IsTemplate: true,
		IsCurrent:  st.OnTemplate(),
	}}
	for _, rec := range st.List() {
		out = append(out, Candidate{
			Name:      rec.GitBranch,
			Database:  rec.Database,
			IsCurrent: rec.Name == st.Current,
		})
	}
	return out, nil
}

// BranchStatus pairs a record with whether its database still exists. Missing
// databases mean state drifted, usually a drop done outside pgbranch.
type BranchStatus struct {
	state.DatabaseBranch
	Current bool
	Missing bool
}

// Status lists all records reconciled against the cluster. When the driver is
// unreachable the records are returned as-is with verify=false so list output
// degrades instead of failing.
func (e *Engine) Status(ctx context.Context) (statuses []BranchStatus, verified bool, err error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, false, err
	}
	verified = e.driver.Ping(ctx) == nil
	for _, rec := range st.List() {
		bs := BranchStatus{DatabaseBranch: rec, Current: rec.Name == st.Current}
		if verified {
			exists, err := e.driver.Exists(ctx, rec.Database)
			if err != nil {
				return nil, false, err
			}
			bs.Missing = !exists
		}
		statuses = append(statuses, bs)
	}
	return statuses, verified, nil
}

// Current returns the record the engine is switched to, or nil when on the
// template database.
func (e *Engine) Current() (*state.DatabaseBranch, error) {
	st, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	return st.CurrentBranch(), nil
}

// Plan describes what a branch change event would do, without doing it.
type Plan struct {
	Template    bool
	Filtered    bool
	Reason      string
	WouldCreate bool
	WouldSwitch bool
	Database    string
}

// Plan is the dry-run counterpart of HandleBranchChange. It touches only the
// state file, never the cluster.
func (e *Engine) Plan(branch string) (Plan, error) {
	decision := e.filter.Decide(branch)
	if !e.filter.ShouldAutoSwitch(branch) {
		reason := "auto-switch is disabled"
		if decision == config.DecisionReject {
			reason = "excluded by the branch filter"
		}
		return Plan{Filtered: true, Reason: reason}, nil
	}
	if decision == config.DecisionTemplate {
		return Plan{Template: true, Database: e.cfg.Database.TemplateDatabase}, nil
	}

	st, err := e.store.Load()
	if err != nil {
		return Plan{}, err
	}
	p := Plan{Database: e.cfg.DatabaseName(branch)}
	switch {
	case st.Get(normalize(branch)) != nil:
		p.WouldSwitch = true
	case e.filter.ShouldAutoCreate(branch):
		p.WouldCreate = true
	}
	return p, nil
}

// HandleBranchChange is the git hook entry point. It applies the branch
// filter: the main branch switches back to the template, filtered branches do
// nothing, and accepted branches switch (creating only when auto-create is
// on). A nil result with nil error means the branch was filtered out.
func (e *Engine) HandleBranchChange(ctx context.Context, branch string) (*SwitchResult, error) {
	if !e.filter.ShouldAutoSwitch(branch) {
		return nil, nil
	}
	if e.filter.Decide(branch) == config.DecisionTemplate {
		return e.SwitchToTemplate(ctx)
	}

	st, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	if st.Get(normalize(branch)) == nil && !e.filter.ShouldAutoCreate(branch) {
		return nil, nil
	}
	return e.Switch(ctx, branch)
}

package config

import (
	"regexp"
	"slices"
)

// Decision is the outcome of filtering a branch name.
type Decision int

const (
	// DecisionAccept means the branch qualifies for a database branch.
	DecisionAccept Decision = iota
	// DecisionReject means the branch is filtered out.
	DecisionReject
	// DecisionTemplate means the branch is the main branch and routes to
	// the template database; no record is ever created for it.
	DecisionTemplate
)

// Filter decides whether a branch qualifies for automatic creation and
// switching. Rule order: main branch routes to the template database,
// exclusion rejects unconditionally, then the inclusion regex applies.
// Exclusion always wins over the inclusion regex.
type Filter struct {
	mainBranch string
	exclude    []string
	include    *regexp.Regexp
	autoCreate bool
	autoSwitch bool
}

// NewFilter builds a Filter from the git configuration. The inclusion
// regex is compiled once; Load has already validated it.
func NewFilter(git GitConfig) (*Filter, error) {
	f := &Filter{
		mainBranch: git.MainBranch,
		exclude:    git.ExcludeBranches,
		autoCreate: git.AutoCreateOnBranch,
		autoSwitch: git.AutoSwitchOnBranch,
	}
	if git.BranchFilterRegex != "" {
		re, err := regexp.Compile(git.BranchFilterRegex)
		if err != nil {
			return nil, err
		}
		f.include = re
	}
	return f, nil
}

// Decide classifies a branch name.
func (f *Filter) Decide(branch string) Decision {
	if branch == f.mainBranch {
		return DecisionTemplate
	}
	if slices.Contains(f.exclude, branch) {
		return DecisionReject
	}
	if f.include != nil && !f.include.MatchString(branch) {
		return DecisionReject
	}
	return DecisionAccept
}

// Accepts reports whether a branch qualifies for a database branch.
func (f *Filter) Accepts(branch string) bool {
	return f.Decide(branch) == DecisionAccept
}

// ShouldAutoCreate reports whether a hook event for branch should create
// a database branch.
func (f *Filter) ShouldAutoCreate(branch string) bool {
	return f.autoCreate && f.Decide(branch) == DecisionAccept
}

// ShouldAutoSwitch reports whether a hook event for branch should switch
// the active database. The main branch always switches, to the template.
func (f *Filter) ShouldAutoSwitch(branch string) bool {
	if !f.autoSwitch {
		return false
	}
	d := f.Decide(branch)
	return d == DecisionAccept || d == DecisionTemplate
}

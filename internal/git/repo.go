// Package git provides the version-control adapter: repository discovery,
// branch lookup and hook management, built on go-git.
package git

import (
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	pgbrancherrors "pgbranch.dev/pgbranch/internal/errors"
)

// HookEvent is the kind of git event that triggered an invocation.
type HookEvent string

const (
	// EventPostCheckout fires after a branch checkout.
	EventPostCheckout HookEvent = "post-checkout"
	// EventPostMerge fires after a merge completes.
	EventPostMerge HookEvent = "post-merge"
)

// Repo wraps a git repository.
type Repo struct {
	repo *gogit.Repository
	root string
}

// Open finds the repository containing path, searching parent directories.
func Open(path string) (*Repo, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Repo{repo: repo, root: worktree.Filesystem.Root()}, nil
}

// Root returns the repository root directory.
func (r *Repo) Root() string {
	return r.root
}

// GitDir returns the .git directory path.
func (r *Repo) GitDir() string {
	return filepath.Join(r.root, gogit.GitDirName)
}

// CurrentBranch returns the branch HEAD points at. A detached HEAD
// returns ErrNotOnBranch.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", pgbrancherrors.ErrNotOnBranch
	}
	return head.Name().Short(), nil
}

// Branches returns the local branch names.
func (r *Repo) Branches() ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}
	return names, nil
}

// BranchExists checks for a local branch by name.
func (r *Repo) BranchExists(name string) (bool, error) {
	branches, err := r.Branches()
	if err != nil {
		return false, err
	}
	for _, b := range branches {
		if b == name {
			return true, nil
		}
	}
	return false, nil
}

// DetectMainBranch guesses the repository's main branch: the branch HEAD
// of origin when set, otherwise the first of the conventional names that
// exists locally. Returns empty when nothing matches.
func (r *Repo) DetectMainBranch() (string, error) {
	if ref, err := r.repo.Reference(plumbing.NewRemoteHEADReferenceName("origin"), true); err == nil {
		if name := ref.Name().Short(); name != "" {
			return filepath.Base(name), nil
		}
	}

	branches, err := r.Branches()
	if err != nil {
		return "", err
	}
	for _, candidate := range []string{"main", "master", "trunk", "develop"} {
		for _, b := range branches {
			if b == candidate {
				return candidate, nil
			}
		}
	}
	return "", nil
}

// FindRoot returns the repository root for the current working directory.
func FindRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	repo, err := Open(wd)
	if err != nil {
		return "", err
	}
	return repo.Root(), nil
}

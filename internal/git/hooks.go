package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// hookMarker identifies hook scripts written by pgbranch, so uninstall
// never touches a hook the user wrote themselves.
const hookMarker = "# pgbranch auto-generated hook"

// hookNames are the git hooks pgbranch installs.
var hookNames = []string{string(EventPostCheckout), string(EventPostMerge)}

const hookScript = `#!/bin/sh
` + hookMarker + `
# Keeps the active PostgreSQL branch database in sync with the git branch.

# post-checkout passes $3=1 for branch checkouts, 0 for file checkouts.
if [ "$3" = "0" ]; then
    exit 0
fi

if command -v pgbranch >/dev/null 2>&1; then
    pgbranch git-hook --event "$(basename "$0")"
else
    echo "pgbranch not found in PATH, skipping database branch sync"
fi
`

// InstallHooks writes the post-checkout and post-merge hook scripts.
// Existing pgbranch hooks are overwritten; a foreign hook is an error.
func (r *Repo) InstallHooks() error {
	hooksDir := filepath.Join(r.GitDir(), "hooks")
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return fmt.Errorf("failed to create hooks directory: %w", err)
	}

	for _, name := range hookNames {
		path := filepath.Join(hooksDir, name)
		if _, err := os.Stat(path); err == nil {
			ours, err := isPgbranchHook(path)
			if err != nil {
				return err
			}
			if !ours {
				return fmt.Errorf("%s hook already exists and was not installed by pgbranch; remove it first", name)
			}
		}
		if err := os.WriteFile(path, []byte(hookScript), 0755); err != nil {
			return fmt.Errorf("failed to write %s hook: %w", name, err)
		}
	}
	return nil
}

// UninstallHooks removes the pgbranch hook scripts. Hooks not written by
// pgbranch are left in place.
func (r *Repo) UninstallHooks() error {
	hooksDir := filepath.Join(r.GitDir(), "hooks")

	for _, name := range hookNames {
		path := filepath.Join(hooksDir, name)
		ours, err := isPgbranchHook(path)
		if err != nil {
			return err
		}
		if !ours {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove %s hook: %w", name, err)
		}
	}
	return nil
}

// HooksInstalled reports whether any pgbranch hook is present.
func (r *Repo) HooksInstalled() (bool, error) {
	hooksDir := filepath.Join(r.GitDir(), "hooks")

	for _, name := range hookNames {
		ours, err := isPgbranchHook(filepath.Join(hooksDir, name))
		if err != nil {
			return false, err
		}
		if ours {
			return true, nil
		}
	}
	return false, nil
}

func isPgbranchHook(path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read hook %s: %w", path, err)
	}
	return strings.Contains(string(content), hookMarker), nil
}

// Package postcmd runs the ordered action pipeline configured to follow a
// branch switch: shell commands and file patching, with every string field
// rendered through the template engine first.
package postcmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"pgbranch.dev/pgbranch/internal/config"
	pgbrancherrors "pgbranch.dev/pgbranch/internal/errors"
	"pgbranch.dev/pgbranch/internal/template"
)

// Outcome is the per-step result recorded in the pipeline trace.
type Outcome int

const (
	// OutcomeSkipped means the step's condition evaluated to false.
	OutcomeSkipped Outcome = iota
	// OutcomeSucceeded means the step completed.
	OutcomeSucceeded
	// OutcomeFailed means the step failed; see StepResult.Err.
	OutcomeFailed
)

// String returns a display name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// StepResult records the outcome of one pipeline step.
type StepResult struct {
	Name    string
	Outcome Outcome
	Err     error
}

// Executor runs post-command pipelines relative to a base working directory
// (normally the repository root).
type Executor struct {
	workDir string
}

// New creates an Executor rooted at workDir.
func New(workDir string) *Executor {
	return &Executor{workDir: workDir}
}

// Run executes the pipeline in declared order and returns a result for
// every step, even when some steps are skipped or fail. A step failure is
// fatal to the remaining pipeline unless the step sets continue_on_error;
// the first fatal failure is returned alongside the trace collected so far.
func (x *Executor) Run(ctx context.Context, commands []config.PostCommand, b template.Bindings) ([]StepResult, error) {
	results := make([]StepResult, 0, len(commands))

	for _, cmd := range commands {
		result := x.runStep(ctx, cmd, b)
		results = append(results, result)

		if result.Outcome == OutcomeFailed && !continueOnError(cmd) {
			return results, result.Err
		}
	}

	return results, nil
}

func (x *Executor) runStep(ctx context.Context, cmd config.PostCommand, b template.Bindings) StepResult {
	result := StepResult{Name: cmd.Name()}

	ok, err := x.conditionHolds(cmd, b)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}
	if !ok {
		result.Outcome = OutcomeSkipped
		return result
	}

	switch cmd.Kind {
	case config.KindSimple:
		err = x.runCommand(ctx, cmd.Simple, "", nil, b)
	case config.KindComplex:
		err = x.runCommand(ctx, cmd.Complex.Command, cmd.Complex.WorkingDir, cmd.Complex.Environment, b)
	case config.KindReplace:
		err = x.runReplace(cmd.Replace, b)
	default:
		err = fmt.Errorf("unknown post-command kind %d", cmd.Kind)
	}

	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
	} else {
		result.Outcome = OutcomeSucceeded
	}
	return result
}

// conditionHolds evaluates a step's condition after rendering it. Simple
// commands carry no condition and always run.
func (x *Executor) conditionHolds(cmd config.PostCommand, b template.Bindings) (bool, error) {
	var condition, workingDir string
	switch cmd.Kind {
	case config.KindComplex:
		condition = cmd.Complex.Condition
		workingDir = cmd.Complex.WorkingDir
	case config.KindReplace:
		condition = cmd.Replace.Condition
	}

	condition = template.Render(condition, b)
	switch {
	case condition == "" || condition == "always":
		return true, nil
	case condition == "never":
		return false, nil
	case strings.HasPrefix(condition, "file_exists:"):
		path := strings.TrimPrefix(condition, "file_exists:")
		_, err := os.Stat(x.resolvePath(workingDir, path, b))
		return err == nil, nil
	default:
		return false, pgbrancherrors.NewConditionEvalError(condition)
	}
}

// runCommand spawns the rendered command through the shell with the
// environment overlay merged on top of the inherited process environment.
func (x *Executor) runCommand(ctx context.Context, command, workingDir string, environment map[string]string, b template.Bindings) error {
	rendered := template.Render(command, b)

	cmd := exec.CommandContext(ctx, "sh", "-c", rendered)
	cmd.Dir = x.stepDir(workingDir, b)

	env := os.Environ()
	for key, value := range environment {
		env = append(env, fmt.Sprintf("%s=%s", key, template.Render(value, b)))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return pgbrancherrors.NewCommandFailedError("", rendered, exitCode, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// runReplace applies the rendered pattern as a global regex substitution
// over the file's full contents. The write is atomic per file: a staging
// file replaces the original in one rename.
func (x *Executor) runReplace(action *config.ReplaceAction, b template.Bindings) error {
	path := x.resolvePath("", action.File, b)
	replacement := template.Render(action.Replacement, b)

	content, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if !action.CreateIfMissing {
			return pgbrancherrors.NewFileNotFoundError(path)
		}
		// Missing file with create_if_missing: the rendered replacement
		// becomes the file content.
		return writeFileAtomic(path, []byte(replacement), 0644)
	}

	pattern, err := compilePattern(template.Render(action.Pattern, b))
	if err != nil {
		return err
	}

	patched := pattern.ReplaceAllString(string(content), replacement)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return writeFileAtomic(path, []byte(patched), info.Mode().Perm())
}

// stepDir returns the effective working directory for a step.
func (x *Executor) stepDir(workingDir string, b template.Bindings) string {
	if workingDir == "" {
		return x.workDir
	}
	rendered := template.Render(workingDir, b)
	if filepath.IsAbs(rendered) {
		return rendered
	}
	return filepath.Join(x.workDir, rendered)
}

// resolvePath resolves a possibly-relative file path against the step's
// working directory.
func (x *Executor) resolvePath(workingDir, path string, b template.Bindings) string {
	rendered := template.Render(path, b)
	if filepath.IsAbs(rendered) {
		return rendered
	}
	return filepath.Join(x.stepDir(workingDir, b), rendered)
}

func continueOnError(cmd config.PostCommand) bool {
	switch cmd.Kind {
	case config.KindComplex:
		return cmd.Complex.ContinueOnError
	case config.KindReplace:
		return cmd.Replace.ContinueOnError
	}
	return false
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid replace pattern %q: %w", pattern, err)
	}
	return re, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create staging file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close staging file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set staging file permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

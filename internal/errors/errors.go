// Package errors provides sentinel errors and custom error types for the pgbranch application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrConfig indicates an invalid or unreadable configuration file
	ErrConfig = errors.New("invalid configuration")

	// ErrConnection indicates a failure to reach the database server
	ErrConnection = errors.New("database connection failed")

	// ErrNameCollision indicates two branches resolve to the same database name
	ErrNameCollision = errors.New("database name collision")

	// ErrTemplateInUse indicates the template database has active sessions
	ErrTemplateInUse = errors.New("template database in use")

	// ErrDatabaseExists indicates the database already exists
	ErrDatabaseExists = errors.New("database already exists")

	// ErrDatabaseNotFound indicates the database does not exist
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrProtectedBranch indicates an operation on the current branch or the template database
	ErrProtectedBranch = errors.New("branch is protected")

	// ErrCommandFailed indicates a post-command exited non-zero
	ErrCommandFailed = errors.New("command failed")

	// ErrFileNotFound indicates a replace step targeted a missing file
	ErrFileNotFound = errors.New("file not found")

	// ErrConditionEval indicates a post-command condition could not be evaluated
	ErrConditionEval = errors.New("condition evaluation failed")

	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")
)

// ConfigError represents an invalid configuration file
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("invalid configuration %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

// Is returns true if the target error is ErrConfig
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Err: err}
}

// ConnectionError represents a failure to reach the database server
type ConnectionError struct {
	Host string
	Port uint16
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s:%d: %v", e.Host, e.Port, e.Err)
}

// Is returns true if the target error is ErrConnection
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(host string, port uint16, err error) *ConnectionError {
	return &ConnectionError{Host: host, Port: port, Err: err}
}

// NameCollisionError represents two branches resolving to the same database name
type NameCollisionError struct {
	Branch       string
	OtherBranch  string
	DatabaseName string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("branch %s resolves to database %s, already used by branch %s",
		e.Branch, e.DatabaseName, e.OtherBranch)
}

// Is returns true if the target error is ErrNameCollision
func (e *NameCollisionError) Is(target error) bool {
	return target == ErrNameCollision
}

// NewNameCollisionError creates a new NameCollisionError
func NewNameCollisionError(branch, otherBranch, databaseName string) *NameCollisionError {
	return &NameCollisionError{
		Branch:       branch,
		OtherBranch:  otherBranch,
		DatabaseName: databaseName,
	}
}

// TemplateInUseError represents a template copy rejected because of active sessions
type TemplateInUseError struct {
	Template string
}

func (e *TemplateInUseError) Error() string {
	return fmt.Sprintf("template database %s has active sessions; close them and retry", e.Template)
}

// Is returns true if the target error is ErrTemplateInUse
func (e *TemplateInUseError) Is(target error) bool {
	return target == ErrTemplateInUse
}

// NewTemplateInUseError creates a new TemplateInUseError
func NewTemplateInUseError(template string) *TemplateInUseError {
	return &TemplateInUseError{Template: template}
}

// DatabaseExistsError represents an attempt to create a database that already exists
type DatabaseExistsError struct {
	Name string
}

func (e *DatabaseExistsError) Error() string {
	return fmt.Sprintf("database %s already exists", e.Name)
}

// Is returns true if the target error is ErrDatabaseExists
func (e *DatabaseExistsError) Is(target error) bool {
	return target == ErrDatabaseExists
}

// NewDatabaseExistsError creates a new DatabaseExistsError
func NewDatabaseExistsError(name string) *DatabaseExistsError {
	return &DatabaseExistsError{Name: name}
}

// DatabaseNotFoundError represents an operation on a database that does not exist
type DatabaseNotFoundError struct {
	Name string
}

func (e *DatabaseNotFoundError) Error() string {
	return fmt.Sprintf("database %s does not exist", e.Name)
}

// Is returns true if the target error is ErrDatabaseNotFound
func (e *DatabaseNotFoundError) Is(target error) bool {
	return target == ErrDatabaseNotFound
}

// NewDatabaseNotFoundError creates a new DatabaseNotFoundError
func NewDatabaseNotFoundError(name string) *DatabaseNotFoundError {
	return &DatabaseNotFoundError{Name: name}
}

// ProtectedBranchError represents a delete or eviction attempt on a protected branch
type ProtectedBranchError struct {
	Branch string
	Reason string
}

func (e *ProtectedBranchError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot delete %s: %s", e.Branch, e.Reason)
	}
	return fmt.Sprintf("cannot delete protected branch %s", e.Branch)
}

// Is returns true if the target error is ErrProtectedBranch
func (e *ProtectedBranchError) Is(target error) bool {
	return target == ErrProtectedBranch
}

// NewProtectedBranchError creates a new ProtectedBranchError
func NewProtectedBranchError(branch, reason string) *ProtectedBranchError {
	return &ProtectedBranchError{Branch: branch, Reason: reason}
}

// CommandFailedError represents a post-command that exited non-zero
type CommandFailedError struct {
	Name     string
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandFailedError) Error() string {
	msg := fmt.Sprintf("command failed with exit code %d: %s", e.ExitCode, e.Command)
	if e.Name != "" {
		msg = fmt.Sprintf("step %s: %s", e.Name, msg)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	return msg
}

// Is returns true if the target error is ErrCommandFailed
func (e *CommandFailedError) Is(target error) bool {
	return target == ErrCommandFailed
}

// NewCommandFailedError creates a new CommandFailedError
func NewCommandFailedError(name, command string, exitCode int, stderr string) *CommandFailedError {
	return &CommandFailedError{
		Name:     name,
		Command:  command,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
}

// FileNotFoundError represents a replace step targeting a missing file
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file %s does not exist", e.Path)
}

// Is returns true if the target error is ErrFileNotFound
func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// NewFileNotFoundError creates a new FileNotFoundError
func NewFileNotFoundError(path string) *FileNotFoundError {
	return &FileNotFoundError{Path: path}
}

// ConditionEvalError represents a post-command condition that could not be evaluated
type ConditionEvalError struct {
	Condition string
}

func (e *ConditionEvalError) Error() string {
	return fmt.Sprintf("unrecognized condition %q (expected always, never or file_exists:<path>)", e.Condition)
}

// Is returns true if the target error is ErrConditionEval
func (e *ConditionEvalError) Is(target error) bool {
	return target == ErrConditionEval
}

// NewConditionEvalError creates a new ConditionEvalError
func NewConditionEvalError(condition string) *ConditionEvalError {
	return &ConditionEvalError{Condition: condition}
}

// Package pg talks to the PostgreSQL server that hosts the template
// database and its branch copies.
package pg

import "context"

// Driver exposes the physical database operations the branch manager
// needs. Implementations are not safe for concurrent use; the engine runs
// a single logically sequential invocation.
type Driver interface {
	// CreateFromTemplate creates name as a copy of the template database.
	// Returns TemplateInUse when the template has other active sessions
	// and DatabaseExists when name is already taken.
	CreateFromTemplate(ctx context.Context, name, template string) error

	// Drop removes the named database. Returns DatabaseNotFound when it
	// does not exist.
	Drop(ctx context.Context, name string) error

	// Exists checks whether a database exists.
	Exists(ctx context.Context, name string) (bool, error)

	// ListDatabases returns all database names matching the LIKE pattern.
	ListDatabases(ctx context.Context, pattern string) ([]string, error)

	// Ping verifies connectivity to the server.
	Ping(ctx context.Context) error

	// CanCreateDatabases checks whether the connected role holds the
	// CREATEDB privilege.
	CanCreateDatabases(ctx context.Context) (bool, error)
}

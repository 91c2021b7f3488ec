package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pgbranch.dev/pgbranch/internal/config"
	pgbrancherrors "pgbranch.dev/pgbranch/internal/errors"
)

// PostgreSQL error codes the engine reacts to.
const (
	codeObjectInUse        = "55006"
	codeDuplicateDatabase  = "42P04"
	codeInvalidCatalogName = "3D000"
)

// maintenanceDB is the database used for the control connection; CREATE
// and DROP DATABASE cannot run against the database they target.
const maintenanceDB = "postgres"

// Client implements Driver against a live PostgreSQL server using pgx.
// The connection is established lazily on first use.
type Client struct {
	cfg  config.DatabaseConfig
	conn *pgx.Conn
}

var _ Driver = (*Client)(nil)

// NewClient creates a Client for the configured server. No connection is
// made until the first operation.
func NewClient(cfg config.DatabaseConfig) *Client {
	return &Client{cfg: cfg}
}

// Close terminates the control connection if one was established.
func (c *Client) Close(ctx context.Context) {
	if c.conn != nil {
		_ = c.conn.Close(ctx)
		c.conn = nil
	}
}

func (c *Client) connect(ctx context.Context) (*pgx.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	password, err := ResolvePassword(c.cfg)
	if err != nil {
		return nil, err
	}

	connCfg, err := pgx.ParseConfig(fmt.Sprintf("host=%s port=%d dbname=%s", c.cfg.Host, c.cfg.Port, maintenanceDB))
	if err != nil {
		return nil, fmt.Errorf("failed to build connection config: %w", err)
	}
	connCfg.User = c.cfg.User
	if password != "" {
		connCfg.Password = password
	}

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return nil, pgbrancherrors.NewConnectionError(c.cfg.Host, c.cfg.Port, err)
	}

	c.conn = conn
	return conn, nil
}

// CreateFromTemplate issues CREATE DATABASE ... WITH TEMPLATE ....
func (c *Client) CreateFromTemplate(ctx context.Context, name, template string) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("CREATE DATABASE %s WITH TEMPLATE %s",
		pgx.Identifier{name}.Sanitize(),
		pgx.Identifier{template}.Sanitize())

	if _, err := conn.Exec(ctx, query); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case codeObjectInUse:
				return pgbrancherrors.NewTemplateInUseError(template)
			case codeDuplicateDatabase:
				return pgbrancherrors.NewDatabaseExistsError(name)
			case codeInvalidCatalogName:
				return pgbrancherrors.NewDatabaseNotFoundError(template)
			}
		}
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// Drop issues DROP DATABASE.
func (c *Client) Drop(ctx context.Context, name string) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("DROP DATABASE %s", pgx.Identifier{name}.Sanitize())
	if _, err := conn.Exec(ctx, query); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case codeInvalidCatalogName:
				return pgbrancherrors.NewDatabaseNotFoundError(name)
			case codeObjectInUse:
				return fmt.Errorf("database %s has active sessions: %w", name, err)
			}
		}
		return fmt.Errorf("failed to drop database %s: %w", name, err)
	}
	return nil
}

// Exists checks pg_database for the given name.
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", name, err)
	}
	return exists, nil
}

// ListDatabases returns database names matching the LIKE pattern.
func (c *Client) ListDatabases(ctx context.Context, pattern string) ([]string, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, "SELECT datname FROM pg_database WHERE datname LIKE $1 ORDER BY datname", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list databases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan database name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	return conn.Ping(ctx)
}

// CanCreateDatabases checks the CREATEDB privilege of the connected role.
func (c *Client) CanCreateDatabases(ctx context.Context) (bool, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return false, err
	}

	var can bool
	err = conn.QueryRow(ctx, "SELECT rolcreatedb FROM pg_roles WHERE rolname = current_user").Scan(&can)
	if err != nil {
		return false, fmt.Errorf("failed to check CREATEDB privilege: %w", err)
	}
	return can, nil
}

package pg

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"pgbranch.dev/pgbranch/internal/config"
)

func writePgpass(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestLookupPgpass(t *testing.T) {
	t.Parallel()

	content := `
# development credentials
localhost:5432:postgres:postgres:devsecret
db.internal:5433:*:app:appsecret
*:*:*:fallback:anything
`

	t.Run("exact match", func(t *testing.T) {
		t.Parallel()
		password, ok := lookupPgpass(content, "localhost", 5432, "postgres", "postgres")
		require.True(t, ok)
		require.Equal(t, "devsecret", password)
	})

	t.Run("wildcard fields match", func(t *testing.T) {
		t.Parallel()
		password, ok := lookupPgpass(content, "db.internal", 5433, "postgres", "app")
		require.True(t, ok)
		require.Equal(t, "appsecret", password)

		password, ok = lookupPgpass(content, "anywhere", 9999, "whatever", "fallback")
		require.True(t, ok)
		require.Equal(t, "anything", password)
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		_, ok := lookupPgpass(content, "localhost", 5432, "postgres", "nobody")
		require.False(t, ok)
	})

	t.Run("malformed lines and comments are skipped", func(t *testing.T) {
		t.Parallel()
		_, ok := lookupPgpass("# comment\nnot-a-pgpass-line\n", "localhost", 5432, "postgres", "postgres")
		require.False(t, ok)
	})
}

func TestLookupService(t *testing.T) {
	t.Parallel()

	content := `
[other]
password = wrong

[myapp]
host = db.internal
password = servicesecret
`

	t.Run("finds password in the named section", func(t *testing.T) {
		t.Parallel()
		password, ok := lookupService(content, "myapp")
		require.True(t, ok)
		require.Equal(t, "servicesecret", password)
	})

	t.Run("unknown section", func(t *testing.T) {
		t.Parallel()
		_, ok := lookupService(content, "missing")
		require.False(t, ok)
	})
}

func TestResolvePassword(t *testing.T) {
	t.Run("config password wins when listed first", func(t *testing.T) {
		cfg := config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "fromconfig",
			Auth: config.AuthConfig{
				Methods: []config.AuthMethod{config.AuthPassword, config.AuthEnvironment},
			},
		}
		password, err := ResolvePassword(cfg)
		require.NoError(t, err)
		require.Equal(t, "fromconfig", password)
	})

	t.Run("environment variable", func(t *testing.T) {
		t.Setenv("PGPASSWORD", "fromenv")
		cfg := config.DatabaseConfig{
			Host: "localhost",
			Port: 5432,
			User: "postgres",
			Auth: config.AuthConfig{
				Methods: []config.AuthMethod{config.AuthEnvironment},
			},
		}
		password, err := ResolvePassword(cfg)
		require.NoError(t, err)
		require.Equal(t, "fromenv", password)
	})

	t.Run("host-specific environment variable", func(t *testing.T) {
		t.Setenv("PGPASSWORD_DB_INTERNAL", "hostsecret")
		cfg := config.DatabaseConfig{
			Host: "db.internal",
			Port: 5432,
			User: "postgres",
			Auth: config.AuthConfig{
				Methods: []config.AuthMethod{config.AuthEnvironment},
			},
		}
		password, err := ResolvePassword(cfg)
		require.NoError(t, err)
		require.Equal(t, "hostsecret", password)
	})

	t.Run("system method stops the chain", func(t *testing.T) {
		t.Setenv("PGPASSWORD", "shouldnotbeused")
		cfg := config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "shouldnotbeused",
			Auth: config.AuthConfig{
				Methods: []config.AuthMethod{config.AuthSystem, config.AuthEnvironment, config.AuthPassword},
			},
		}
		password, err := ResolvePassword(cfg)
		require.NoError(t, err)
		require.Empty(t, password)
	})

	t.Run("pgpass file from explicit path", func(t *testing.T) {
		dir := t.TempDir()
		pgpass := dir + "/.pgpass"
		writePgpass(t, pgpass, "localhost:5432:postgres:postgres:filesecret\n")

		cfg := config.DatabaseConfig{
			Host: "localhost",
			Port: 5432,
			User: "postgres",
			Auth: config.AuthConfig{
				Methods:    []config.AuthMethod{config.AuthPgpass},
				PgpassFile: pgpass,
			},
		}
		password, err := ResolvePassword(cfg)
		require.NoError(t, err)
		require.Equal(t, "filesecret", password)
	})
}

package pg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"pgbranch.dev/pgbranch/internal/config"
)

// ResolvePassword tries the configured authentication methods in
// preference order and returns the first password found. An empty result
// with a nil error means no password is needed (system auth, trust, or
// simply nothing configured).
func ResolvePassword(cfg config.DatabaseConfig) (string, error) {
	for _, method := range cfg.Auth.Methods {
		switch method {
		case config.AuthPassword:
			if cfg.Password != "" {
				return cfg.Password, nil
			}
		case config.AuthEnvironment:
			if password, ok := passwordFromEnv(cfg.Host); ok {
				return password, nil
			}
		case config.AuthPgpass:
			password, ok, err := passwordFromPgpass(cfg)
			if err != nil {
				return "", err
			}
			if ok {
				return password, nil
			}
		case config.AuthService:
			password, ok, err := passwordFromService(cfg.Auth.ServiceName)
			if err != nil {
				return "", err
			}
			if ok {
				return password, nil
			}
		case config.AuthPrompt:
			if cfg.Auth.PromptForPassword {
				return promptPassword(cfg.User)
			}
		case config.AuthSystem:
			// Peer, trust or other server-side auth; no password needed.
			return "", nil
		}
	}
	return "", nil
}

// passwordFromEnv checks PGPASSWORD and the host-specific
// PGPASSWORD_<HOST> variable.
func passwordFromEnv(host string) (string, bool) {
	if password := os.Getenv("PGPASSWORD"); password != "" {
		return password, true
	}
	hostVar := "PGPASSWORD_" + strings.ToUpper(strings.ReplaceAll(host, ".", "_"))
	if password := os.Getenv(hostVar); password != "" {
		return password, true
	}
	return "", false
}

func passwordFromPgpass(cfg config.DatabaseConfig) (string, bool, error) {
	path := cfg.Auth.PgpassFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false, nil
		}
		path = filepath.Join(home, ".pgpass")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read pgpass file %s: %w", path, err)
	}

	password, ok := lookupPgpass(string(content), cfg.Host, cfg.Port, maintenanceDB, cfg.User)
	return password, ok, nil
}

// lookupPgpass scans pgpass content (host:port:database:user:password
// lines, * as wildcard) for the first matching entry.
func lookupPgpass(content, host string, port uint16, database, user string) (string, bool) {
	portStr := fmt.Sprintf("%d", port)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ":")
		if len(parts) != 5 {
			continue
		}

		if matchesWildcard(parts[0], host) &&
			matchesWildcard(parts[1], portStr) &&
			matchesWildcard(parts[2], database) &&
			matchesWildcard(parts[3], user) {
			return parts[4], true
		}
	}
	return "", false
}

func matchesWildcard(entry, value string) bool {
	return entry == "*" || entry == value
}

func passwordFromService(serviceName string) (string, bool, error) {
	if serviceName == "" {
		return "", false, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, nil
	}
	path := filepath.Join(home, ".pg_service.conf")

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read service file %s: %w", path, err)
	}

	password, ok := lookupService(string(content), serviceName)
	return password, ok, nil
}

// lookupService scans pg_service.conf content for the password entry of
// the named [section].
func lookupService(content, serviceName string) (string, bool) {
	inSection := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inSection = line[1:len(line)-1] == serviceName
			continue
		}

		if !inSection {
			continue
		}
		if key, value, found := strings.Cut(line, "="); found && strings.TrimSpace(key) == "password" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

func promptPassword(user string) (string, error) {
	var password string
	prompt := &survey.Password{
		Message: fmt.Sprintf("Password for PostgreSQL user %q:", user),
	}
	if err := survey.AskOne(prompt, &password); err != nil {
		return "", fmt.Errorf("password prompt canceled: %w", err)
	}
	return password, nil
}

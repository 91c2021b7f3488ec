package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If PGBRANCH_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.pgbranch/logs/pgbranch.log
func GetLogFilePath() string {
	if customPath := os.Getenv("PGBRANCH_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "pgbranch.log"
	}

	return filepath.Join(homeDir, ".pgbranch", "logs", "pgbranch.log")
}

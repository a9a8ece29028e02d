package config

import (
	"os"
	"path/filepath"
)

const appName = "cwtrain"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	return xdgHome("XDG_DATA_HOME", ".local", "share")
}

// XDGStateHome returns the XDG state home or a default fallback.
func XDGStateHome() string {
	return xdgHome("XDG_STATE_HOME", ".local", "state")
}

func xdgHome(key string, fallback ...string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultLogPath returns the default session log path.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appName, "statistics.csv")
}

// DefaultJournalPath returns the default SQLite journal path.
func DefaultJournalPath() string {
	return filepath.Join(XDGDataHome(), appName, "journal.db")
}

// DefaultStateLogPath returns the diagnostics log path.
func DefaultStateLogPath() string {
	return filepath.Join(XDGStateHome(), appName, appName+".log")
}

// Package paths resolves configuration and data directory locations for
// the trialmirror CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative directory name used when no data dir override is active.
const DefaultDataDirName = ".trialmirror-data"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TRIALMIRROR_CONFIG_DIR"
	EnvDataDir   = "TRIALMIRROR_DATA_DIR"
)

// platformDir holds platform-detection functions that tests override.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration
// directory.
//
// Linux:   $XDG_CONFIG_HOME/trialmirror (fallback ~/.config/trialmirror)
// macOS:   ~/Library/Application Support/trialmirror
// Windows: %APPDATA%/trialmirror
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "trialmirror"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "trialmirror"), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "trialmirror"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > TRIALMIRROR_CONFIG_DIR env > platform default.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config file value > TRIALMIRROR_DATA_DIR env > $(CWD)/.trialmirror-data.
//
// The database file lives directly under the resolved directory.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// Package paths resolves mediamatch's per-user file locations.
//
// When running under sudo, paths resolve to the invoking user's
// directories (via SUDO_USER) rather than root's.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

// EnvDir overrides the mediamatch directory when set.
const EnvDir = "MEDIAMATCH_HOME"

// UserHomeDir returns the home directory of the actual user.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// AppDir returns ~/.config/mediamatch, or $MEDIAMATCH_HOME when set.
func AppDir() (string, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir, nil
	}
	home, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "mediamatch"), nil
}

func inAppDir(name ...string) (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, name...)...), nil
}

// ConfigPath returns the path to config.toml.
func ConfigPath() (string, error) {
	return inAppDir("config.toml")
}

// DatabasePath returns the path to the catalog database.
func DatabasePath() (string, error) {
	return inAppDir("catalog.db")
}

// SnapshotPath returns the default catalog snapshot location.
func SnapshotPath() (string, error) {
	return inAppDir("catalog.json")
}

// LogPath returns the default log file location.
func LogPath() (string, error) {
	return inAppDir("logs", "mediamatch.log")
}

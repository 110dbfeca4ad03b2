// Package config persists the webhub AppConfig record as a TOML file in the XDG
// config directory and watches it for external edits.
package config

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	appName        = "webhub"
	configFileName = "webhub.toml"
	schemaFileName = "webhub.schema.json"

	// EnvConfigDir overrides the directory holding webhub.toml.
	EnvConfigDir = "WEBHUB_CONFIG_DIR"

	dirPerm  = 0755
	filePerm = 0644
)

// Dirs holds the XDG Base Directory paths used by webhub.
type Dirs struct {
	ConfigHome string
	DataHome   string
	CacheHome  string
	StateHome  string
	RuntimeDir string
}

// GetDirs resolves the webhub directories:
// - $WEBHUB_CONFIG_DIR, else $XDG_CONFIG_HOME/webhub (default: ~/.config/webhub)
// - $XDG_DATA_HOME/webhub (default: ~/.local/share/webhub)
// - $XDG_CACHE_HOME/webhub (default: ~/.cache/webhub)
// - $XDG_STATE_HOME/webhub (default: ~/.local/state/webhub)
// - $XDG_RUNTIME_DIR/webhub, falling back to the state directory
func GetDirs() (*Dirs, error) {
	if os.Getenv("ENV") == "dev" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		devDir := filepath.Join(cwd, ".dev", appName)
		return &Dirs{
			ConfigHome: devDir,
			DataHome:   filepath.Join(devDir, "data"),
			CacheHome:  filepath.Join(devDir, "cache"),
			StateHome:  devDir,
			RuntimeDir: devDir,
		}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configHome := os.Getenv(EnvConfigDir)
	if configHome == "" {
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(homeDir, ".config")
		}
		configHome = filepath.Join(base, appName)
	}

	stateHome := xdgDir("XDG_STATE_HOME", homeDir, ".local", "state")
	dataHome := xdgDir("XDG_DATA_HOME", homeDir, ".local", "share")
	cacheHome := xdgDir("XDG_CACHE_HOME", homeDir, ".cache")

	runtimeDir := stateHome
	if xdgRuntime := os.Getenv("XDG_RUNTIME_DIR"); xdgRuntime != "" {
		runtimeDir = filepath.Join(xdgRuntime, appName)
	}

	return &Dirs{
		ConfigHome: configHome,
		DataHome:   dataHome,
		CacheHome:  cacheHome,
		StateHome:  stateHome,
		RuntimeDir: runtimeDir,
	}, nil
}

func xdgDir(env, homeDir string, fallback ...string) string {
	base := os.Getenv(env)
	if base == "" {
		base = filepath.Join(append([]string{homeDir}, fallback...)...)
	}
	return filepath.Join(base, appName)
}

// GetConfigDir returns the directory holding webhub.toml.
func GetConfigDir() (string, error) {
	dirs, err := GetDirs()
	if err != nil {
		return "", err
	}
	return dirs.ConfigHome, nil
}

// GetConfigFile returns the path of webhub.toml.
func GetConfigFile() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// GetRuntimeDir returns the directory for the instance lock and control socket.
func GetRuntimeDir() (string, error) {
	dirs, err := GetDirs()
	if err != nil {
		return "", err
	}
	if dirs.RuntimeDir == "" {
		return "", errors.New("no runtime directory")
	}
	return dirs.RuntimeDir, nil
}

// Package paths provides directory resolution for mkservice following XDG conventions.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "mkservice"

// Env is the interface for environment variable lookups.
// Implementations must return "" for unset variables.
type Env interface {
	Get(key string) string
}

// OSEnv reads variables from the process environment.
type OSEnv struct{}

// Get returns the value of key, or "" if unset.
func (OSEnv) Get(key string) string {
	return os.Getenv(key)
}

// ConfigDir computes the user configuration directory.
//
// Resolution order:
//  1. MKSERVICE_CONFIG_DIR env var (if set)
//  2. macOS: ~/Library/Preferences/mkservice
//  3. XDG_CONFIG_HOME/mkservice (if set)
//  4. ~/.config/mkservice
//
// The homeDir parameter must be an absolute path to the user's home directory.
// This function does not touch the filesystem.
// ~ inside env vars is treated as literal (not expanded).
func ConfigDir(env Env, homeDir string) string {
	return ConfigDirWithOS(env, homeDir, IsDarwin())
}

// IsDarwin returns true if the current OS is macOS.
func IsDarwin() bool {
	return runtime.GOOS == "darwin"
}

// ConfigDirWithOS is like ConfigDir but accepts an explicit OS flag for testing.
func ConfigDirWithOS(env Env, homeDir string, isDarwin bool) string {
	if v := env.Get("MKSERVICE_CONFIG_DIR"); v != "" {
		return v
	}
	if isDarwin {
		return filepath.Join(homeDir, "Library", "Preferences", appName)
	}
	if v := env.Get("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName)
	}
	return filepath.Join(homeDir, ".config", appName)
}

// UserTemplateDir returns where a user-supplied copy of the named template
// would live under configDir. The directory may not exist.
func UserTemplateDir(configDir, template string) string {
	return filepath.Join(configDir, "templates", template)
}

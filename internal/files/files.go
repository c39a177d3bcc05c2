// Package files contains filesystem helpers for the locations the
// diagnostics tooling writes to: XDG user directories, permission-checked
// directory creation, and executable discovery inside managed environments.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davidgut1982/mcp-diagnostics/internal/perms"
)

const (
	// EnvVarXDGCacheHome is the XDG Base Directory env var name for cache files.
	EnvVarXDGCacheHome = "XDG_CACHE_HOME"

	// EnvVarXDGDataHome is the XDG Base Directory env var name for data files.
	EnvVarXDGDataHome = "XDG_DATA_HOME"
)

// AppDirName returns the per-application directory name used under the XDG
// base directories.
func AppDirName() string {
	return "mcp-diagnostics"
}

// DiscoverExecutablesWithPaths scans a directory and returns a map of
// executable names to their full paths. Directories and hidden files are
// skipped, symlinks are followed, and unreadable entries are ignored rather
// than aborting the scan.
func DiscoverExecutablesWithPaths(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	executables := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		fullPath := filepath.Join(dir, entry.Name())

		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}

		if info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0 {
			executables[entry.Name()] = fullPath
		}
	}

	return executables, nil
}

// EnsureAtLeastRegularDir creates the directory with standard permissions if
// missing, and otherwise verifies it is no more permissive than
// perms.RegularDir. Used for the registry cache and diagnostic history.
func EnsureAtLeastRegularDir(path string) error {
	return ensureAtLeastDir(path, perms.RegularDir)
}

// EnsureAtLeastSecureDir is the owner-only variant of EnsureAtLeastRegularDir.
func EnsureAtLeastSecureDir(path string) error {
	return ensureAtLeastDir(path, perms.SecureDir)
}

// UserSpecificCacheDir returns the per-user cache directory, honoring
// XDG_CACHE_HOME and falling back to ~/.cache/mcp-diagnostics.
// See: https://specifications.freedesktop.org/basedir-spec/latest/
func UserSpecificCacheDir() (string, error) {
	return userSpecificDir(EnvVarXDGCacheHome, ".cache")
}

// UserSpecificDataDir returns the per-user data directory, used for the
// diagnostic history file. It honors XDG_DATA_HOME and falls back to
// ~/.local/share/mcp-diagnostics.
// See: https://specifications.freedesktop.org/basedir-spec/latest/
func UserSpecificDataDir() (string, error) {
	return userSpecificDir(EnvVarXDGDataHome, filepath.Join(".local", "share"))
}

// ensureAtLeastDir creates the directory with the given mode if missing. An
// existing directory must not be a symlink and must not grant any permission
// bit the required mode withholds. Permissions are never repaired, only
// reported. Parent directories keep their default modes; only the final
// directory's contents are protected.
func ensureAtLeastDir(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("could not ensure directory exists for '%s': %w", path, err)
	}

	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("could not stat directory '%s': %w", path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("path '%s' is a symlink, not a directory", path)
	}

	if !info.IsDir() {
		return fmt.Errorf("path '%s' is not a directory", path)
	}

	if !isPermissionAcceptable(info.Mode().Perm(), perm) {
		return fmt.Errorf(
			"incorrect permissions for directory '%s' (%#o, want %#o or more restrictive)",
			path, info.Mode().Perm(),
			perm,
		)
	}

	return nil
}

// isPermissionAcceptable reports whether actual grants no permission bit that
// required withholds.
func isPermissionAcceptable(actual, required os.FileMode) bool {
	return (actual & ^required) == 0
}

// userSpecificDir resolves an XDG base directory env var, requiring an
// absolute path when set, and falls back to homeDir/dir/AppDirName().
func userSpecificDir(envVar string, dir string) (string, error) {
	envVar = strings.TrimSpace(envVar)
	if !strings.HasPrefix(envVar, "XDG_") {
		return "", fmt.Errorf(
			"environment variable '%s' does not follow XDG Base Directory Specification",
			envVar,
		)
	}

	if ch, ok := os.LookupEnv(envVar); ok && strings.TrimSpace(ch) != "" {
		home := strings.TrimSpace(ch)
		if !filepath.IsAbs(home) {
			return "", fmt.Errorf("environment variable '%s' must be an absolute path, got: %s", envVar, home)
		}
		return filepath.Join(home, AppDirName()), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, dir, AppDirName()), nil
}

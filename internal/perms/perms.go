// Package perms centralizes the file and directory modes used when the
// diagnostics tooling writes to disk, so every writer applies the same policy.
package perms

import "os"

const (
	// RegularFile is used for non-sensitive files: log output, cached
	// registries, history entries. Owner read/write, world readable.
	RegularFile os.FileMode = 0o644

	// SecureFile is used for files that may carry credentials, such as a
	// registry containing server env overrides. Owner read/write only.
	SecureFile os.FileMode = 0o600
)

const (
	// RegularDir is used for cache and data directories. Owner full access,
	// world traversable.
	RegularDir os.FileMode = 0o755

	// SecureDir is used for directories holding sensitive content. Owner
	// full access only.
	SecureDir os.FileMode = 0o700
)

package cache

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/davidgut1982/mcp-diagnostics/internal/files"
)

// Option defines a functional option for configuring Cache.
type Option func(*Options) error

// Options contains optional configuration for the cache.
type Options struct {
	// dir is the directory where cache files are stored.
	dir string

	// ttl is the time-to-live for cached entries.
	ttl time.Duration

	// refreshCache forces cache refresh when true.
	refreshCache bool
}

func NewOptions(opts ...Option) (Options, error) {
	dir, err := DefaultCacheDir()
	if err != nil {
		return Options{}, err
	}

	// Default options.
	o := Options{
		dir:          dir,
		ttl:          DefaultCacheTTL(),
		refreshCache: false,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithDirectory sets the cache directory.
func WithDirectory(dir string) Option {
	return func(o *Options) error {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return fmt.Errorf("cache directory cannot be empty")
		}
		o.dir = dir
		return nil
	}
}

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) error {
		if ttl <= 0 {
			return fmt.Errorf("TTL must be positive, got %v", ttl)
		}
		o.ttl = ttl
		return nil
	}
}

// WithRefreshCache forces cache refresh.
func WithRefreshCache(refreshCache bool) Option {
	return func(o *Options) error {
		o.refreshCache = refreshCache
		return nil
	}
}

// DefaultCacheDir returns the user-specific directory for cached registries.
func DefaultCacheDir() (string, error) {
	dir, err := files.UserSpecificCacheDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "registries"), nil
}

// DefaultCacheTTL is the default time-to-live for cached registries.
func DefaultCacheTTL() time.Duration {
	return 24 * time.Hour
}

package cache

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/davidgut1982/mcp-diagnostics/internal/files"
)

// Cache manages locally cached copies of remote server registries.
// NewCache should be used to create instances of Cache.
type Cache struct {
	// dir is the directory where cache files are stored.
	dir string

	// ttl is the time-to-live for cached entries.
	ttl time.Duration

	// refresh forces cache refresh when true.
	refresh bool

	// logger is used for logging cache operations.
	logger hclog.Logger
}

// NewCache creates a new cache instance for remote server registries.
func NewCache(logger hclog.Logger, opts ...Option) (*Cache, error) {
	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	if err := files.EnsureAtLeastRegularDir(options.dir); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Cache{
		dir:     options.dir,
		logger:  logger.Named("cache"),
		refresh: options.refreshCache,
		ttl:     options.ttl,
	}, nil
}

// Fetch returns the path of a local copy of the registry at remoteURL,
// downloading it when the cached copy is missing or older than the TTL.
// A stale copy is reused when the download fails; the error is returned
// only when no local copy exists at all.
func (c *Cache) Fetch(remoteURL string) (string, error) {
	cachePath, err := c.entryPath(remoteURL)
	if err != nil {
		return "", err
	}

	if c.refresh || c.isExpired(cachePath) {
		c.logger.Debug("Cache refresh required", "url", remoteURL, "path", cachePath)

		if err := c.downloadToCache(remoteURL, cachePath); err != nil {
			if _, statErr := os.Stat(cachePath); statErr != nil {
				return "", fmt.Errorf("failed to fetch registry '%s': %w", remoteURL, err)
			}

			c.logger.Warn(
				"Failed to refresh registry, using stale copy",
				"url", remoteURL,
				"path", cachePath,
				"error", err,
			)
		}
	}

	return cachePath, nil
}

// entryPath maps a remote URL to a cache file path.
// The remote file extension is preserved so the registry format stays recognizable.
func (c *Cache) entryPath(remoteURL string) (string, error) {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", fmt.Errorf("invalid registry URL '%s': %w", remoteURL, err)
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" {
		ext = ".json"
	}

	hash := sha256.Sum256([]byte(remoteURL))
	filename := fmt.Sprintf("%x%s", hash, ext)

	return filepath.Join(c.dir, filename), nil
}

// downloadToCache downloads content from URL and saves to cache.
func (c *Cache) downloadToCache(url, cachePath string) error {
	c.logger.Debug("Downloading to cache", "url", url, "path", cachePath)

	// Download the content.
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch URL '%s': %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-OK HTTP status from URL '%s': %d", url, resp.StatusCode)
	}

	// Create temporary file first.
	tmpFile, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath) // Clean up on any error.
	}()

	// Copy content to temporary file.
	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	_ = tmpFile.Close()

	// Atomically rename to final location.
	if err := os.Rename(tmpPath, cachePath); err != nil {
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	c.logger.Debug("Successfully cached file", "url", url, "path", cachePath)
	return nil
}

// isExpired checks if a cache file is expired based on modification time.
func (c *Cache) isExpired(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true // Treat missing as expired.
	}
	return time.Since(info.ModTime()) > c.ttl
}

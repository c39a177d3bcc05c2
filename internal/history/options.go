package history

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/davidgut1982/mcp-diagnostics/internal/files"
)

// Options contains the immutable configuration for a FileStore.
// NewOptions should be used to create instances of Options.
type Options struct {
	// Path is the JSON Lines file that receives diagnostic runs.
	Path string
}

// Option defines a functional option for configuring Options.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	path, err := DefaultHistoryPath()
	if err != nil {
		return Options{}, err
	}

	options := Options{Path: path}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithPath configures the history file location.
func WithPath(path string) Option {
	return func(o *Options) error {
		path = strings.TrimSpace(path)
		if path == "" {
			return fmt.Errorf("history path cannot be empty")
		}
		o.Path = path
		return nil
	}
}

// DefaultHistoryPath returns the user-specific default history file location.
func DefaultHistoryPath() (string, error) {
	dir, err := files.UserSpecificDataDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "history.jsonl"), nil
}

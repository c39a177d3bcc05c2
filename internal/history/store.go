// Package history persists completed diagnostic runs so that trends can be
// inspected after the fact.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/files"
	"github.com/davidgut1982/mcp-diagnostics/internal/perms"
)

var _ contracts.HistoryStore = (*FileStore)(nil)

// Entry is one persisted diagnostic run.
type Entry struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	CheckType     string    `json:"check_type"`
	TriggeredBy   string    `json:"triggered_by"`
	ExecutionMSec int64     `json:"execution_ms"`
	Result        any       `json:"result"`
}

// FileStore appends diagnostic runs to a JSON Lines file.
// NewFileStore should be used to create instances of FileStore.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger hclog.Logger
}

// NewFileStore creates a file-backed history store.
func NewFileStore(logger hclog.Logger, opt ...Option) (*FileStore, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	if err := files.EnsureAtLeastRegularDir(filepath.Dir(opts.Path)); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	return &FileStore{
		path:   opts.Path,
		logger: logger.Named("history"),
	}, nil
}

// Save appends one diagnostic run and returns its identifier.
func (s *FileStore) Save(
	ctx context.Context,
	checkType string,
	triggeredBy string,
	result any,
	executionTime time.Duration,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	entry := Entry{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		CheckType:     checkType,
		TriggeredBy:   triggeredBy,
		ExecutionMSec: executionTime.Milliseconds(),
		Result:        result,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to encode history entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
	if err != nil {
		return "", fmt.Errorf("failed to open history file '%s': %w", s.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return "", fmt.Errorf("failed to write history entry: %w", err)
	}

	s.logger.Debug("Saved diagnostic run", "id", entry.ID, "type", checkType, "trigger", triggeredBy)

	return entry.ID, nil
}

// List returns the persisted runs, most recent last. Results are decoded
// into generic values; callers interested in a specific report shape should
// re-marshal the entry's Result.
func (s *FileStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file '%s': %w", s.path, err)
	}

	var entries []Entry
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode history entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}

package daemon

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/errors"
)

var _ contracts.HealthMonitor = (*HealthTracker)(nil)

// HealthTracker keeps the latest probe outcome for every tracked server.
type HealthTracker struct {
	mu       sync.RWMutex
	statuses map[string]domain.ServerHealth
}

// NewHealthTracker creates a tracker for the given server names. Servers
// start with no recorded status until their first probe lands.
func NewHealthTracker(serverNames []string) *HealthTracker {
	statuses := make(map[string]domain.ServerHealth, len(serverNames))
	for _, name := range serverNames {
		statuses[name] = domain.ServerHealth{Name: name}
	}
	return &HealthTracker{
		statuses: statuses,
	}
}

// Status returns the health status for a single tracked server.
func (h *HealthTracker) Status(name string) (domain.ServerHealth, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if health, ok := h.statuses[name]; ok {
		return health, nil
	}

	return domain.ServerHealth{}, fmt.Errorf("%w: %s", errors.ErrHealthNotTracked, name)
}

// List returns a copy of all known server health records, ordered by name.
func (h *HealthTracker) List() []domain.ServerHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := slices.Collect(maps.Values(h.statuses))
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Record stores the outcome of a probe for a tracked server.
// The current time is recorded as LastChecked; LastSuccessful moves forward
// only when the probe classified the server online.
func (h *HealthTracker) Record(result domain.ProbeResult) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now().UTC()

	prev, exists := h.statuses[result.Name]
	if !exists {
		return fmt.Errorf("%w: %s", errors.ErrHealthNotTracked, result.Name)
	}

	lastSuccessful := prev.LastSuccessful
	if result.Status == domain.ProbeStatusOnline {
		lastSuccessful = &now
	}

	h.statuses[result.Name] = domain.ServerHealth{
		Name:           result.Name,
		Status:         result.Status,
		Latency:        result.ResponseTime,
		Note:           result.Note,
		LastChecked:    &now,
		LastSuccessful: lastSuccessful,
	}

	return nil
}

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/errors"
)

// mockHealthMonitor implements contracts.HealthMonitor for testing.
type mockHealthMonitor struct {
	servers  map[string]domain.ServerHealth
	recorded []domain.ProbeResult
}

func newMockHealthMonitor(servers ...domain.ServerHealth) *mockHealthMonitor {
	m := &mockHealthMonitor{servers: make(map[string]domain.ServerHealth, len(servers))}
	for _, s := range servers {
		m.servers[s.Name] = s
	}
	return m
}

func (m *mockHealthMonitor) Status(name string) (domain.ServerHealth, error) {
	s, ok := m.servers[name]
	if !ok {
		return domain.ServerHealth{}, fmt.Errorf("%w: %s", errors.ErrHealthNotTracked, name)
	}
	return s, nil
}

func (m *mockHealthMonitor) List() []domain.ServerHealth {
	out := make([]domain.ServerHealth, 0, len(m.servers))
	for _, s := range m.servers {
		out = append(out, s)
	}
	return out
}

func (m *mockHealthMonitor) Record(result domain.ProbeResult) error {
	m.recorded = append(m.recorded, result)
	return nil
}

// mockBatchProber implements contracts.BatchProber with canned statuses per server.
type mockBatchProber struct {
	statuses map[string]domain.ProbeStatus
}

func (m *mockBatchProber) RunBatch(_ context.Context, descriptors []domain.ServerDescriptor) domain.BatchResult {
	results := make([]domain.ProbeResult, 0, len(descriptors))
	for _, desc := range descriptors {
		status, ok := m.statuses[desc.Name]
		if !ok {
			status = domain.ProbeStatusOffline
		}
		elapsed := 25 * time.Millisecond
		results = append(results, domain.ProbeResult{
			Name:         desc.Name,
			Transport:    desc.Transport,
			Status:       status,
			ResponseTime: &elapsed,
		})
	}
	return domain.NewBatchResult(results)
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}

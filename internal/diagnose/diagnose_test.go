package diagnose

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/davidgut1982/mcp-diagnostics/internal/config"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
)

// stubProber returns a fixed status for every descriptor.
type stubProber struct {
	status domain.ProbeStatus
}

func (s stubProber) RunBatch(_ context.Context, descriptors []domain.ServerDescriptor) domain.BatchResult {
	results := make([]domain.ProbeResult, 0, len(descriptors))
	for _, d := range descriptors {
		results = append(results, domain.ProbeResult{
			Name:      d.Name,
			Transport: d.Transport,
			Status:    s.status,
		})
	}
	return domain.NewBatchResult(results)
}

func cleanConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{Servers: []config.ServerEntry{
		{
			Name:        "stdio-server",
			Command:     "uvx",
			Args:        []string{"--from", t.TempDir(), "stdio-server"},
			Description: "a healthy stdio server",
		},
	}}
}

func TestRun_AllHealthy(t *testing.T) {
	t.Parallel()

	runner := NewRunner(hclog.NewNullLogger(), stubProber{status: domain.ProbeStatusOnline}, 5555, 5582)
	report := runner.Run(t.Context(), cleanConfig(t))

	require.Equal(t, StatusHealthy, report.Summary.Status)
	require.Zero(t, report.Summary.TotalIssues)
	require.Equal(t, []string{"All systems operational"}, report.Recommendations)
	require.False(t, report.Timestamp.IsZero())
}

func TestRun_OfflineServerIsCritical(t *testing.T) {
	t.Parallel()

	runner := NewRunner(hclog.NewNullLogger(), stubProber{status: domain.ProbeStatusOffline}, 5555, 5582)
	report := runner.Run(t.Context(), cleanConfig(t))

	require.Equal(t, StatusCritical, report.Summary.Status)
	require.Equal(t, 1, report.Summary.CriticalIssues)
	require.Contains(t, report.Recommendations, "CRITICAL: Restart offline MCP servers")
}

func TestRun_ConfigIssuesAreWarnings(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Servers: []config.ServerEntry{
		{Name: "undocumented", Command: "python3", Args: []string{"-m", "server"}},
	}}

	runner := NewRunner(hclog.NewNullLogger(), stubProber{status: domain.ProbeStatusOnline}, 5555, 5582)
	report := runner.Run(t.Context(), cfg)

	require.Equal(t, StatusWarning, report.Summary.Status)
	require.Zero(t, report.Summary.CriticalIssues)
	require.Equal(t, 1, report.Summary.TotalIssues)
	require.Contains(t, report.Recommendations, "Review and fix configuration issues in the server registry")
}

func TestRun_PortConflictIsCritical(t *testing.T) {
	t.Parallel()

	sse := func(name string) config.ServerEntry {
		return config.ServerEntry{
			Name:        name,
			Command:     "npx",
			Args:        []string{"-y", "supergateway", "--sse", "http://localhost:5556/sse"},
			Description: "sse gateway",
		}
	}
	cfg := &config.Config{Servers: []config.ServerEntry{sse("one"), sse("two")}}

	runner := NewRunner(hclog.NewNullLogger(), stubProber{status: domain.ProbeStatusOnline}, 5555, 5582)
	report := runner.Run(t.Context(), cfg)

	require.Equal(t, StatusCritical, report.Summary.Status)
	require.Contains(t, report.Recommendations, "CRITICAL: Resolve port conflicts immediately")
	require.Len(t, report.PortCheck.Conflicts, 1)
}

package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/errors"
)

func TestDomainProbeResult_ToAPIType(t *testing.T) {
	t.Parallel()

	elapsed := 1500 * time.Microsecond
	input := domain.ProbeResult{
		Name:         "github-mcp",
		Transport:    domain.TransportHTTP,
		Status:       domain.ProbeStatusOnline,
		ResponseTime: &elapsed,
		HTTPStatus:   200,
		Note:         "responding",
	}

	got, err := DomainProbeResult(input).ToAPIType()
	require.NoError(t, err)
	require.Equal(t, "github-mcp", got.Name)
	require.Equal(t, "http", got.Transport)
	require.Equal(t, "online", got.Status)
	require.NotNil(t, got.ResponseTimeMS)
	require.InDelta(t, 1.5, *got.ResponseTimeMS, 0.001)
	require.Equal(t, 200, got.HTTPStatus)
	require.Equal(t, "responding", got.Note)
}

func TestDomainProbeResult_ToAPIType_NoResponseTime(t *testing.T) {
	t.Parallel()

	input := domain.ProbeResult{
		Name:      "time-server",
		Transport: domain.TransportStdio,
		Status:    domain.ProbeStatusError,
		Error:     "no command configured",
	}

	got, err := DomainProbeResult(input).ToAPIType()
	require.NoError(t, err)
	require.Nil(t, got.ResponseTimeMS)
	require.Equal(t, "no command configured", got.Error)
}

func TestHandleProbeBatch(t *testing.T) {
	t.Parallel()

	descriptors := []domain.ServerDescriptor{
		{Name: "github-mcp", Transport: domain.TransportHTTP, URL: "http://localhost:3001/mcp"},
		{Name: "time-server", Transport: domain.TransportStdio, Command: "uvx"},
	}
	prober := &mockBatchProber{statuses: map[string]domain.ProbeStatus{
		"github-mcp":  domain.ProbeStatusOnline,
		"time-server": domain.ProbeStatusOffline,
	}}
	monitor := newMockHealthMonitor()

	resp, err := handleProbeBatch(context.Background(), monitor, prober, descriptors)
	require.NoError(t, err)

	require.Len(t, resp.Body.Results, 2)
	require.Equal(t, 2, resp.Body.Counts.Total)
	require.Equal(t, 1, resp.Body.Counts.Online)
	require.Equal(t, 1, resp.Body.Counts.Offline)

	require.Contains(t, resp.Body.ByTransport, "http")
	require.Contains(t, resp.Body.ByTransport, "stdio")
	require.Equal(t, 1, resp.Body.ByTransport["http"].Online)

	// Every probe outcome is recorded into tracked health.
	require.Len(t, monitor.recorded, 2)
}

func TestHandleProbeServer(t *testing.T) {
	t.Parallel()

	descriptors := []domain.ServerDescriptor{
		{Name: "github-mcp", Transport: domain.TransportHTTP, URL: "http://localhost:3001/mcp"},
	}
	prober := &mockBatchProber{statuses: map[string]domain.ProbeStatus{
		"github-mcp": domain.ProbeStatusOnline,
	}}
	monitor := newMockHealthMonitor()

	resp, err := handleProbeServer(context.Background(), monitor, prober, descriptors, "github-mcp")
	require.NoError(t, err)
	require.Equal(t, "github-mcp", resp.Body.Name)
	require.Equal(t, "online", resp.Body.Status)
	require.Len(t, monitor.recorded, 1)
}

func TestHandleProbeServer_NotFound(t *testing.T) {
	t.Parallel()

	prober := &mockBatchProber{}
	monitor := newMockHealthMonitor()

	_, err := handleProbeServer(context.Background(), monitor, prober, nil, "ghost")
	require.ErrorIs(t, err, errors.ErrServerNotFound)
	require.Empty(t, monitor.recorded)
}

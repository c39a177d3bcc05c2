package printer

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
)

func TestProbePrinter_OnlineServer(t *testing.T) {
	t.Parallel()

	latency := 12 * time.Millisecond
	buf := &bytes.Buffer{}
	p := NewProbePrinter()

	err := p.Item(buf, domain.ProbeResult{
		Name:         "time-server",
		Transport:    domain.TransportStdio,
		Status:       domain.ProbeStatusOnline,
		ResponseTime: &latency,
	})
	require.NoError(t, err)
	require.Equal(t, "  ✓ time-server (stdio): online [12ms]\n", buf.String())
}

func TestProbePrinter_OfflineServerWithDiagnostics(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	p := NewProbePrinter()

	err := p.Item(buf, domain.ProbeResult{
		Name:      "knowledge-mcp",
		Transport: domain.TransportStdio,
		Status:    domain.ProbeStatusOffline,
		Error:     "process exited immediately with code 1",
		Stderr:    "ModuleNotFoundError: No module named 'mcp'",
		RunningProcesses: []domain.ProcessInfo{
			{PID: "1234", Command: "python knowledge-mcp"},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "✗ knowledge-mcp (stdio): offline")
	require.Contains(t, out, "error: process exited immediately with code 1")
	require.Contains(t, out, "stderr: ModuleNotFoundError")
	require.Contains(t, out, "running processes: 1")
}

func TestProbePrinter_PartialServerShowsAlternative(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	p := NewProbePrinter()

	err := p.Item(buf, domain.ProbeResult{
		Name:      "diagnostic-mcp",
		Transport: domain.TransportStdio,
		Status:    domain.ProbeStatusPartial,
		AlternativeTransports: []domain.AlternativeTransport{
			{Type: "http", Port: 5556, Status: domain.ProbeStatusOnline, Server: "diagnostic-mcp"},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "⚠ diagnostic-mcp (stdio): partial")
	require.Contains(t, out, "alternative transport: http on port 5556")
}

func TestProbePrinter_HeaderAndFooter(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	p := NewProbePrinter()

	p.Header(buf, 2)
	p.Footer(buf, 2)

	out := buf.String()
	require.Contains(t, out, "HEALTH CHECK")
	require.Contains(t, out, divider())
	require.Contains(t, out, "Checked 2 server(s)")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abc...", truncate("abcdef", 3))
}

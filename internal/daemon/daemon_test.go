package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/davidgut1982/mcp-diagnostics/internal/config"
	"github.com/davidgut1982/mcp-diagnostics/internal/diagnose"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/flags"
)

// stubProber reports every server online without touching the host.
type stubProber struct{}

func (stubProber) Probe(_ context.Context, desc domain.ServerDescriptor, _ time.Duration) domain.ProbeResult {
	return domain.ProbeResult{
		Name:      desc.Name,
		Transport: desc.Transport,
		Status:    domain.ProbeStatusOnline,
	}
}

// stubHistoryStore remembers every saved diagnostic run.
type stubHistoryStore struct {
	saved []string
	err   error
}

func (s *stubHistoryStore) Save(_ context.Context, checkType string, _ string, _ any, _ time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, checkType)
	return fmt.Sprintf("run-%d", len(s.saved)), nil
}

func writeRegistry(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mcp_servers.json")
	data := `{
		"mcpServers": {
			"time-server": {
				"command": "uvx",
				"args": ["mcp-server-time"],
				"description": "Time utilities"
			},
			"weather-server": {
				"command": "",
				"description": "Weather over HTTP",
				"transport": {"type": "http", "url": "http://localhost:5561/health"}
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	return path
}

func TestNewDaemon_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		logger  hclog.Logger
		loader  config.Loader
		addr    string
		wantErr string
	}{
		{
			name:    "nil logger",
			loader:  &config.DefaultLoader{},
			addr:    "localhost:8090",
			wantErr: "logger cannot be nil",
		},
		{
			name:    "nil loader",
			logger:  hclog.NewNullLogger(),
			addr:    "localhost:8090",
			wantErr: "config loader cannot be nil",
		},
		{
			name:    "bad address",
			logger:  hclog.NewNullLogger(),
			loader:  &config.DefaultLoader{},
			addr:    "localhost",
			wantErr: "invalid api address",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewDaemon(tc.logger, tc.loader, tc.addr)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestNewDaemon_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := NewDaemon(
		hclog.NewNullLogger(),
		&config.DefaultLoader{},
		"localhost:8090",
		WithHealthCheckInterval(-time.Second),
	)
	require.ErrorContains(t, err, "invalid daemon options")
}

func TestDaemon_LoadConfigRefreshesDescriptors(t *testing.T) {
	path := writeRegistry(t)
	prev := flags.ConfigFile
	flags.ConfigFile = path
	t.Cleanup(func() { flags.ConfigFile = prev })

	d, err := NewDaemon(hclog.NewNullLogger(), &config.DefaultLoader{}, "localhost:8090")
	require.NoError(t, err)
	require.Empty(t, d.Descriptors())

	cfg, err := d.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, []string{"time-server", "weather-server"}, cfg.ListServers())

	descriptors := d.Descriptors()
	require.Len(t, descriptors, 2)
	require.Equal(t, domain.TransportStdio, descriptors[0].Transport)
	require.Equal(t, domain.TransportHTTP, descriptors[1].Transport)

	// Mutating the returned slice must not affect the daemon's copy.
	descriptors[0].Name = "mutated"
	require.Equal(t, "time-server", d.Descriptors()[0].Name)
}

func TestDaemon_ProbeAllServersRecordsResults(t *testing.T) {
	path := writeRegistry(t)
	prev := flags.ConfigFile
	flags.ConfigFile = path
	t.Cleanup(func() { flags.ConfigFile = prev })

	d, err := NewDaemon(hclog.NewNullLogger(), &config.DefaultLoader{}, "localhost:8090")
	require.NoError(t, err)

	_, err = d.LoadConfig()
	require.NoError(t, err)

	// Swap in a stub prober so no real subprocesses or sockets are involved.
	tracker := NewHealthTracker([]string{"time-server", "weather-server"})
	d.scheduler = d.scheduler.WithProbers(stubProber{}, stubProber{})

	d.probeAllServers(t.Context(), tracker)

	for _, name := range []string{"time-server", "weather-server"} {
		health, err := tracker.Status(name)
		require.NoError(t, err)
		require.Equal(t, domain.ProbeStatusOnline, health.Status)
		require.NotNil(t, health.LastChecked)
	}
}

func TestDiagnosticService_PersistsHistory(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	runner := diagnose.NewRunner(hclog.NewNullLogger(), stubBatchProber{}, 5555, 5582)
	history := &stubHistoryStore{}

	svc := &diagnosticService{
		logger:  hclog.NewNullLogger(),
		runner:  runner,
		cfg:     func() *config.Config { return cfg },
		history: history,
	}

	report := svc.RunDiagnostic(t.Context())
	require.Equal(t, diagnose.StatusHealthy, report.Summary.Status)
	require.Equal(t, []string{"full_diagnostic"}, history.saved)
}

func TestDiagnosticService_HistoryFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	runner := diagnose.NewRunner(hclog.NewNullLogger(), stubBatchProber{}, 5555, 5582)

	svc := &diagnosticService{
		logger:  hclog.NewNullLogger(),
		runner:  runner,
		cfg:     func() *config.Config { return cfg },
		history: &stubHistoryStore{err: fmt.Errorf("db unavailable")},
	}

	report := svc.RunDiagnostic(t.Context())
	require.Equal(t, diagnose.StatusHealthy, report.Summary.Status)
}

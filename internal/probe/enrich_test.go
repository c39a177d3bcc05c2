package probe

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
)

func TestFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no args", args: nil, want: ""},
		{name: "no from flag", args: []string{"run", "server"}, want: ""},
		{name: "from with path", args: []string{"--from", "/opt/server", "server"}, want: "/opt/server"},
		{name: "from without value", args: []string{"run", "--from"}, want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, fromPath(tc.args))
		})
	}
}

func TestHostEnricher_VenvHealth(t *testing.T) {
	t.Parallel()

	enricher := NewHostEnricher(hclog.NewNullLogger())

	t.Run("no venv directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		health := enricher.venvHealth(t.Context(), []string{"--from", dir})
		require.Nil(t, health)
	})

	t.Run("not path based", func(t *testing.T) {
		t.Parallel()

		health := enricher.venvHealth(t.Context(), []string{"run", "server"})
		require.Nil(t, health)
	})

	t.Run("venv without python is broken", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "venv", "bin"), 0o755))

		health := enricher.venvHealth(t.Context(), []string{"--from", dir})
		require.NotNil(t, health)
		require.Equal(t, "broken", health.Status)
		require.Contains(t, health.Error, "python executable not found")
	})

	t.Run("venv with non-executable python is broken", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		binDir := filepath.Join(dir, "venv", "bin")
		require.NoError(t, os.MkdirAll(binDir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(binDir, "python"), []byte("#!/bin/sh"), 0o644))

		health := enricher.venvHealth(t.Context(), []string{"--from", dir})
		require.NotNil(t, health)
		require.Equal(t, "broken", health.Status)
		require.Contains(t, health.Error, "python executable not found")
	})
}

func TestHostEnricher_ScanPortsMatchesIdentity(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"server":"matching-server","status":"ok"}`))
	}))
	t.Cleanup(srv.Close)

	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	enricher := NewHostEnricher(hclog.NewNullLogger())

	t.Run("matching identity found", func(t *testing.T) {
		t.Parallel()

		found := enricher.scanPorts(t.Context(), "matching-server", port, port)
		require.Len(t, found, 1)
		require.Equal(t, port, found[0].Port)
		require.Equal(t, "matching-server", found[0].Server)
		require.Equal(t, "http", found[0].Type)
	})

	t.Run("different identity ignored", func(t *testing.T) {
		t.Parallel()

		found := enricher.scanPorts(t.Context(), "other-server", port, port)
		require.Empty(t, found)
	})
}

func TestHostEnricher_ScanPortsSkipsDeadPorts(t *testing.T) {
	t.Parallel()

	// Reserve a port, then close it so nothing is listening.
	srv := httptest.NewServer(http.NotFoundHandler())
	_, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	srv.Close()

	enricher := NewHostEnricher(hclog.NewNullLogger())
	found := enricher.scanPorts(t.Context(), "any", port, port)
	require.Empty(t, found)
}

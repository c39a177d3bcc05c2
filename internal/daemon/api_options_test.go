package daemon

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewAPIOptions_Defaults(t *testing.T) {
	t.Parallel()

	opts, err := NewAPIOptions()
	require.NoError(t, err)

	require.False(t, opts.CORS.Enabled)
	require.Nil(t, opts.CORS.AllowOrigins)
	require.Equal(t, DefaultCORSAllowMethods(), opts.CORS.AllowMethods)
	require.Equal(t, DefaultCORSAllowHeaders(), opts.CORS.AllowedHeaders)
	require.False(t, opts.CORS.AllowCredentials)
	require.Equal(t, DefaultCORSMaxAge(), opts.CORS.MaxAge)
	require.Equal(t, DefaultAPIShutdownTimeout(), opts.ShutdownTimeout)
}

func TestNewAPIOptions_Custom(t *testing.T) {
	t.Parallel()

	opts, err := NewAPIOptions(
		WithCORSEnabled(true),
		WithCORSAllowOrigins([]string{"https://example.com"}),
		WithCORSAllowMethods([]string{http.MethodGet}),
		WithCORSAllowHeaders([]string{"X-Request-ID"}),
		WithCORSAllowCredentials(true),
		WithCORSMaxAge(time.Minute),
		WithShutdownTimeout(10*time.Second),
	)
	require.NoError(t, err)

	require.True(t, opts.CORS.Enabled)
	require.Equal(t, []string{"https://example.com"}, opts.CORS.AllowOrigins)
	require.Equal(t, []string{http.MethodGet}, opts.CORS.AllowMethods)
	require.Equal(t, []string{"X-Request-ID"}, opts.CORS.AllowedHeaders)
	require.True(t, opts.CORS.AllowCredentials)
	require.Equal(t, time.Minute, opts.CORS.MaxAge)
	require.Equal(t, 10*time.Second, opts.ShutdownTimeout)
}

func TestNewAPIOptions_NilOptionsSkipped(t *testing.T) {
	t.Parallel()

	opts, err := NewAPIOptions(nil, WithCORSEnabled(true), nil)
	require.NoError(t, err)
	require.True(t, opts.CORS.Enabled)
}

func TestNewAPIOptions_InvalidShutdownTimeout(t *testing.T) {
	t.Parallel()

	_, err := NewAPIOptions(WithShutdownTimeout(0))
	require.ErrorContains(t, err, "shutdown timeout must be positive")
}

func TestIsValidAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "host and port", addr: "localhost:8090"},
		{name: "all interfaces", addr: "0.0.0.0:8090"},
		{name: "empty host", addr: ":8090"},
		{name: "named port", addr: "localhost:http"},
		{name: "missing port", addr: "localhost", wantErr: true},
		{name: "empty port", addr: "localhost:", wantErr: true},
		{name: "bad named port", addr: "localhost:nosuchport", wantErr: true},
		{name: "empty", addr: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := IsValidAddr(tc.addr)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

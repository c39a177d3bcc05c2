package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewOptions_Defaults(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions()
	require.NoError(t, err)

	require.Equal(t, 5*time.Second, opts.Timeout)
	require.Equal(t, int64(16), opts.StdioConcurrency)
	require.Equal(t, 50*time.Millisecond, opts.SettleDelay)
	require.Equal(t, 500, opts.StderrLimit)
	require.Equal(t, 100*time.Millisecond, opts.TerminateGrace)
	require.Equal(t, 5555, opts.PortRangeMin)
	require.Equal(t, 5582, opts.PortRangeMax)
	require.False(t, opts.CriticalOnly)
	require.Contains(t, opts.CriticalServers, "diagnostic-mcp")
}

func TestNewOptions_Custom(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions(
		WithTimeout(2*time.Second),
		WithStdioConcurrency(4),
		WithSettleDelay(10*time.Millisecond),
		WithStderrLimit(100),
		WithPortRange(8000, 8010),
		WithCriticalOnly(true),
		WithCriticalServers("alpha", "beta"),
	)
	require.NoError(t, err)

	require.Equal(t, 2*time.Second, opts.Timeout)
	require.Equal(t, int64(4), opts.StdioConcurrency)
	require.Equal(t, 10*time.Millisecond, opts.SettleDelay)
	require.Equal(t, 100, opts.StderrLimit)
	require.Equal(t, 8000, opts.PortRangeMin)
	require.Equal(t, 8010, opts.PortRangeMax)
	require.True(t, opts.CriticalOnly)
	require.Len(t, opts.CriticalServers, 2)
	require.Contains(t, opts.CriticalServers, "alpha")
}

func TestNewOptions_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{name: "zero timeout", opt: WithTimeout(0)},
		{name: "negative concurrency", opt: WithStdioConcurrency(-1)},
		{name: "negative settle delay", opt: WithSettleDelay(-time.Millisecond)},
		{name: "zero stderr limit", opt: WithStderrLimit(0)},
		{name: "zero terminate grace", opt: WithTerminateGrace(0)},
		{name: "port below range", opt: WithPortRange(0, 100)},
		{name: "port above range", opt: WithPortRange(100, 70000)},
		{name: "empty critical set", opt: WithCriticalServers()},
		{name: "nil enricher", opt: WithEnricher(nil)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewOptions(tc.opt)
			require.Error(t, err)
		})
	}
}

func TestNewOptions_InvertedPortRange(t *testing.T) {
	t.Parallel()

	_, err := NewOptions(WithPortRange(9000, 8000))
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds maximum")
}

package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/errors"
)

func TestHealthTracker_StatusUntracked(t *testing.T) {
	t.Parallel()

	tracker := NewHealthTracker([]string{"time-server"})

	_, err := tracker.Status("missing-server")
	require.ErrorIs(t, err, errors.ErrHealthNotTracked)
	require.ErrorContains(t, err, "missing-server")
}

func TestHealthTracker_RecordUntracked(t *testing.T) {
	t.Parallel()

	tracker := NewHealthTracker(nil)

	err := tracker.Record(domain.ProbeResult{Name: "ghost", Status: domain.ProbeStatusOnline})
	require.ErrorIs(t, err, errors.ErrHealthNotTracked)
}

func TestHealthTracker_RecordThenStatus(t *testing.T) {
	t.Parallel()

	tracker := NewHealthTracker([]string{"time-server"})

	latency := 42 * time.Millisecond
	err := tracker.Record(domain.ProbeResult{
		Name:         "time-server",
		Transport:    domain.TransportStdio,
		Status:       domain.ProbeStatusOnline,
		ResponseTime: &latency,
		Note:         "non-json response",
	})
	require.NoError(t, err)

	health, err := tracker.Status("time-server")
	require.NoError(t, err)
	require.Equal(t, domain.ProbeStatusOnline, health.Status)
	require.Equal(t, &latency, health.Latency)
	require.Equal(t, "non-json response", health.Note)
	require.NotNil(t, health.LastChecked)
	require.NotNil(t, health.LastSuccessful)
	require.Equal(t, *health.LastChecked, *health.LastSuccessful)
}

func TestHealthTracker_LastSuccessfulOnlyAdvancesWhenOnline(t *testing.T) {
	t.Parallel()

	tracker := NewHealthTracker([]string{"time-server"})

	require.NoError(t, tracker.Record(domain.ProbeResult{
		Name:   "time-server",
		Status: domain.ProbeStatusOnline,
	}))
	first, err := tracker.Status("time-server")
	require.NoError(t, err)
	require.NotNil(t, first.LastSuccessful)

	require.NoError(t, tracker.Record(domain.ProbeResult{
		Name:   "time-server",
		Status: domain.ProbeStatusOffline,
		Error:  "process exited immediately with code 1",
	}))
	second, err := tracker.Status("time-server")
	require.NoError(t, err)
	require.Equal(t, domain.ProbeStatusOffline, second.Status)
	require.NotNil(t, second.LastSuccessful)
	require.Equal(t, *first.LastSuccessful, *second.LastSuccessful)
	require.True(t, !second.LastChecked.Before(*first.LastChecked))
}

func TestHealthTracker_ListOrderedByName(t *testing.T) {
	t.Parallel()

	tracker := NewHealthTracker([]string{"zeta", "alpha", "mike"})

	list := tracker.List()
	require.Len(t, list, 3)
	require.Equal(t, "alpha", list[0].Name)
	require.Equal(t, "mike", list[1].Name)
	require.Equal(t, "zeta", list[2].Name)

	// No probes yet, so statuses are empty.
	for _, h := range list {
		require.Empty(t, h.Status)
		require.Nil(t, h.LastChecked)
	}
}

package contracts

import (
	"context"
	"time"

	"github.com/davidgut1982/mcp-diagnostics/internal/admission"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
)

// ServerProber probes a single MCP server for reachability.
// Implementations never return an error for probe failures; failures are
// classified into the returned result's status.
type ServerProber interface {
	// Probe checks one server within the given timeout.
	Probe(ctx context.Context, desc domain.ServerDescriptor, timeout time.Duration) domain.ProbeResult
}

// BatchProber runs a probing pass over a set of descriptors.
type BatchProber interface {
	// RunBatch probes every descriptor and aggregates the outcomes.
	// The returned batch contains exactly one result per descriptor.
	RunBatch(ctx context.Context, descriptors []domain.ServerDescriptor) domain.BatchResult
}

// HealthMonitor provides a way to interact with the tracked health of MCP servers.
type HealthMonitor interface {
	// Status returns the health status for a single tracked server.
	Status(name string) (domain.ServerHealth, error)

	// List returns a copy of all known server health records.
	List() []domain.ServerHealth

	// Record stores the outcome of a probe for a tracked server.
	Record(result domain.ProbeResult) error
}

// AdmissionRecorder accepts request outcomes for the diagnostic service itself.
type AdmissionRecorder interface {
	// RecordOutcome records one handled request; success=false counts as a rejection.
	RecordOutcome(success bool)
}

// AdmissionReader exposes side-effect-free snapshots of the service's own health.
type AdmissionReader interface {
	StartupStatus() admission.StartupStatus
	Liveness() admission.LivenessStatus
	Readiness() admission.ReadinessStatus
	Status() admission.CompositeStatus
}

// HistoryStore persists completed diagnostic runs for later trend analysis.
// Persistence and analytics live outside this module; the daemon only calls
// Save on a best-effort basis.
type HistoryStore interface {
	// Save records one diagnostic run and returns its storage identifier.
	Save(ctx context.Context, checkType string, triggeredBy string, result any, executionTime time.Duration) (string, error)
}

// TokenValidator validates bearer tokens for protected HTTP routes.
// Token issuance and storage live outside this module.
type TokenValidator interface {
	// Validate reports whether the token grants access.
	Validate(ctx context.Context, token string) (bool, error)
}

package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/davidgut1982/mcp-diagnostics/internal/api"
	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
)

// AdmissionController combines the read and record sides of the daemon's
// self-health state machine. The API server reads snapshots for the probe
// endpoints and records an outcome for every request it handles.
type AdmissionController interface {
	contracts.AdmissionReader
	contracts.AdmissionRecorder
}

// APIDependencies contains the required external dependencies for the API server.
// NewAPIDependencies should be used to create instances of APIDependencies.
type APIDependencies struct {
	// Addr specifies the network address to bind (e.g., "0.0.0.0:8090").
	Addr string

	// HealthTracker stores the last known health of each registered server.
	HealthTracker contracts.HealthMonitor

	// Prober runs on-demand probe batches for the server routes.
	Prober contracts.BatchProber

	// Admission is the daemon's own admission-control state machine.
	Admission AdmissionController

	// Diagnostics runs full diagnostic passes for the diagnostics route.
	Diagnostics api.DiagnosticRunner

	// Descriptors returns the current set of registered server descriptors.
	Descriptors func() []domain.ServerDescriptor

	// Tokens validates bearer tokens for protected routes. Optional; when nil
	// the API serves all routes unauthenticated.
	Tokens contracts.TokenValidator

	// Logger for API server operations.
	Logger hclog.Logger
}

// NewAPIDependencies creates and validates APIDependencies.
func NewAPIDependencies(
	logger hclog.Logger,
	healthTracker contracts.HealthMonitor,
	prober contracts.BatchProber,
	adm AdmissionController,
	diagnostics api.DiagnosticRunner,
	descriptors func() []domain.ServerDescriptor,
	addr string,
) (APIDependencies, error) {
	deps := APIDependencies{
		Addr:          addr,
		HealthTracker: healthTracker,
		Prober:        prober,
		Admission:     adm,
		Diagnostics:   diagnostics,
		Descriptors:   descriptors,
		Logger:        logger,
	}

	if err := deps.Validate(); err != nil {
		return APIDependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d APIDependencies) Validate() error {
	if err := IsValidAddr(d.Addr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.Addr, err)
	}
	if isNilValue(d.HealthTracker) {
		return fmt.Errorf("health tracker cannot be nil")
	}
	if isNilValue(d.Prober) {
		return fmt.Errorf("prober cannot be nil")
	}
	if isNilValue(d.Admission) {
		return fmt.Errorf("admission controller cannot be nil")
	}
	if isNilValue(d.Diagnostics) {
		return fmt.Errorf("diagnostic runner cannot be nil")
	}
	if d.Descriptors == nil {
		return fmt.Errorf("descriptor source cannot be nil")
	}
	if isNilValue(d.Logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	return nil
}

// isNilValue reports whether v is nil, including a typed nil inside an interface.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

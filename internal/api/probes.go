package api

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davidgut1982/mcp-diagnostics/internal/admission"
	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
)

// ServiceName identifies this service in basic health responses.
const ServiceName = "mcp-diagnostics"

// BasicHealth is the minimal always-200 health payload for load balancers.
type BasicHealth struct {
	Status    string    `json:"status"`
	Server    string    `json:"server"`
	Timestamp time.Time `json:"timestamp"`
}

// BasicHealthResponse is the response for the basic health endpoint.
type BasicHealthResponse struct {
	Body BasicHealth
}

// StartupProbe reports whether the configured startup duration has elapsed.
type StartupProbe struct {
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	UptimeSeconds    float64   `json:"uptime_seconds"`
	StartupSeconds   float64   `json:"startup_duration_seconds"`
	StartupComplete  bool      `json:"startup_complete"`
	RemainingSeconds *float64  `json:"startup_remaining_seconds,omitempty"`
}

// StartupProbeResponse is the response for the startup probe endpoint.
type StartupProbeResponse struct {
	Status int
	Body   StartupProbe
}

// LivenessProbe reports whether the service should be restarted.
type LivenessProbe struct {
	Status              string     `json:"status"`
	Timestamp           time.Time  `json:"timestamp"`
	UptimeSeconds       float64    `json:"uptime_seconds"`
	LastRequestAt       *time.Time `json:"last_request_at,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	Reason              string     `json:"reason,omitempty"`
}

// LivenessProbeResponse is the response for the liveness probe endpoint.
type LivenessProbeResponse struct {
	Status int
	Body   LivenessProbe
}

// ReadinessMetrics carries the counters behind a readiness decision.
type ReadinessMetrics struct {
	TotalRequests      int     `json:"total_requests"`
	FailedRequests     int     `json:"failed_requests"`
	CurrentRejections  int     `json:"current_rejections"`
	RejectionThreshold int     `json:"rejection_threshold"`
	ErrorRate          float64 `json:"error_rate"`
	DegradedThreshold  float64 `json:"degraded_threshold"`
}

// ReadinessProbe reports whether the service should receive traffic.
type ReadinessProbe struct {
	Status           string           `json:"status"`
	Timestamp        time.Time        `json:"timestamp"`
	Degraded         bool             `json:"degraded"`
	Metrics          ReadinessMetrics `json:"metrics"`
	UptimeSeconds    float64          `json:"uptime_seconds"`
	UnreadySince     *time.Time       `json:"unready_since,omitempty"`
	RecoverySeconds  *float64         `json:"recovery_in_seconds,omitempty"`
	RemainingSeconds *float64         `json:"startup_remaining_seconds,omitempty"`
	Reason           string           `json:"reason,omitempty"`
}

// ReadinessProbeResponse is the response for the readiness probe endpoint.
type ReadinessProbeResponse struct {
	Status int
	Body   ReadinessProbe
}

// ProbeSummary condenses the three probes into booleans for quick checks.
type ProbeSummary struct {
	StartupComplete bool    `json:"startup_complete"`
	IsLive          bool    `json:"is_live"`
	IsReady         bool    `json:"is_ready"`
	IsDegraded      bool    `json:"is_degraded"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

// CompositeProbe merges the three probe views into one priority-ordered status.
type CompositeProbe struct {
	OverallStatus string    `json:"overall_status"`
	Timestamp     time.Time `json:"timestamp"`
	Probes        struct {
		Startup   StartupProbe   `json:"startup"`
		Liveness  LivenessProbe  `json:"liveness"`
		Readiness ReadinessProbe `json:"readiness"`
	} `json:"probes"`
	Summary ProbeSummary `json:"summary"`
}

// CompositeProbeResponse is the response for the composite status endpoint.
type CompositeProbeResponse struct {
	Status int
	Body   CompositeProbe
}

// DomainStartupStatus is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainStartupStatus admission.StartupStatus

// DomainLivenessStatus is a wrapper for admission liveness snapshots.
type DomainLivenessStatus admission.LivenessStatus

// DomainReadinessStatus is a wrapper for admission readiness snapshots.
type DomainReadinessStatus admission.ReadinessStatus

// DomainCompositeStatus is a wrapper for admission composite snapshots.
type DomainCompositeStatus admission.CompositeStatus

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainStartupStatus) ToAPIType() (StartupProbe, error) {
	return StartupProbe{
		Status:           string(d.Status),
		Timestamp:        d.Timestamp,
		UptimeSeconds:    seconds(d.Uptime),
		StartupSeconds:   seconds(d.StartupDuration),
		StartupComplete:  d.StartupComplete,
		RemainingSeconds: secondsPtr(d.StartupRemaining),
	}, nil
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainLivenessStatus) ToAPIType() (LivenessProbe, error) {
	return LivenessProbe{
		Status:              string(d.Status),
		Timestamp:           d.Timestamp,
		UptimeSeconds:       seconds(d.Uptime),
		LastRequestAt:       d.LastRequestAt,
		ConsecutiveFailures: d.ConsecutiveFailures,
		Reason:              d.Reason,
	}, nil
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainReadinessStatus) ToAPIType() (ReadinessProbe, error) {
	return ReadinessProbe{
		Status:    string(d.Status),
		Timestamp: d.Timestamp,
		Degraded:  d.Degraded,
		Metrics: ReadinessMetrics{
			TotalRequests:      d.Metrics.TotalRequests,
			FailedRequests:     d.Metrics.FailedRequests,
			CurrentRejections:  d.Metrics.CurrentRejections,
			RejectionThreshold: d.Metrics.RejectionThreshold,
			ErrorRate:          math.Round(d.Metrics.ErrorRate*10000) / 10000,
			DegradedThreshold:  d.Metrics.DegradedThreshold,
		},
		UptimeSeconds:    seconds(d.Uptime),
		UnreadySince:     d.UnreadySince,
		RecoverySeconds:  secondsPtr(d.RecoveryIn),
		RemainingSeconds: secondsPtr(d.StartupRemaining),
		Reason:           d.Reason,
	}, nil
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainCompositeStatus) ToAPIType() (CompositeProbe, error) {
	startup, err := DomainStartupStatus(d.Startup).ToAPIType()
	if err != nil {
		return CompositeProbe{}, err
	}
	liveness, err := DomainLivenessStatus(d.Liveness).ToAPIType()
	if err != nil {
		return CompositeProbe{}, err
	}
	readiness, err := DomainReadinessStatus(d.Readiness).ToAPIType()
	if err != nil {
		return CompositeProbe{}, err
	}

	probe := CompositeProbe{
		OverallStatus: string(d.Overall),
		Timestamp:     d.Timestamp,
		Summary: ProbeSummary{
			StartupComplete: d.Summary.StartupComplete,
			IsLive:          d.Summary.IsLive,
			IsReady:         d.Summary.IsReady,
			IsDegraded:      d.Summary.IsDegraded,
			UptimeSeconds:   seconds(d.Summary.Uptime),
		},
	}
	probe.Probes.Startup = startup
	probe.Probes.Liveness = liveness
	probe.Probes.Readiness = readiness

	return probe, nil
}

// RegisterProbeRoutes sets up the service's own health and orchestrator probe endpoints.
func RegisterProbeRoutes(routerAPI huma.API, reader contracts.AdmissionReader, apiPathPrefix string) {
	probeAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		probeAPI,
		huma.Operation{
			OperationID: "getHealth",
			Method:      http.MethodGet,
			Path:        "",
			Summary:     "Basic service health for load balancers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*BasicHealthResponse, error) {
			resp := &BasicHealthResponse{}
			resp.Body = BasicHealth{
				Status:    "healthy",
				Server:    ServiceName,
				Timestamp: time.Now().UTC(),
			}
			return resp, nil
		},
	)

	huma.Register(
		probeAPI,
		huma.Operation{
			OperationID: "getStartupProbe",
			Method:      http.MethodGet,
			Path:        "/startup",
			Summary:     "Startup probe; 503 until the startup duration has elapsed",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*StartupProbeResponse, error) {
			snapshot := reader.StartupStatus()
			body, err := DomainStartupStatus(snapshot).ToAPIType()
			if err != nil {
				return nil, err
			}
			return &StartupProbeResponse{Status: probeStatusCode(snapshot.Status), Body: body}, nil
		},
	)

	huma.Register(
		probeAPI,
		huma.Operation{
			OperationID: "getLivenessProbe",
			Method:      http.MethodGet,
			Path:        "/live",
			Summary:     "Liveness probe; 503 when the service should be restarted",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*LivenessProbeResponse, error) {
			snapshot := reader.Liveness()
			body, err := DomainLivenessStatus(snapshot).ToAPIType()
			if err != nil {
				return nil, err
			}
			return &LivenessProbeResponse{Status: probeStatusCode(snapshot.Status), Body: body}, nil
		},
	)

	huma.Register(
		probeAPI,
		huma.Operation{
			OperationID: "getReadinessProbe",
			Method:      http.MethodGet,
			Path:        "/ready",
			Summary:     "Readiness probe; 503 while traffic should not be admitted",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ReadinessProbeResponse, error) {
			snapshot := reader.Readiness()
			body, err := DomainReadinessStatus(snapshot).ToAPIType()
			if err != nil {
				return nil, err
			}
			return &ReadinessProbeResponse{Status: probeStatusCode(snapshot.Status), Body: body}, nil
		},
	)

	huma.Register(
		probeAPI,
		huma.Operation{
			OperationID: "getProbeStatus",
			Method:      http.MethodGet,
			Path:        "/status",
			Summary:     "Composite probe status; 503 only when critically unhealthy",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*CompositeProbeResponse, error) {
			snapshot := reader.Status()
			body, err := DomainCompositeStatus(snapshot).ToAPIType()
			if err != nil {
				return nil, err
			}
			code := http.StatusOK
			if snapshot.Overall == admission.OverallCritical {
				code = http.StatusServiceUnavailable
			}
			return &CompositeProbeResponse{Status: code, Body: body}, nil
		},
	)
}

func probeStatusCode(state admission.ProbeState) int {
	if state == admission.StateUp {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

func secondsPtr(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := seconds(*d)
	return &s
}

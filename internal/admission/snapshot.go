package admission

import "time"

const (
	StateUp   ProbeState = "UP"
	StateDown ProbeState = "DOWN"
)

const (
	OverallHealthy  OverallStatus = "healthy"
	OverallDegraded OverallStatus = "degraded"
	OverallUnready  OverallStatus = "unready"
	OverallStarting OverallStatus = "starting"
	OverallCritical OverallStatus = "critical"
)

const (
	ReasonStartupIncomplete  = "startup_incomplete"
	ReasonRejectionThreshold = "rejection_threshold_exceeded"
	ReasonCriticalFailures   = "critical_failure_threshold_exceeded"
)

// ProbeState is the binary outcome of a single orchestrator probe.
type ProbeState string

// OverallStatus is the merged service condition across all probes.
type OverallStatus string

// StartupStatus is a snapshot of the startup probe.
type StartupStatus struct {
	Status           ProbeState
	Timestamp        time.Time
	Uptime           time.Duration
	StartupDuration  time.Duration
	StartupComplete  bool
	StartupRemaining *time.Duration
}

// LivenessStatus is a snapshot of the liveness probe.
type LivenessStatus struct {
	Status              ProbeState
	Timestamp           time.Time
	Uptime              time.Duration
	LastRequestAt       *time.Time
	ConsecutiveFailures int
	Reason              string
}

// ReadinessMetrics carries the counters behind a readiness decision.
type ReadinessMetrics struct {
	TotalRequests      int
	FailedRequests     int
	CurrentRejections  int
	RejectionThreshold int
	ErrorRate          float64
	DegradedThreshold  float64
}

// ReadinessStatus is a snapshot of the readiness probe.
type ReadinessStatus struct {
	Status           ProbeState
	Timestamp        time.Time
	Degraded         bool
	Metrics          ReadinessMetrics
	Uptime           time.Duration
	UnreadySince     *time.Time
	RecoveryIn       *time.Duration
	StartupRemaining *time.Duration
	Reason           string
}

// CompositeSummary condenses the three probes into booleans for quick checks.
type CompositeSummary struct {
	StartupComplete bool
	IsLive          bool
	IsReady         bool
	IsDegraded      bool
	Uptime          time.Duration
}

// CompositeStatus merges the three probe views into one priority-ordered status.
type CompositeStatus struct {
	Overall   OverallStatus
	Timestamp time.Time
	Startup   StartupStatus
	Liveness  LivenessStatus
	Readiness ReadinessStatus
	Summary   CompositeSummary
}

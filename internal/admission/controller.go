// Package admission implements the self-health state machine for the
// diagnostic service. A sliding window of request outcomes drives the
// startup, liveness, and readiness signals exposed to orchestrators,
// tolerating transient error bursts without flapping.
package admission

import (
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

// livenessFailureThreshold is the number of consecutive failed requests at
// which the service reports itself dead.
const livenessFailureThreshold = 10

// Controller converts request outcomes into startup/liveness/readiness
// signals. A single instance is injected into every request-handling path;
// all methods are safe for concurrent use.
type Controller struct {
	logger hclog.Logger
	opts   Options

	mu                  sync.Mutex
	startedAt           time.Time
	windowStartedAt     time.Time
	rejectionCount      int
	isReady             bool
	unreadySince        *time.Time
	totalRequests       int
	failedRequests      int
	consecutiveFailures int
	lastRequestAt       *time.Time
}

// NewController creates a Controller that starts unready until the startup
// phase completes.
func NewController(logger hclog.Logger, opt ...Option) (*Controller, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	return &Controller{
		logger:          logger.Named("admission"),
		opts:            opts,
		startedAt:       now,
		windowStartedAt: now,
	}, nil
}

// Config returns the immutable configuration the controller was built with.
func (c *Controller) Config() Options {
	return c.opts
}

// RecordOutcome records one handled request. A failed request counts against
// both the rejection window and the consecutive-failure liveness counter; a
// successful one resets the liveness counter. When the sampling window has
// elapsed the readiness state is recomputed and the window restarts.
func (c *Controller) RecordOutcome(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.totalRequests++
	c.lastRequestAt = &now

	if success {
		c.consecutiveFailures = 0
	} else {
		c.failedRequests++
		c.rejectionCount++
		c.consecutiveFailures++
	}

	if now.Sub(c.windowStartedAt) > c.opts.SamplingInterval {
		c.recompute(now)
		c.rejectionCount = 0
		c.windowStartedAt = now
	}
}

// Recompute forces a readiness evaluation at the given instant, outside the
// regular sampling window roll-over. The rejection window is not reset.
func (c *Controller) Recompute(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recompute(now)
}

// recompute applies the readiness transition rules. Callers must hold mu.
func (c *Controller) recompute(now time.Time) {
	if now.Sub(c.startedAt) < c.opts.StartupDuration {
		// Still starting, remain unready.
		return
	}

	switch {
	case c.isReady && c.rejectionCount > c.opts.AllowedRejections:
		c.isReady = false
		c.unreadySince = &now
		c.logger.Warn("service marked unready",
			"rejections", c.rejectionCount,
			"window", c.opts.SamplingInterval,
			"threshold", c.opts.AllowedRejections,
		)
	case !c.isReady && c.unreadySince != nil:
		if now.Sub(*c.unreadySince) > c.opts.RecoveryInterval {
			c.isReady = true
			c.unreadySince = nil
			c.logger.Info("service marked ready, recovery period elapsed")
		}
	case !c.isReady:
		// First post-startup evaluation with no rejections behind it.
		c.isReady = true
		c.logger.Info("service marked ready, startup completed")
	}
}

// StartupStatus reports whether the startup phase has elapsed. It is a pure
// function of elapsed time and holds no other mutable state.
func (c *Controller) StartupStatus() StartupStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	uptime := now.Sub(c.startedAt)
	complete := uptime >= c.opts.StartupDuration

	status := StartupStatus{
		Status:          StateDown,
		Timestamp:       now,
		Uptime:          uptime,
		StartupDuration: c.opts.StartupDuration,
		StartupComplete: complete,
	}
	if complete {
		status.Status = StateUp
	} else {
		remaining := c.opts.StartupDuration - uptime
		status.StartupRemaining = &remaining
	}

	return status
}

// Liveness reports whether the service is alive. It goes down only when the
// consecutive-failure threshold is reached; a single success restores it.
func (c *Controller) Liveness() LivenessStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	status := LivenessStatus{
		Status:              StateUp,
		Timestamp:           now,
		Uptime:              now.Sub(c.startedAt),
		LastRequestAt:       c.lastRequestAt,
		ConsecutiveFailures: c.consecutiveFailures,
	}

	if c.consecutiveFailures >= livenessFailureThreshold {
		status.Status = StateDown
		status.Reason = ReasonCriticalFailures
	}

	return status
}

// Readiness reports whether the service should accept traffic, forcing a
// readiness evaluation if the sampling window elapsed without traffic.
func (c *Controller) Readiness() ReadinessStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if now.Sub(c.windowStartedAt) > c.opts.SamplingInterval {
		c.recompute(now)
	}

	errorRate := 0.0
	if c.totalRequests > 0 {
		errorRate = float64(c.failedRequests) / float64(c.totalRequests)
	}

	status := ReadinessStatus{
		Status:    StateDown,
		Timestamp: now,
		Degraded:  c.isReady && errorRate >= c.opts.DegradedThreshold,
		Metrics: ReadinessMetrics{
			TotalRequests:      c.totalRequests,
			FailedRequests:     c.failedRequests,
			CurrentRejections:  c.rejectionCount,
			RejectionThreshold: c.opts.AllowedRejections,
			ErrorRate:          errorRate,
			DegradedThreshold:  c.opts.DegradedThreshold,
		},
		Uptime: now.Sub(c.startedAt),
	}

	switch {
	case c.isReady:
		status.Status = StateUp
	case c.unreadySince != nil:
		status.UnreadySince = c.unreadySince
		recoveryIn := max(0, c.opts.RecoveryInterval-now.Sub(*c.unreadySince))
		status.RecoveryIn = &recoveryIn
		status.Reason = ReasonRejectionThreshold
	default:
		status.Reason = ReasonStartupIncomplete
		remaining := max(0, c.opts.StartupDuration-now.Sub(c.startedAt))
		status.StartupRemaining = &remaining
	}

	return status
}

// Status merges the three probe views into one priority-ordered condition:
// critical > starting > unready > degraded > healthy.
func (c *Controller) Status() CompositeStatus {
	startup := c.StartupStatus()
	liveness := c.Liveness()
	readiness := c.Readiness()

	overall := OverallHealthy
	switch {
	case liveness.Status == StateDown:
		overall = OverallCritical
	case startup.Status == StateDown:
		overall = OverallStarting
	case readiness.Status == StateDown:
		overall = OverallUnready
	case readiness.Degraded:
		overall = OverallDegraded
	}

	return CompositeStatus{
		Overall:   overall,
		Timestamp: time.Now(),
		Startup:   startup,
		Liveness:  liveness,
		Readiness: readiness,
		Summary: CompositeSummary{
			StartupComplete: startup.StartupComplete,
			IsLive:          liveness.Status == StateUp,
			IsReady:         readiness.Status == StateUp,
			IsDegraded:      readiness.Degraded,
			Uptime:          readiness.Uptime,
		},
	}
}

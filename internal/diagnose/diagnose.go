package diagnose

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/davidgut1982/mcp-diagnostics/internal/config"
	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
)

const (
	// StatusHealthy means no issues were found anywhere.
	StatusHealthy = "healthy"

	// StatusWarning means non-critical issues were found.
	StatusWarning = "warning"

	// StatusCritical means port conflicts or offline servers were found.
	StatusCritical = "critical"
)

// Summary condenses a full diagnostic into issue counts and an overall status.
type Summary struct {
	TotalIssues    int    `json:"total_issues"`
	CriticalIssues int    `json:"critical_issues"`
	Status         string `json:"status"`
}

// Report is the outcome of one full diagnostic pass.
type Report struct {
	Timestamp       time.Time               `json:"timestamp"`
	Summary         Summary                 `json:"summary"`
	PortCheck       config.PortReport       `json:"port_check"`
	HealthCheck     domain.BatchResult      `json:"health_check"`
	ConfigCheck     config.ValidationReport `json:"config_check"`
	Recommendations []string                `json:"recommendations"`
}

// Runner combines the port consistency check, a full probing pass, and
// configuration validation into one report. NewRunner should be used to
// create instances of Runner.
type Runner struct {
	logger   hclog.Logger
	prober   contracts.BatchProber
	rangeMin int
	rangeMax int
}

// NewRunner creates a diagnostic runner probing with the given batch prober.
func NewRunner(logger hclog.Logger, prober contracts.BatchProber, rangeMin, rangeMax int) *Runner {
	return &Runner{
		logger:   logger.Named("diagnose"),
		prober:   prober,
		rangeMin: rangeMin,
		rangeMax: rangeMax,
	}
}

// Run executes every check against the given registry and aggregates the results.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) Report {
	r.logger.Info("Running full diagnostic")

	report := Report{
		Timestamp:   time.Now().UTC(),
		PortCheck:   config.CheckPorts(cfg, r.rangeMin, r.rangeMax),
		HealthCheck: r.prober.RunBatch(ctx, cfg.Descriptors()),
		ConfigCheck: config.Validate(cfg),
	}

	report.Summary = summarize(report)
	report.Recommendations = recommend(report)

	r.logger.Info(
		"Full diagnostic complete",
		"total_issues", report.Summary.TotalIssues,
		"critical_issues", report.Summary.CriticalIssues,
		"status", report.Summary.Status,
	)

	return report
}

func summarize(report Report) Summary {
	offline := report.HealthCheck.Counts.Offline
	errored := report.HealthCheck.Counts.Error

	total := report.PortCheck.IssuesFound + offline + errored + report.ConfigCheck.ServersWithIssues
	critical := len(report.PortCheck.Conflicts) + offline

	status := StatusHealthy
	switch {
	case critical > 0:
		status = StatusCritical
	case total > 0:
		status = StatusWarning
	}

	return Summary{
		TotalIssues:    total,
		CriticalIssues: critical,
		Status:         status,
	}
}

func recommend(report Report) []string {
	var recs []string

	if len(report.PortCheck.Conflicts) > 0 {
		recs = append(recs, "CRITICAL: Resolve port conflicts immediately")
	}
	if report.HealthCheck.Counts.Offline > 0 {
		recs = append(recs, "CRITICAL: Restart offline MCP servers")
	}
	if report.ConfigCheck.ServersWithIssues > 0 {
		recs = append(recs, "Review and fix configuration issues in the server registry")
	}

	if len(recs) == 0 {
		recs = append(recs, "All systems operational")
	}

	return recs
}

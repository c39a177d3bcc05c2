package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davidgut1982/mcp-diagnostics/internal/diagnose"
)

// DiagnosticRunner executes a full diagnostic pass over the current registry.
type DiagnosticRunner interface {
	RunDiagnostic(ctx context.Context) diagnose.Report
}

// DiagnosticResponse represents the wrapped API response for a full diagnostic.
// Returns 503 when the overall status is critical so orchestrators can alert
// on the endpoint directly.
type DiagnosticResponse struct {
	Status int
	Body   diagnose.Report
}

// RegisterDiagnosticRoutes sets up the full-diagnostic API endpoint route.
func RegisterDiagnosticRoutes(routerAPI huma.API, runner DiagnosticRunner, apiPathPrefix string) {
	diagAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Diagnostics"}

	huma.Register(
		diagAPI,
		huma.Operation{
			OperationID: "runFullDiagnostic",
			Method:      http.MethodGet,
			Path:        "",
			Summary:     "Run port, health, and configuration checks in one pass",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*DiagnosticResponse, error) {
			report := runner.RunDiagnostic(ctx)

			code := http.StatusOK
			if report.Summary.Status == diagnose.StatusCritical {
				code = http.StatusServiceUnavailable
			}

			return &DiagnosticResponse{Status: code, Body: report}, nil
		},
	)
}

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/errors"
)

// DomainProbeResult is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainProbeResult domain.ProbeResult

// ProbeOutcome is the API shape of a single probe result.
type ProbeOutcome struct {
	Name                  string                        `json:"name"`
	Transport             string                        `json:"transport"`
	Status                string                        `json:"status"`
	ResponseTimeMS        *float64                      `json:"response_time_ms,omitempty"`
	HTTPStatus            int                           `json:"http_status,omitempty"`
	Note                  string                        `json:"note,omitempty"`
	Error                 string                        `json:"error,omitempty"`
	Stderr                string                        `json:"stderr,omitempty"`
	RunningProcesses      []domain.ProcessInfo          `json:"running_processes,omitempty"`
	AlternativeTransports []domain.AlternativeTransport `json:"alternative_transports,omitempty"`
	VenvHealth            *domain.VenvHealth            `json:"venv_health,omitempty"`
}

// BatchOutcome is the API shape of one probing pass.
type BatchOutcome struct {
	Results     []ProbeOutcome                 `json:"results"`
	Counts      domain.StatusCounts            `json:"counts"`
	ByTransport map[string]domain.StatusCounts `json:"by_transport"`
}

// ProbeServerRequest represents the incoming request for probing a single server.
type ProbeServerRequest struct {
	Name string `doc:"Name of the server to probe" example:"github-mcp" path:"name"`
}

// ProbeServerResponse represents the wrapped API response for a single probe.
type ProbeServerResponse struct {
	Body ProbeOutcome
}

// ProbeBatchResponse represents the wrapped API response for a probing pass.
type ProbeBatchResponse struct {
	Body BatchOutcome
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainProbeResult) ToAPIType() (ProbeOutcome, error) {
	var responseMS *float64
	if d.ResponseTime != nil {
		ms := float64(d.ResponseTime.Microseconds()) / 1000
		responseMS = &ms
	}

	return ProbeOutcome{
		Name:                  d.Name,
		Transport:             string(d.Transport),
		Status:                string(d.Status),
		ResponseTimeMS:        responseMS,
		HTTPStatus:            d.HTTPStatus,
		Note:                  d.Note,
		Error:                 d.Error,
		Stderr:                d.Stderr,
		RunningProcesses:      d.RunningProcesses,
		AlternativeTransports: d.AlternativeTransports,
		VenvHealth:            d.VenvHealth,
	}, nil
}

// RegisterServerRoutes sets up on-demand probing API endpoint routes.
// The descriptors callback supplies the current probe targets; results are
// recorded into the monitor so tracked health stays current.
func RegisterServerRoutes(
	routerAPI huma.API,
	monitor contracts.HealthMonitor,
	prober contracts.BatchProber,
	descriptors func() []domain.ServerDescriptor,
	apiPathPrefix string,
) {
	serversAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Servers"}

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "probeAllServers",
			Method:      http.MethodPost,
			Path:        "/probe",
			Summary:     "Probe every configured server now",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ProbeBatchResponse, error) {
			return handleProbeBatch(ctx, monitor, prober, descriptors())
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "probeServer",
			Method:      http.MethodPost,
			Path:        "/{name}/probe",
			Summary:     "Probe a single configured server now",
			Tags:        tags,
		},
		func(ctx context.Context, input *ProbeServerRequest) (*ProbeServerResponse, error) {
			return handleProbeServer(ctx, monitor, prober, descriptors(), input.Name)
		},
	)
}

func handleProbeBatch(
	ctx context.Context,
	monitor contracts.HealthMonitor,
	prober contracts.BatchProber,
	descriptors []domain.ServerDescriptor,
) (*ProbeBatchResponse, error) {
	batch := prober.RunBatch(ctx, descriptors)

	outcome := BatchOutcome{
		Results:     make([]ProbeOutcome, 0, len(batch.Results)),
		Counts:      batch.Counts,
		ByTransport: make(map[string]domain.StatusCounts, len(batch.ByTransport)),
	}
	for _, r := range batch.Results {
		_ = monitor.Record(r)
		data, err := DomainProbeResult(r).ToAPIType()
		if err != nil {
			return nil, err
		}
		outcome.Results = append(outcome.Results, data)
	}
	for transport, counts := range batch.ByTransport {
		outcome.ByTransport[string(transport)] = counts
	}

	return &ProbeBatchResponse{Body: outcome}, nil
}

func handleProbeServer(
	ctx context.Context,
	monitor contracts.HealthMonitor,
	prober contracts.BatchProber,
	descriptors []domain.ServerDescriptor,
	name string,
) (*ProbeServerResponse, error) {
	var target *domain.ServerDescriptor
	for i := range descriptors {
		if descriptors[i].Name == name {
			target = &descriptors[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrServerNotFound, name)
	}

	batch := prober.RunBatch(ctx, []domain.ServerDescriptor{*target})
	if len(batch.Results) != 1 {
		return nil, fmt.Errorf("expected one probe result for '%s', got %d", name, len(batch.Results))
	}

	result := batch.Results[0]
	_ = monitor.Record(result)

	data, err := DomainProbeResult(result).ToAPIType()
	if err != nil {
		return nil, err
	}

	return &ProbeServerResponse{Body: data}, nil
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/filter"
)

// StatusUnknown is reported for tracked servers that have not been probed yet.
const StatusUnknown = "unknown"

// DomainServerHealth is a wrapper that allows receivers to be declared in the API package that deal with domain types.
type DomainServerHealth domain.ServerHealth

// ServerHealth is used to provide information about ongoing health checks that are performed on tracked MCP servers.
type ServerHealth struct {
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	Latency        *string    `json:"latency,omitempty"`
	Note           string     `json:"note,omitempty"`
	LastChecked    *time.Time `json:"lastChecked,omitempty"`
	LastSuccessful *time.Time `json:"lastSuccessful,omitempty"`
}

// ServersHealthRequest represents the incoming request for listing tracked server health.
type ServersHealthRequest struct {
	Status string `doc:"Only include servers whose current status matches" example:"online" query:"status"`
	Name   string `doc:"Only include servers whose name contains this value" example:"github" query:"name"`
}

// ServersHealthResponse is the response for listing all tracked server health.
type ServersHealthResponse struct {
	Body struct {
		Servers []ServerHealth `doc:"Tracked MCP server health statuses" json:"servers"`
	}
}

// ServerHealthRequest represents the incoming request for obtaining ServerHealth.
type ServerHealthRequest struct {
	Name string `doc:"Name of the server to check" example:"github-mcp" path:"name"`
}

// ServerHealthResponse represents the wrapped API response for a ServerHealth.
type ServerHealthResponse struct {
	Body ServerHealth
}

// ToAPIType can be used to convert a wrapped domain type to an API-safe type.
func (d DomainServerHealth) ToAPIType() (ServerHealth, error) {
	status := string(d.Status)
	if status == "" {
		status = StatusUnknown
	}

	var latency *string
	if d.Latency != nil {
		s := d.Latency.String()
		latency = &s
	}

	return ServerHealth{
		Name:           d.Name,
		Status:         status,
		Latency:        latency,
		Note:           d.Note,
		LastChecked:    d.LastChecked,
		LastSuccessful: d.LastSuccessful,
	}, nil
}

// RegisterHealthRoutes sets up tracked-server health API endpoint routes.
func RegisterHealthRoutes(routerAPI huma.API, monitor contracts.HealthMonitor, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Servers"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "listServersHealth",
			Method:      http.MethodGet,
			Path:        "",
			Summary:     "List the health statuses for all tracked servers",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServersHealthRequest) (*ServersHealthResponse, error) {
			filters := map[string]string{}
			if input.Status != "" {
				filters["status"] = input.Status
			}
			if input.Name != "" {
				filters["name"] = input.Name
			}

			return handleHealthServers(monitor, filters)
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "getServerHealth",
			Method:      http.MethodGet,
			Path:        "/{name}",
			Summary:     "Get the health status of a tracked server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerHealthRequest) (*ServerHealthResponse, error) {
			return handleHealthServer(monitor, input.Name)
		},
	)
}

// handleHealthServers is the handler for retrieving the current health for all tracked MCP servers.
// An empty filters map includes every tracked server.
func handleHealthServers(monitor contracts.HealthMonitor, filters map[string]string) (*ServersHealthResponse, error) {
	servers := monitor.List()

	apiServers := make([]ServerHealth, 0, len(servers))
	for _, s := range servers {
		data, err := DomainServerHealth(s).ToAPIType()
		if err != nil {
			return nil, err
		}

		ok, err := filter.Match(data, filters,
			filter.WithMatcher("status", filter.Equals(func(h ServerHealth) string { return h.Status })),
			filter.WithMatcher("name", filter.Partial(func(h ServerHealth) string { return h.Name })),
		)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		apiServers = append(apiServers, data)
	}

	resp := &ServersHealthResponse{}
	resp.Body.Servers = apiServers

	return resp, nil
}

// handleHealthServer is the handler for retrieving the current health of the specified tracked MCP server.
func handleHealthServer(monitor contracts.HealthMonitor, name string) (*ServerHealthResponse, error) {
	health, err := monitor.Status(name)
	if err != nil {
		return nil, err
	}

	data, err := DomainServerHealth(health).ToAPIType()
	if err != nil {
		return nil, err
	}

	response := ServerHealthResponse{}
	response.Body = data

	return &response, nil
}

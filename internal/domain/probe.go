package domain

import "time"

const (
	TransportStdio   Transport = "stdio"
	TransportHTTP    Transport = "http"
	TransportUnknown Transport = "unknown"
)

const (
	// ProbeStatusOnline indicates the server answered (or was provably alive) on its configured channel.
	ProbeStatusOnline ProbeStatus = "online"

	// ProbeStatusOffline indicates the configured channel is unreachable and no fallback answered.
	ProbeStatusOffline ProbeStatus = "offline"

	// ProbeStatusPartial indicates the configured channel failed but an alternative
	// channel self-reporting the same server identity answered.
	ProbeStatusPartial ProbeStatus = "partial"

	// ProbeStatusError indicates the probe could not be attempted or failed unexpectedly.
	ProbeStatusError ProbeStatus = "error"
)

// Transport identifies how an MCP server is reached.
type Transport string

// ProbeStatus classifies the outcome of a single reachability probe.
type ProbeStatus string

// ServerDescriptor identifies a single MCP server and how to reach it.
// Descriptors are owned by the caller and read-only to the probing engine.
type ServerDescriptor struct {
	// Name is the unique server name from the registry.
	Name string `json:"name"`

	// Transport selects the probing strategy.
	Transport Transport `json:"transport"`

	// Command is the executable used to spawn a stdio server.
	Command string `json:"command,omitempty"`

	// Args are passed to Command when spawning a stdio server.
	Args []string `json:"args,omitempty"`

	// Env contains server-specific environment overrides for stdio servers.
	Env map[string]string `json:"env,omitempty"`

	// URL is the base endpoint for HTTP/SSE servers.
	URL string `json:"url,omitempty"`
}

// ProcessInfo is a single process table entry matching a server name.
type ProcessInfo struct {
	PID        string `json:"pid"`
	Command    string `json:"command"`
	CPUPercent string `json:"cpu_percent"`
	MemPercent string `json:"mem_percent"`
}

// AlternativeTransport records another reachable channel whose self-reported
// identity matched the probed server. The identity is a self-reported string,
// so a match is a weak signal and can false-positive against an unrelated
// service that reports the same name.
type AlternativeTransport struct {
	Type   string      `json:"type"`
	Port   int         `json:"port"`
	Status ProbeStatus `json:"status"`
	Server string      `json:"server,omitempty"`
}

// VenvHealth reports on the virtual environment backing a path-launched server.
type VenvHealth struct {
	Status         string   `json:"status"`
	PythonVersion  string   `json:"python_version,omitempty"`
	Path           string   `json:"venv_path,omitempty"`
	SamplePackages []string `json:"sample_packages,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// ProbeResult is the immutable outcome of probing a single server once.
type ProbeResult struct {
	Name      string      `json:"name"`
	Transport Transport   `json:"transport"`
	Status    ProbeStatus `json:"status"`

	// ResponseTime is the elapsed wall time for the handshake, when measured.
	ResponseTime *time.Duration `json:"response_time,omitempty"`

	// HTTPStatus is set for HTTP probes that received a response.
	HTTPStatus int `json:"http_status,omitempty"`

	// Note annotates unusual-but-successful outcomes (non-JSON output, slow response).
	Note string `json:"note,omitempty"`

	// Error describes why the probe classified offline/partial/error.
	Error string `json:"error,omitempty"`

	// Stderr is a bounded excerpt of the subprocess stderr for failed stdio probes.
	Stderr string `json:"stderr,omitempty"`

	RunningProcesses      []ProcessInfo          `json:"running_processes,omitempty"`
	AlternativeTransports []AlternativeTransport `json:"alternative_transports,omitempty"`
	VenvHealth            *VenvHealth            `json:"venv_health,omitempty"`
}

// ResponseMillis returns the handshake time in whole milliseconds, or -1 when unmeasured.
func (r *ProbeResult) ResponseMillis() float64 {
	if r.ResponseTime == nil {
		return -1
	}
	return float64(r.ResponseTime.Milliseconds())
}

// StatusCounts partitions probe outcomes by status.
type StatusCounts struct {
	Total   int `json:"total"`
	Online  int `json:"online"`
	Offline int `json:"offline"`
	Partial int `json:"partial"`
	Error   int `json:"error"`
}

func (c *StatusCounts) add(status ProbeStatus) {
	c.Total++
	switch status {
	case ProbeStatusOnline:
		c.Online++
	case ProbeStatusOffline:
		c.Offline++
	case ProbeStatusPartial:
		c.Partial++
	default:
		c.Error++
	}
}

// BatchResult aggregates one probing pass over a set of descriptors.
// Every input descriptor appears in Results exactly once.
type BatchResult struct {
	Results     []ProbeResult              `json:"results"`
	Counts      StatusCounts               `json:"counts"`
	ByTransport map[Transport]StatusCounts `json:"by_transport"`
}

// NewBatchResult aggregates per-status and per-transport counts over results.
func NewBatchResult(results []ProbeResult) BatchResult {
	batch := BatchResult{
		Results:     results,
		ByTransport: make(map[Transport]StatusCounts),
	}
	for _, r := range results {
		batch.Counts.add(r.Status)
		tc := batch.ByTransport[r.Transport]
		tc.add(r.Status)
		batch.ByTransport[r.Transport] = tc
	}
	return batch
}

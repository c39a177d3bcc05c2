package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/files"
)

const (
	processScanTimeout = 2 * time.Second
	portScanTimeout    = 500 * time.Millisecond
	venvVersionTimeout = 2 * time.Second
	venvPackageTimeout = 5 * time.Second

	// venvSamplePackages caps how many installed packages are reported.
	venvSamplePackages = 5
)

// Enrichment carries the supplementary diagnostics gathered alongside a stdio probe.
type Enrichment struct {
	RunningProcesses      []domain.ProcessInfo
	AlternativeTransports []domain.AlternativeTransport
	VenvHealth            *domain.VenvHealth
}

// Enricher gathers supplementary diagnostics for a server, independent of the
// handshake outcome. Implementations must not return errors; anything that
// cannot be gathered is simply absent from the result.
type Enricher interface {
	Enrich(ctx context.Context, desc domain.ServerDescriptor, portMin, portMax int) Enrichment
}

// HostEnricher inspects the local host: the OS process table, a local HTTP
// port range, and the virtual environment behind path-based launches.
// NewHostEnricher should be used to create instances of HostEnricher.
type HostEnricher struct {
	logger hclog.Logger
	client *http.Client
}

// NewHostEnricher creates a host-inspecting enricher.
func NewHostEnricher(logger hclog.Logger) *HostEnricher {
	return &HostEnricher{
		logger: logger.Named("enricher"),
		client: &http.Client{Timeout: portScanTimeout},
	}
}

// Enrich gathers process table matches, alternative HTTP channels in the given
// port range, and venv health for path-based launches.
func (h *HostEnricher) Enrich(ctx context.Context, desc domain.ServerDescriptor, portMin, portMax int) Enrichment {
	return Enrichment{
		RunningProcesses:      h.runningProcesses(ctx, desc.Name),
		AlternativeTransports: h.scanPorts(ctx, desc.Name, portMin, portMax),
		VenvHealth:            h.venvHealth(ctx, desc.Args),
	}
}

// runningProcesses scans the process table for entries mentioning the server name.
func (h *HostEnricher) runningProcesses(ctx context.Context, name string) []domain.ProcessInfo {
	scanCtx, cancel := context.WithTimeout(ctx, processScanTimeout)
	defer cancel()

	out, err := exec.CommandContext(scanCtx, "ps", "aux").Output()
	if err != nil {
		h.logger.Debug("Process table scan failed", "server", name, "error", err)
		return nil
	}

	var processes []domain.ProcessInfo
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, name) || strings.Contains(line, "grep") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 11 {
			continue
		}
		processes = append(processes, domain.ProcessInfo{
			PID:        fields[1],
			Command:    strings.Join(fields[10:], " "),
			CPUPercent: fields[2],
			MemPercent: fields[3],
		})
	}

	return processes
}

// scanPorts probes localhost health endpoints across the port range and keeps
// responders whose self-reported identity matches the server name.
func (h *HostEnricher) scanPorts(ctx context.Context, name string, portMin, portMax int) []domain.AlternativeTransport {
	var (
		mu    sync.Mutex
		found []domain.AlternativeTransport
		wg    sync.WaitGroup
	)

	for port := portMin; port <= portMax; port++ {
		wg.Add(1)
		go func(port int) {
			defer wg.Done()

			identity, ok := h.checkPort(ctx, port)
			if !ok || identity != name {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			found = append(found, domain.AlternativeTransport{
				Type:   "http",
				Port:   port,
				Status: domain.ProbeStatusOnline,
				Server: identity,
			})
		}(port)
	}
	wg.Wait()

	sort.Slice(found, func(i, j int) bool { return found[i].Port < found[j].Port })

	return found
}

// checkPort returns the self-reported server identity of a local health
// endpoint, or ok=false when the port does not answer with a parseable body.
func (h *HostEnricher) checkPort(ctx context.Context, port int) (string, bool) {
	url := fmt.Sprintf("http://localhost:%d/health", port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var body struct {
		Server string `json:"server"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false
	}

	return body.Server, body.Server != ""
}

// venvHealth inspects the virtual environment for path-based interpreter
// launches (a '--from <path>' argument pair). Returns nil when the launch is
// not path-based or no venv directory exists.
func (h *HostEnricher) venvHealth(ctx context.Context, args []string) *domain.VenvHealth {
	serverPath := fromPath(args)
	if serverPath == "" {
		return nil
	}

	venvPath := filepath.Join(serverPath, "venv")
	if _, err := os.Stat(venvPath); err != nil {
		return nil
	}

	executables, err := files.DiscoverExecutablesWithPaths(filepath.Join(venvPath, "bin"))
	if err != nil {
		return &domain.VenvHealth{Status: "broken", Error: "bin directory not readable"}
	}
	pythonPath, ok := executables["python"]
	if !ok {
		return &domain.VenvHealth{Status: "broken", Error: "python executable not found"}
	}

	versionCtx, cancel := context.WithTimeout(ctx, venvVersionTimeout)
	defer cancel()
	pythonVersion := "unknown"
	if out, err := exec.CommandContext(versionCtx, pythonPath, "--version").Output(); err == nil {
		pythonVersion = strings.TrimSpace(string(out))
	}

	pkgCtx, cancel := context.WithTimeout(ctx, venvPackageTimeout)
	defer cancel()
	var samples []string
	if out, err := exec.CommandContext(pkgCtx, pythonPath, "-m", "pip", "list", "--format=json").Output(); err == nil {
		var pkgs []struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		}
		if err := json.Unmarshal(out, &pkgs); err == nil {
			for _, p := range pkgs[:min(len(pkgs), venvSamplePackages)] {
				samples = append(samples, fmt.Sprintf("%s==%s", p.Name, p.Version))
			}
		}
	}

	return &domain.VenvHealth{
		Status:         "healthy",
		PythonVersion:  pythonVersion,
		Path:           venvPath,
		SamplePackages: samples,
	}
}

// fromPath extracts the directory from a '--from <path>' argument pair.
func fromPath(args []string) string {
	for i, arg := range args {
		if arg == "--from" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

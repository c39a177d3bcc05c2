package probe

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	interrors "github.com/davidgut1982/mcp-diagnostics/internal/errors"
)

const (
	// protocolVersion is the MCP protocol version announced in handshakes.
	protocolVersion = "2024-11-05"

	// clientName self-identifies handshake requests in server logs.
	clientName = "mcp-diagnostics-health-check"
)

// requiredPaths are prepended to PATH when missing so launchers installed
// outside the inherited environment (uvx and friends) still resolve.
var requiredPaths = []string{
	"$HOME/.local/bin",
	"/usr/local/bin",
	"/usr/bin",
}

// StdioProbe checks stdio-launched MCP servers by spawning the configured
// command and performing a newline-delimited JSON-RPC initialize handshake.
// NewStdioProbe should be used to create instances of StdioProbe.
type StdioProbe struct {
	logger hclog.Logger
	opts   Options
}

// NewStdioProbe creates a stdio prober with optional configurations applied.
func NewStdioProbe(logger hclog.Logger, opt ...Option) (*StdioProbe, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	probeLogger := logger.Named("probe.stdio")
	if opts.Enricher == nil {
		opts.Enricher = NewHostEnricher(probeLogger)
	}

	return &StdioProbe{
		logger: probeLogger,
		opts:   opts,
	}, nil
}

// Probe spawns the server command, performs the initialize handshake within
// the timeout, and classifies the outcome. The subprocess is always torn down
// before returning, regardless of the classification.
func (s *StdioProbe) Probe(ctx context.Context, desc domain.ServerDescriptor, timeout time.Duration) domain.ProbeResult {
	result := domain.ProbeResult{
		Name:      desc.Name,
		Transport: domain.TransportStdio,
	}

	enrichment := s.opts.Enricher.Enrich(ctx, desc, s.opts.PortRangeMin, s.opts.PortRangeMax)
	attach := func(r *domain.ProbeResult) {
		r.RunningProcesses = enrichment.RunningProcesses
		r.AlternativeTransports = enrichment.AlternativeTransports
		r.VenvHealth = enrichment.VenvHealth
	}
	// An answering alternative channel softens a dead stdio channel to partial.
	downgraded := func(status domain.ProbeStatus) domain.ProbeStatus {
		if len(enrichment.AlternativeTransports) > 0 {
			return domain.ProbeStatusPartial
		}
		return status
	}

	if desc.Command == "" {
		result.Status = domain.ProbeStatusError
		result.Error = interrors.ErrNoCommand.Error()
		attach(&result)
		return result
	}

	start := time.Now()

	cmd := exec.Command(desc.Command, desc.Args...)
	cmd.Env = buildEnv(desc.Env)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		result.Status = downgraded(domain.ProbeStatusError)
		result.Error = err.Error()
		attach(&result)
		return result
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		result.Status = downgraded(domain.ProbeStatusError)
		result.Error = err.Error()
		attach(&result)
		return result
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		result.Status = downgraded(domain.ProbeStatusError)
		result.Error = err.Error()
		attach(&result)
		return result
	}

	if err := cmd.Start(); err != nil {
		result.Status = downgraded(domain.ProbeStatusError)
		result.Error = spawnError(desc.Command, err)
		attach(&result)
		return result
	}

	mon := watchProcess(cmd.Process)
	defer s.teardown(cmd.Process, mon)

	stderrBuf := newBoundedBuffer(s.opts.StderrLimit)
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		_, _ = io.Copy(stderrBuf, stderr)
	}()

	// Exit classification shared by every process-died path.
	exitResult := func(errMsg string) domain.ProbeResult {
		r := result
		r.Status = downgraded(domain.ProbeStatusOffline)
		r.Error = errMsg
		r.Stderr = s.drainStderr(stderrBuf, stderrDone)
		attach(&r)
		return r
	}

	// Crashes within the settle window are cheap to catch before handshaking.
	if s.opts.SettleDelay > 0 {
		select {
		case <-time.After(s.opts.SettleDelay):
		case <-ctx.Done():
		}
	}
	if mon.exited() {
		return exitResult(fmt.Sprintf("process exited immediately with code %d", mon.exitCode()))
	}

	payload, err := handshakePayload()
	if err != nil {
		result.Status = downgraded(domain.ProbeStatusError)
		result.Error = err.Error()
		attach(&result)
		return result
	}
	if _, err := stdin.Write(payload); err != nil {
		if mon.exited() {
			return exitResult(fmt.Sprintf("process exited with code %d (broken pipe)", mon.exitCode()))
		}
		result.Status = downgraded(domain.ProbeStatusError)
		result.Error = err.Error()
		attach(&result)
		return result
	}

	lineCh := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(stdout).ReadString('\n')
		lineCh <- strings.TrimSpace(line)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line := <-lineCh:
		elapsed := time.Since(start)
		if line != "" {
			result.Status = domain.ProbeStatusOnline
			result.ResponseTime = &elapsed
			result.Note = classifyResponse(line)
			attach(&result)
			return result
		}
		if !mon.exited() {
			result.Status = domain.ProbeStatusOnline
			result.ResponseTime = &elapsed
			result.Note = "process running (no immediate response)"
			attach(&result)
			return result
		}
		return exitResult(fmt.Sprintf("process exited with code %d (empty response)", mon.exitCode()))

	case <-timer.C:
	case <-ctx.Done():
	}

	// Timed out. A process still alive after the deadline is slow, not dead.
	elapsed := time.Since(start)
	if !mon.exited() {
		result.Status = domain.ProbeStatusOnline
		result.ResponseTime = &elapsed
		result.Note = "slow response (process running)"
		attach(&result)
		return result
	}
	return exitResult(fmt.Sprintf("process exited with code %d (timeout)", mon.exitCode()))
}

// classifyResponse annotates handshake output that is not a standard JSON-RPC response.
// Any output at all proves the process is alive, so none of these affect status.
func classifyResponse(line string) string {
	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return "non-json response"
	}
	if resp.Result == nil && resp.Error == nil {
		return "non-standard response"
	}
	return ""
}

// handshakePayload builds the newline-terminated JSON-RPC initialize request.
func handshakePayload() ([]byte, error) {
	req := struct {
		JSONRPC string               `json:"jsonrpc"`
		ID      int                  `json:"id"`
		Method  string               `json:"method"`
		Params  mcp.InitializeParams `json:"params"`
	}{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      1,
		Method:  string(mcp.MethodInitialize),
		Params: mcp.InitializeParams{
			ProtocolVersion: protocolVersion,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    clientName,
				Version: "1.0.0",
			},
		},
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initialize request: %w", err)
	}

	return append(data, '\n'), nil
}

// spawnError maps process launch failures to the original command for context.
func spawnError(command string, err error) string {
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("command not found: %s", command)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("permission denied: %s", command)
	default:
		return err.Error()
	}
}

// teardown terminates the subprocess on every exit path. Termination errors
// mean the process is already gone and are swallowed.
func (s *StdioProbe) teardown(p *os.Process, mon *procMonitor) {
	if p == nil || mon.exited() {
		return
	}

	_ = p.Signal(syscall.SIGTERM)
	if mon.waitFor(s.opts.TerminateGrace) {
		return
	}

	_ = p.Kill()
	mon.waitFor(s.opts.TerminateGrace)
}

// drainStderr waits briefly for the stderr copier to observe pipe EOF, then
// returns whatever was captured.
func (s *StdioProbe) drainStderr(buf *boundedBuffer, done <-chan struct{}) string {
	select {
	case <-done:
	case <-time.After(s.opts.TerminateGrace):
	}
	return buf.String()
}

// buildEnv constructs the spawn environment: the inherited environment with
// HOME guaranteed, required binary directories prepended to PATH when absent,
// and server-specific overrides applied last.
func buildEnv(overrides map[string]string) []string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	home := envMap["HOME"]
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
			envMap["HOME"] = h
		}
	}

	pathEntries := strings.Split(envMap["PATH"], ":")
	present := make(map[string]struct{}, len(pathEntries))
	for _, p := range pathEntries {
		present[p] = struct{}{}
	}
	for _, p := range requiredPaths {
		p = strings.Replace(p, "$HOME", home, 1)
		if _, ok := present[p]; !ok {
			pathEntries = append([]string{p}, pathEntries...)
		}
	}
	envMap["PATH"] = strings.Join(pathEntries, ":")

	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// procMonitor reaps a subprocess exactly once and exposes its exit state
// without blocking callers.
type procMonitor struct {
	done  chan struct{}
	state *os.ProcessState
}

// watchProcess starts a goroutine that waits on the process. The exit state
// is published before done closes.
func watchProcess(p *os.Process) *procMonitor {
	m := &procMonitor{done: make(chan struct{})}
	go func() {
		state, _ := p.Wait()
		m.state = state
		close(m.done)
	}()
	return m
}

// exited reports whether the process has terminated.
func (m *procMonitor) exited() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// exitCode returns the process exit code, or -1 when it has not exited.
func (m *procMonitor) exitCode() int {
	select {
	case <-m.done:
		if m.state != nil {
			return m.state.ExitCode()
		}
		return -1
	default:
		return -1
	}
}

// waitFor blocks until the process exits or the duration elapses.
func (m *procMonitor) waitFor(d time.Duration) bool {
	select {
	case <-m.done:
		return true
	case <-time.After(d):
		return false
	}
}

// boundedBuffer retains the first limit bytes written and discards the rest,
// so stderr drains without unbounded growth.
type boundedBuffer struct {
	mu    sync.Mutex
	limit int
	buf   bytes.Buffer
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if remaining := b.limit - b.buf.Len(); remaining > 0 {
		b.buf.Write(p[:min(len(p), remaining)])
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

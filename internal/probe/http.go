package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	interrors "github.com/davidgut1982/mcp-diagnostics/internal/errors"
)

// HTTPProbe checks HTTP/SSE MCP servers with a single GET request.
// Any HTTP response at all means a server answered; only connection-level
// failures classify offline. NewHTTPProbe should be used to create instances
// of HTTPProbe.
type HTTPProbe struct {
	logger hclog.Logger
	client *http.Client
}

// NewHTTPProbe creates an HTTP prober. Redirects are never followed; a
// redirect response itself already proves the server is reachable.
func NewHTTPProbe(logger hclog.Logger) *HTTPProbe {
	return &HTTPProbe{
		logger: logger.Named("probe.http"),
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Probe sends one GET to the descriptor's URL and classifies reachability.
func (h *HTTPProbe) Probe(ctx context.Context, desc domain.ServerDescriptor, timeout time.Duration) domain.ProbeResult {
	result := domain.ProbeResult{
		Name:      desc.Name,
		Transport: domain.TransportHTTP,
	}

	if desc.URL == "" {
		result.Status = domain.ProbeStatusError
		result.Error = interrors.ErrNoURL.Error()
		return result
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, desc.URL, nil)
	if err != nil {
		result.Status = domain.ProbeStatusError
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		result.Status, result.Error = classifyTransportError(err)
		return result
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	result.Status = domain.ProbeStatusOnline
	result.ResponseTime = &elapsed
	result.HTTPStatus = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Note = fmt.Sprintf("reachable but returned HTTP %d", resp.StatusCode)
	}

	return result
}

// classifyTransportError partitions request failures: timeouts and connection
// failures mean nothing answered (offline), anything else is unexpected (error).
func classifyTransportError(err error) (domain.ProbeStatus, string) {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return domain.ProbeStatusOffline, "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ProbeStatusOffline, "timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return domain.ProbeStatusOffline, "connection refused"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.ProbeStatusOffline, "host not resolvable"
	}

	return domain.ProbeStatusError, err.Error()
}

package probe

import (
	"fmt"
	"time"
)

// Options contains configurable settings for the probing engine.
// NewOptions should be used to create instances of Options.
type Options struct {
	// Timeout bounds a single probe handshake.
	Timeout time.Duration

	// StdioConcurrency caps the number of simultaneously spawned stdio subprocesses.
	StdioConcurrency int64

	// SettleDelay is how long a freshly spawned subprocess is given to crash
	// before the handshake is attempted.
	SettleDelay time.Duration

	// StderrLimit bounds the stderr excerpt captured from failed subprocesses, in bytes.
	StderrLimit int

	// TerminateGrace is the wait applied after both SIGTERM and SIGKILL during teardown.
	TerminateGrace time.Duration

	// PortRangeMin and PortRangeMax bound the local port scan used to find
	// alternative HTTP channels for a server.
	PortRangeMin int
	PortRangeMax int

	// CriticalOnly restricts batch runs to servers named in CriticalServers.
	CriticalOnly bool

	// CriticalServers is the name set used when CriticalOnly is enabled.
	CriticalServers map[string]struct{}

	// Enricher gathers supplementary diagnostics for stdio probes.
	// Defaults to the host-inspecting enricher; injectable for tests.
	Enricher Enricher
}

// Option defines a functional option for configuring the probing engine.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Starts with default values, then applies options in order.
func NewOptions(opts ...Option) (Options, error) {
	options := defaultOptions()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	if options.PortRangeMin > options.PortRangeMax {
		return Options{}, fmt.Errorf(
			"port range minimum %d exceeds maximum %d",
			options.PortRangeMin, options.PortRangeMax,
		)
	}

	return options, nil
}

func defaultOptions() Options {
	return Options{
		Timeout:          DefaultTimeout(),
		StdioConcurrency: DefaultStdioConcurrency(),
		SettleDelay:      50 * time.Millisecond,
		StderrLimit:      500,
		TerminateGrace:   100 * time.Millisecond,
		PortRangeMin:     DefaultPortRangeMin(),
		PortRangeMax:     DefaultPortRangeMax(),
		CriticalServers:  DefaultCriticalServers(),
	}
}

// WithTimeout configures the per-probe handshake timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		o.Timeout = d
		return nil
	}
}

// WithStdioConcurrency configures the stdio subprocess permit pool size.
func WithStdioConcurrency(n int64) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("stdio concurrency must be positive, got %d", n)
		}
		o.StdioConcurrency = n
		return nil
	}
}

// WithSettleDelay configures the post-spawn crash detection delay.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Options) error {
		if d < 0 {
			return fmt.Errorf("settle delay cannot be negative, got %v", d)
		}
		o.SettleDelay = d
		return nil
	}
}

// WithStderrLimit configures the captured stderr excerpt size in bytes.
func WithStderrLimit(n int) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("stderr limit must be positive, got %d", n)
		}
		o.StderrLimit = n
		return nil
	}
}

// WithTerminateGrace configures the teardown grace period.
func WithTerminateGrace(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("terminate grace must be positive, got %v", d)
		}
		o.TerminateGrace = d
		return nil
	}
}

// WithPortRange configures the local port scan range for alternative transport discovery.
func WithPortRange(minPort, maxPort int) Option {
	return func(o *Options) error {
		if minPort < 1 || maxPort > 65535 {
			return fmt.Errorf("port range %d-%d outside valid bounds", minPort, maxPort)
		}
		o.PortRangeMin = minPort
		o.PortRangeMax = maxPort
		return nil
	}
}

// WithCriticalOnly restricts batch runs to the critical server set.
func WithCriticalOnly(enabled bool) Option {
	return func(o *Options) error {
		o.CriticalOnly = enabled
		return nil
	}
}

// WithCriticalServers replaces the critical server name set.
func WithCriticalServers(names ...string) Option {
	return func(o *Options) error {
		if len(names) == 0 {
			return fmt.Errorf("critical server set cannot be empty")
		}
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		o.CriticalServers = set
		return nil
	}
}

// WithEnricher replaces the diagnostic enricher used by stdio probes.
func WithEnricher(e Enricher) Option {
	return func(o *Options) error {
		if e == nil {
			return fmt.Errorf("enricher cannot be nil")
		}
		o.Enricher = e
		return nil
	}
}

// DefaultTimeout is the default per-probe handshake timeout.
func DefaultTimeout() time.Duration {
	return 5 * time.Second
}

// DefaultStdioConcurrency is the default stdio subprocess permit pool size.
func DefaultStdioConcurrency() int64 {
	return 16
}

// DefaultPortRangeMin is the lowest port scanned for alternative HTTP channels.
func DefaultPortRangeMin() int {
	return 5555
}

// DefaultPortRangeMax is the highest port scanned for alternative HTTP channels.
func DefaultPortRangeMax() int {
	return 5582
}

// DefaultCriticalServers is the name set used for critical-only batch runs.
func DefaultCriticalServers() map[string]struct{} {
	return map[string]struct{}{
		"diagnostic-mcp": {},
		"knowledge-mcp":  {},
		"github-mcp":     {},
		"docker-mcp":     {},
		"system-ops-mcp": {},
	}
}

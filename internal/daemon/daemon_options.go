package daemon

import (
	"fmt"
	"time"

	"github.com/davidgut1982/mcp-diagnostics/internal/admission"
	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/probe"
)

// Options contains optional configuration for the daemon.
// NewOptions should be used to create instances of Options.
type Options struct {
	// APIOptions contains functional options for the API server.
	APIOptions []APIOption

	// AdmissionOptions contains functional options for the daemon's own
	// admission-control state machine.
	AdmissionOptions []admission.Option

	// ProbeOptions contains functional options for the probing engine.
	ProbeOptions []probe.Option

	// HealthCheckInterval specifies how often the background loop probes
	// every registered server.
	HealthCheckInterval time.Duration

	// HealthCheckTimeout specifies maximum time to wait for a probe pass.
	HealthCheckTimeout time.Duration

	// Tokens validates bearer tokens for the API. Nil disables authentication.
	Tokens contracts.TokenValidator

	// History persists completed diagnostic runs. Nil disables persistence.
	History contracts.HistoryStore
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Starts with default values, then applies options in order with later options overriding earlier ones.
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

	return options, nil
}

// WithAPIOptions configures API server options.
// Replaces all previous API configuration including CORS settings.
func WithAPIOptions(apiOpts ...APIOption) Option {
	return func(o *Options) error {
		o.APIOptions = apiOpts
		return nil
	}
}

// WithAdmissionOptions configures the daemon's admission-control state machine.
// Replaces all previous admission configuration.
func WithAdmissionOptions(admOpts ...admission.Option) Option {
	return func(o *Options) error {
		o.AdmissionOptions = admOpts
		return nil
	}
}

// WithProbeOptions configures the probing engine.
// Replaces all previous probe configuration.
func WithProbeOptions(probeOpts ...probe.Option) Option {
	return func(o *Options) error {
		o.ProbeOptions = probeOpts
		return nil
	}
}

// WithHealthCheckInterval configures how often to probe registered servers.
func WithHealthCheckInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval <= 0 {
			return fmt.Errorf("health check interval must be positive, got %v", interval)
		}
		o.HealthCheckInterval = interval
		return nil
	}
}

// WithHealthCheckTimeout configures maximum time to wait for a probe pass.
func WithHealthCheckTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("health check timeout must be positive, got %v", timeout)
		}
		o.HealthCheckTimeout = timeout
		return nil
	}
}

// WithTokenValidator enables bearer token authentication on the API.
func WithTokenValidator(tokens contracts.TokenValidator) Option {
	return func(o *Options) error {
		o.Tokens = tokens
		return nil
	}
}

// WithHistoryStore enables best-effort persistence of diagnostic runs.
func WithHistoryStore(history contracts.HistoryStore) Option {
	return func(o *Options) error {
		o.History = history
		return nil
	}
}

// DefaultHealthCheckInterval is the default interval for background probe passes.
func DefaultHealthCheckInterval() time.Duration {
	return 30 * time.Second
}

// DefaultHealthCheckTimeout is the default timeout for a full probe pass.
func DefaultHealthCheckTimeout() time.Duration {
	return 60 * time.Second
}

// defaultOptions returns Options with default values.
func defaultOptions() Options {
	return Options{
		HealthCheckInterval: DefaultHealthCheckInterval(),
		HealthCheckTimeout:  DefaultHealthCheckTimeout(),
	}
}

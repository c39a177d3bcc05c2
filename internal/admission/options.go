package admission

import (
	"fmt"
	"time"
)

// Options contains the immutable configuration for a Controller.
// NewOptions should be used to create instances of Options.
type Options struct {
	// AllowedRejections is the maximum number of rejections tolerated within
	// one sampling window before the service is marked unready.
	AllowedRejections int

	// SamplingInterval is the window over which rejections are counted.
	SamplingInterval time.Duration

	// RecoveryInterval is the minimum quiet period before an unready service
	// is restored to ready. Defaults to twice the sampling interval.
	RecoveryInterval time.Duration

	// StartupDuration is how long the service reports the starting state.
	StartupDuration time.Duration

	// DegradedThreshold is the failed/total request ratio at which a ready
	// service is reported as degraded.
	DegradedThreshold float64
}

// Option defines a functional option for configuring Options.
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

	// Recovery defaults to twice the sampling window when not configured.
	if options.RecoveryInterval == 0 {
		options.RecoveryInterval = 2 * options.SamplingInterval
	}

	return options, nil
}

func defaultOptions() Options {
	return Options{
		AllowedRejections: DefaultAllowedRejections(),
		SamplingInterval:  DefaultSamplingInterval(),
		StartupDuration:   DefaultStartupDuration(),
		DegradedThreshold: DefaultDegradedThreshold(),
	}
}

// WithAllowedRejections configures the rejection budget per sampling window.
func WithAllowedRejections(n int) Option {
	return func(o *Options) error {
		if n < 0 {
			return fmt.Errorf("allowed rejections cannot be negative, got %d", n)
		}
		o.AllowedRejections = n
		return nil
	}
}

// WithSamplingInterval configures the rejection sampling window.
func WithSamplingInterval(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("sampling interval must be positive, got %v", d)
		}
		o.SamplingInterval = d
		return nil
	}
}

// WithRecoveryInterval configures the quiet period required before restoring readiness.
func WithRecoveryInterval(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("recovery interval must be positive, got %v", d)
		}
		o.RecoveryInterval = d
		return nil
	}
}

// WithStartupDuration configures how long the service reports the starting state.
// Zero is allowed and skips the startup phase entirely.
func WithStartupDuration(d time.Duration) Option {
	return func(o *Options) error {
		if d < 0 {
			return fmt.Errorf("startup duration cannot be negative, got %v", d)
		}
		o.StartupDuration = d
		return nil
	}
}

// WithDegradedThreshold configures the error rate at which a ready service reports degraded.
func WithDegradedThreshold(f float64) Option {
	return func(o *Options) error {
		if f < 0 || f > 1 {
			return fmt.Errorf("degraded threshold must be within [0, 1], got %v", f)
		}
		o.DegradedThreshold = f
		return nil
	}
}

// DefaultAllowedRejections is the default rejection budget per sampling window.
func DefaultAllowedRejections() int {
	return 100
}

// DefaultSamplingInterval is the default rejection sampling window.
func DefaultSamplingInterval() time.Duration {
	return 10 * time.Second
}

// DefaultStartupDuration is the default startup phase duration.
func DefaultStartupDuration() time.Duration {
	return 30 * time.Second
}

// DefaultDegradedThreshold is the default error rate for the degraded state.
func DefaultDegradedThreshold() float64 {
	return 0.25
}

package options

import (
	"github.com/davidgut1982/mcp-diagnostics/internal/config"
)

// CmdOption defines a functional option for configuring CmdOptions.
type CmdOption func(*CmdOptions) error

// CmdOptions carries the injectable collaborators for CLI commands.
// Defaults are production implementations; tests swap in stubs.
type CmdOptions struct {
	ConfigLoader config.Loader
}

func defaultOptions() CmdOptions {
	return CmdOptions{
		ConfigLoader: &config.DefaultLoader{},
	}
}

// NewOptions creates CmdOptions with optional configurations applied.
func NewOptions(opt ...CmdOption) (CmdOptions, error) {
	opts := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CmdOptions{}, err
		}
	}
	return opts, nil
}

// WithConfigLoader sets the registry loader used by commands.
func WithConfigLoader(l config.Loader) CmdOption {
	return func(o *CmdOptions) error {
		o.ConfigLoader = l
		return nil
	}
}

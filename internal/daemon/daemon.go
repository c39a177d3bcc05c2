package daemon

import (
	"context"
	"fmt"
	"net"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/davidgut1982/mcp-diagnostics/internal/admission"
	"github.com/davidgut1982/mcp-diagnostics/internal/config"
	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/diagnose"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/flags"
	"github.com/davidgut1982/mcp-diagnostics/internal/probe"
)

// Daemon hosts the diagnostics API, the background probing loop and the
// service's own admission-control state machine.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger    hclog.Logger
	cfgLoader config.Loader
	apiAddr   string
	opts      Options

	scheduler *probe.Scheduler
	probeOpts probe.Options
	admission *admission.Controller

	mu          sync.RWMutex
	descriptors []domain.ServerDescriptor
}

// NewDaemon creates a daemon bound to the given API address.
// The registry is not loaded until StartAndManage runs.
func NewDaemon(logger hclog.Logger, cfgLoader config.Loader, apiAddr string, opt ...Option) (*Daemon, error) {
	if isNilValue(logger) {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if isNilValue(cfgLoader) {
		return nil, fmt.Errorf("config loader cannot be nil")
	}
	if err := IsValidAddr(apiAddr); err != nil {
		return nil, fmt.Errorf("invalid api address '%s': %w", apiAddr, err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	probeOpts, err := probe.NewOptions(opts.ProbeOptions...)
	if err != nil {
		return nil, fmt.Errorf("invalid probe options: %w", err)
	}

	scheduler, err := probe.NewScheduler(logger, opts.ProbeOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create probe scheduler: %w", err)
	}

	adm, err := admission.NewController(logger, opts.AdmissionOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create admission controller: %w", err)
	}

	return &Daemon{
		logger:    logger.Named("daemon"),
		cfgLoader: cfgLoader,
		apiAddr:   apiAddr,
		opts:      opts,
		scheduler: scheduler,
		probeOpts: probeOpts,
		admission: adm,
	}, nil
}

// LoadConfig loads the server registry and refreshes the daemon's descriptor set.
func (d *Daemon) LoadConfig() (*config.Config, error) {
	cfg, err := d.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.descriptors = cfg.Descriptors()
	d.mu.Unlock()

	return cfg, nil
}

// Descriptors returns a copy of the currently registered server descriptors.
func (d *Daemon) Descriptors() []domain.ServerDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Clone(d.descriptors)
}

// StartAndManage loads the registry, starts the background probing loop and
// serves the API until the context is canceled.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	cfg, err := d.LoadConfig()
	if err != nil {
		return err
	}

	servers := cfg.ListServers()
	names := make([]string, 0, len(servers))
	for _, s := range servers {
		names = append(names, s.Name)
	}
	d.logger.Info("Loaded server registry", "path", cfg.FilePath(), "servers", len(names))

	tracker := NewHealthTracker(names)

	runner := diagnose.NewRunner(d.logger, d.scheduler, d.probeOpts.PortRangeMin, d.probeOpts.PortRangeMax)
	diagnostics := &diagnosticService{
		logger:  d.logger.Named("diagnostics"),
		runner:  runner,
		cfg:     func() *config.Config { return cfg },
		history: d.opts.History,
	}

	deps, err := NewAPIDependencies(d.logger, tracker, d.scheduler, d.admission, diagnostics, d.Descriptors, d.apiAddr)
	if err != nil {
		return err
	}
	deps.Tokens = d.opts.Tokens

	apiServer, err := NewAPIServer(deps, d.opts.APIOptions...)
	if err != nil {
		return fmt.Errorf("failed to create daemon API server: %w", err)
	}

	go d.healthCheckLoop(ctx, tracker)

	return apiServer.Start(ctx)
}

// healthCheckLoop probes every registered server on a fixed interval,
// starting with an immediate pass, and records the outcomes in the tracker.
func (d *Daemon) healthCheckLoop(ctx context.Context, tracker contracts.HealthMonitor) {
	ticker := time.NewTicker(d.opts.HealthCheckInterval)
	defer ticker.Stop()

	d.probeAllServers(ctx, tracker)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Stopping MCP server health checks")
			return
		case <-ticker.C:
			d.probeAllServers(ctx, tracker)
		}
	}
}

// probeAllServers runs one bounded probe pass and records every result.
func (d *Daemon) probeAllServers(ctx context.Context, tracker contracts.HealthMonitor) {
	probeCtx, cancel := context.WithTimeout(ctx, d.opts.HealthCheckTimeout)
	defer cancel()

	batch := d.scheduler.RunBatch(probeCtx, d.Descriptors())
	for _, result := range batch.Results {
		if err := tracker.Record(result); err != nil {
			d.logger.Error("Failed to record probe result", "server", result.Name, "error", err)
		}
	}
}

// diagnosticService runs full diagnostic passes and persists them when a
// history store is configured. Persistence is best effort.
type diagnosticService struct {
	logger  hclog.Logger
	runner  *diagnose.Runner
	cfg     func() *config.Config
	history contracts.HistoryStore
}

// RunDiagnostic runs one full diagnostic pass over the current registry.
func (s *diagnosticService) RunDiagnostic(ctx context.Context) diagnose.Report {
	started := time.Now()
	report := s.runner.Run(ctx, s.cfg())

	if s.history != nil {
		if _, err := s.history.Save(ctx, "full_diagnostic", "api", report, time.Since(started)); err != nil {
			s.logger.Warn("Failed to persist diagnostic run", "error", err)
		}
	}

	return report
}

// IsValidAddr returns an error if the address is not a valid "host:port" string.
func IsValidAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %w", err)
	}

	if port == "" {
		return fmt.Errorf("address missing port")
	}

	// Try parsing port as a number
	if _, err := strconv.Atoi(port); err != nil {
		// Try looking up the named port
		if _, err := net.LookupPort("tcp", port); err != nil {
			return fmt.Errorf("invalid address port: %s", port)
		}
	}

	_ = host // it's ok to accept an empty host (listens on all interfaces)

	return nil
}

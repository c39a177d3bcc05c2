package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidgut1982/mcp-diagnostics/internal/admission"
	internalcmd "github.com/davidgut1982/mcp-diagnostics/internal/cmd"
	cmdopts "github.com/davidgut1982/mcp-diagnostics/internal/cmd/options"
	"github.com/davidgut1982/mcp-diagnostics/internal/config"
	"github.com/davidgut1982/mcp-diagnostics/internal/daemon"
	"github.com/davidgut1982/mcp-diagnostics/internal/flags"
	"github.com/davidgut1982/mcp-diagnostics/internal/history"
	"github.com/davidgut1982/mcp-diagnostics/internal/probe"
)

// Flag names for the daemon command.
const (
	flagDev               = "dev"
	flagAddr              = "addr"
	flagCheckInterval     = "check-interval"
	flagCheckTimeout      = "check-timeout"
	flagProbeTimeout      = "probe-timeout"
	flagAllowedRejections = "allowed-rejections"
	flagSamplingInterval  = "sampling-interval"
	flagRecoveryInterval  = "recovery-interval"
	flagStartupDuration   = "startup-duration"
	flagDegradedThreshold = "degraded-threshold"
	flagCORSEnable        = "cors-enable"
	flagCORSOrigin        = "cors-allow-origin"
	flagHistory           = "history"
	flagHistoryFile       = "history-file"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*internalcmd.BaseCmd
	Dev  bool
	Addr string

	CheckInterval time.Duration
	CheckTimeout  time.Duration
	ProbeTimeout  time.Duration

	AllowedRejections int
	SamplingInterval  time.Duration
	RecoveryInterval  time.Duration
	StartupDuration   time.Duration
	DegradedThreshold float64

	CORSEnable  bool
	CORSOrigins []string

	History     bool
	HistoryFile string

	cfgLoader config.Loader
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &DaemonCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--dev] [--addr]",
		Short: "Launches an 'mcp-diagnostics' daemon instance",
		Long: "Launches an 'mcp-diagnostics' daemon instance, which probes the registered MCP\n" +
			"servers in the background and serves health, probing and diagnostics routes over HTTP",
		RunE: c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Dev,
		flagDev,
		false,
		"Run the daemon in development-focused mode",
	)

	cobraCommand.Flags().StringVar(
		&c.Addr,
		flagAddr,
		"0.0.0.0:8090",
		"Address for the daemon to bind (not applicable in --dev mode)",
	)

	cobraCommand.Flags().DurationVar(
		&c.CheckInterval,
		flagCheckInterval,
		daemon.DefaultHealthCheckInterval(),
		"Interval between background probe passes",
	)

	cobraCommand.Flags().DurationVar(
		&c.CheckTimeout,
		flagCheckTimeout,
		daemon.DefaultHealthCheckTimeout(),
		"Maximum duration of one background probe pass",
	)

	cobraCommand.Flags().DurationVar(
		&c.ProbeTimeout,
		flagProbeTimeout,
		probe.DefaultTimeout(),
		"Timeout for each individual server probe",
	)

	cobraCommand.Flags().IntVar(
		&c.AllowedRejections,
		flagAllowedRejections,
		admission.DefaultAllowedRejections(),
		"Failed requests tolerated per sampling window before the daemon reports unready",
	)

	cobraCommand.Flags().DurationVar(
		&c.SamplingInterval,
		flagSamplingInterval,
		admission.DefaultSamplingInterval(),
		"Length of the rejection sampling window",
	)

	cobraCommand.Flags().DurationVar(
		&c.RecoveryInterval,
		flagRecoveryInterval,
		2*admission.DefaultSamplingInterval(),
		"Quiet period required before an unready daemon is restored to ready",
	)

	cobraCommand.Flags().DurationVar(
		&c.StartupDuration,
		flagStartupDuration,
		admission.DefaultStartupDuration(),
		"Grace period during which the startup probe reports DOWN",
	)

	cobraCommand.Flags().Float64Var(
		&c.DegradedThreshold,
		flagDegradedThreshold,
		admission.DefaultDegradedThreshold(),
		"Error rate at which the daemon reports degraded",
	)

	cobraCommand.Flags().BoolVar(
		&c.CORSEnable,
		flagCORSEnable,
		false,
		"Enable CORS headers on API responses",
	)

	cobraCommand.Flags().StringSliceVar(
		&c.CORSOrigins,
		flagCORSOrigin,
		nil,
		"Origins allowed to access the API (use '*' for any)",
	)

	cobraCommand.Flags().BoolVar(
		&c.History,
		flagHistory,
		false,
		"Persist completed diagnostic runs to the history file",
	)

	cobraCommand.Flags().StringVar(
		&c.HistoryFile,
		flagHistoryFile,
		"",
		"Location of the diagnostic history file (defaults to the user data directory)",
	)

	cobraCommand.MarkFlagsMutuallyExclusive(flagDev, flagAddr)

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *DaemonCmd) run(_ *cobra.Command, _ []string) error {
	logger := c.Logger()

	// Validate flags.
	addr := strings.TrimSpace(c.Addr)

	// Override address for dev mode.
	if c.Dev {
		devAddr := "localhost:8090"
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	if err := daemon.IsValidAddr(addr); err != nil {
		return err
	}

	daemonOpts := []daemon.Option{
		daemon.WithHealthCheckInterval(c.CheckInterval),
		daemon.WithHealthCheckTimeout(c.CheckTimeout),
		daemon.WithProbeOptions(
			probe.WithTimeout(c.ProbeTimeout),
		),
		daemon.WithAdmissionOptions(
			admission.WithAllowedRejections(c.AllowedRejections),
			admission.WithSamplingInterval(c.SamplingInterval),
			admission.WithRecoveryInterval(c.RecoveryInterval),
			admission.WithStartupDuration(c.StartupDuration),
			admission.WithDegradedThreshold(c.DegradedThreshold),
		),
		daemon.WithAPIOptions(
			daemon.WithCORSEnabled(c.CORSEnable),
			daemon.WithCORSAllowOrigins(c.CORSOrigins),
		),
	}

	if c.History {
		var historyOpts []history.Option
		if c.HistoryFile != "" {
			historyOpts = append(historyOpts, history.WithPath(c.HistoryFile))
		}

		store, err := history.NewFileStore(logger, historyOpts...)
		if err != nil {
			return fmt.Errorf("failed to create history store: %w", err)
		}
		daemonOpts = append(daemonOpts, daemon.WithHistoryStore(store))
	}

	d, err := daemon.NewDaemon(logger, c.cfgLoader, addr, daemonOpts...)
	if err != nil {
		return fmt.Errorf("failed to create daemon instance: %w", err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer daemonCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	// Print --dev mode banner if required.
	if c.Dev {
		logger.Info("Launching daemon in dev mode", "addr", addr)
		banner := fmt.Sprintf("mcp-diagnostics daemon running in 'dev' mode.\n\n"+
			"  Local API:\thttp://%s/api/v1\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Registry file:\t%s\n",
			addr, addr, flags.ConfigFile)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += "\nPress Ctrl+C to stop.\n\n"
		fmt.Print(banner)
	}

	select {
	case <-daemonCtx.Done():
		logger.Info("Shutting down daemon")
		err := <-runErr // Wait for cleanup and deferred logging.
		return err      // Graceful Ctrl+C / SIGTERM.
	case err := <-runErr:
		logger.Error("daemon exited with error", "error", err)
		return err // Propagate daemon failure.
	}
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	internalcmd "github.com/davidgut1982/mcp-diagnostics/internal/cmd"
	cmdopts "github.com/davidgut1982/mcp-diagnostics/internal/cmd/options"
	"github.com/davidgut1982/mcp-diagnostics/internal/cmd/output"
	"github.com/davidgut1982/mcp-diagnostics/internal/config"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/filter"
	"github.com/davidgut1982/mcp-diagnostics/internal/flags"
	"github.com/davidgut1982/mcp-diagnostics/internal/printer"
	"github.com/davidgut1982/mcp-diagnostics/internal/probe"
)

// quickTimeout replaces the configured timeout when --quick is set.
const quickTimeout = 1 * time.Second

// CheckCmd should be used to represent the 'check' command.
type CheckCmd struct {
	*internalcmd.BaseCmd
	Timeout      time.Duration
	Quick        bool
	CriticalOnly bool
	Concurrency  int64
	Format       internalcmd.OutputFormat
	cfgLoader    config.Loader
	batchPrinter output.Printer[domain.BatchResult]
}

// NewCheckCmd creates a newly configured (Cobra) command.
func NewCheckCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CheckCmd{
		BaseCmd:      baseCmd,
		cfgLoader:    opts.ConfigLoader,
		Format:       internalcmd.FormatText,
		batchPrinter: printer.NewBatchPrinter(),
	}

	cobraCmd := &cobra.Command{
		Use:   "check [server ...]",
		Short: "Probes the MCP servers in the registry and reports reachability",
		Long: "Probes MCP servers over their configured transports and reports per-server\n" +
			"status plus aggregate counts. Probes every registered server unless specific\n" +
			"server names are given.",
		RunE: c.run,
	}

	cobraCmd.Flags().DurationVar(
		&c.Timeout,
		"timeout",
		probe.DefaultTimeout(),
		"Timeout for each individual server probe",
	)

	cobraCmd.Flags().BoolVar(
		&c.Quick,
		"quick",
		false,
		"Check critical servers only, with a 1s timeout",
	)

	cobraCmd.Flags().BoolVar(
		&c.CriticalOnly,
		"critical-only",
		false,
		"Check critical servers only",
	)

	cobraCmd.Flags().Int64Var(
		&c.Concurrency,
		"concurrency",
		probe.DefaultStdioConcurrency(),
		"Maximum number of stdio servers probed at once",
	)

	allowed := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCmd, nil
}

// run is configured (via NewCheckCmd) to be called by the Cobra framework when the command is executed.
func (c *CheckCmd) run(cmd *cobra.Command, args []string) error {
	handler, err := internalcmd.FormatHandler(cmd.OutOrStdout(), c.Format, c.batchPrinter)
	if err != nil {
		return err
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return handler.HandleError(err)
	}

	timeout := c.Timeout
	criticalOnly := c.CriticalOnly
	if c.Quick {
		timeout = quickTimeout
		criticalOnly = true
	}

	scheduler, err := probe.NewScheduler(
		c.Logger(),
		probe.WithTimeout(timeout),
		probe.WithStdioConcurrency(c.Concurrency),
		probe.WithCriticalOnly(criticalOnly),
	)
	if err != nil {
		return handler.HandleError(err)
	}

	descriptors := cfg.Descriptors()
	if len(args) > 0 {
		descriptors, err = selectDescriptors(descriptors, args)
		if err != nil {
			return handler.HandleError(err)
		}
	}

	batch := scheduler.RunBatch(cmd.Context(), descriptors)

	return handler.HandleResult(batch)
}

// selectDescriptors restricts descriptors to the requested server names.
func selectDescriptors(
	descriptors []domain.ServerDescriptor,
	requested []string,
) ([]domain.ServerDescriptor, error) {
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Name)
	}

	selected, err := filter.MatchRequestedSlice(requested, names)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(selected))
	for _, n := range selected {
		wanted[n] = struct{}{}
	}

	out := make([]domain.ServerDescriptor, 0, len(selected))
	for _, d := range descriptors {
		if _, ok := wanted[filter.NormalizeString(d.Name)]; ok {
			out = append(out, d)
		}
	}

	return out, nil
}

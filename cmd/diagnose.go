package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	internalcmd "github.com/davidgut1982/mcp-diagnostics/internal/cmd"
	cmdopts "github.com/davidgut1982/mcp-diagnostics/internal/cmd/options"
	"github.com/davidgut1982/mcp-diagnostics/internal/cmd/output"
	"github.com/davidgut1982/mcp-diagnostics/internal/config"
	"github.com/davidgut1982/mcp-diagnostics/internal/diagnose"
	"github.com/davidgut1982/mcp-diagnostics/internal/flags"
	"github.com/davidgut1982/mcp-diagnostics/internal/printer"
	"github.com/davidgut1982/mcp-diagnostics/internal/probe"
)

// DiagnoseCmd should be used to represent the 'diagnose' command.
type DiagnoseCmd struct {
	*internalcmd.BaseCmd
	Timeout       time.Duration
	Format        internalcmd.OutputFormat
	cfgLoader     config.Loader
	reportPrinter output.Printer[diagnose.Report]
}

// NewDiagnoseCmd creates a newly configured (Cobra) command.
func NewDiagnoseCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &DiagnoseCmd{
		BaseCmd:       baseCmd,
		cfgLoader:     opts.ConfigLoader,
		Format:        internalcmd.FormatText,
		reportPrinter: printer.NewReportPrinter(),
	}

	cobraCmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Runs the full diagnostic: ports, health probes and configuration",
		Long: "Runs the port consistency check, a full probing pass over every registered\n" +
			"server, and configuration validation, then reports a combined summary.\n" +
			"Exits non-zero when critical issues are found.",
		RunE: c.run,
	}

	cobraCmd.Flags().DurationVar(
		&c.Timeout,
		"timeout",
		probe.DefaultTimeout(),
		"Timeout for each individual server probe",
	)

	allowed := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCmd, nil
}

// run is configured (via NewDiagnoseCmd) to be called by the Cobra framework when the command is executed.
func (c *DiagnoseCmd) run(cmd *cobra.Command, _ []string) error {
	handler, err := internalcmd.FormatHandler(cmd.OutOrStdout(), c.Format, c.reportPrinter)
	if err != nil {
		return err
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return handler.HandleError(err)
	}

	scheduler, err := probe.NewScheduler(c.Logger(), probe.WithTimeout(c.Timeout))
	if err != nil {
		return handler.HandleError(err)
	}

	runner := diagnose.NewRunner(c.Logger(), scheduler, probe.DefaultPortRangeMin(), probe.DefaultPortRangeMax())
	report := runner.Run(cmd.Context(), cfg)

	if err := handler.HandleResult(report); err != nil {
		return err
	}

	if report.Summary.CriticalIssues > 0 {
		return fmt.Errorf("diagnostic found %d critical issue(s)", report.Summary.CriticalIssues)
	}

	return nil
}

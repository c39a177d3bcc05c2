package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	internalcmd "github.com/davidgut1982/mcp-diagnostics/internal/cmd"
	cmdopts "github.com/davidgut1982/mcp-diagnostics/internal/cmd/options"
	"github.com/davidgut1982/mcp-diagnostics/internal/cmd/output"
	"github.com/davidgut1982/mcp-diagnostics/internal/config"
	"github.com/davidgut1982/mcp-diagnostics/internal/flags"
	"github.com/davidgut1982/mcp-diagnostics/internal/printer"
	"github.com/davidgut1982/mcp-diagnostics/internal/probe"
)

// PortsCmd should be used to represent the 'ports' command.
type PortsCmd struct {
	*internalcmd.BaseCmd
	RangeMin     int
	RangeMax     int
	Format       internalcmd.OutputFormat
	cfgLoader    config.Loader
	portsPrinter output.Printer[config.PortReport]
}

// NewPortsCmd creates a newly configured (Cobra) command.
func NewPortsCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &PortsCmd{
		BaseCmd:      baseCmd,
		cfgLoader:    opts.ConfigLoader,
		Format:       internalcmd.FormatText,
		portsPrinter: printer.NewPortsPrinter(),
	}

	cobraCmd := &cobra.Command{
		Use:   "ports",
		Short: "Checks SSE port assignments for conflicts and range violations",
		Long: "Extracts the SSE port assignment of every server from its launch arguments\n" +
			"and reports conflicts, servers without ports, and ports outside the expected range.",
		RunE: c.run,
	}

	cobraCmd.Flags().IntVar(
		&c.RangeMin,
		"range-min",
		probe.DefaultPortRangeMin(),
		"Lowest port expected to be assigned to an SSE server",
	)

	cobraCmd.Flags().IntVar(
		&c.RangeMax,
		"range-max",
		probe.DefaultPortRangeMax(),
		"Highest port expected to be assigned to an SSE server",
	)

	allowed := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCmd, nil
}

// run is configured (via NewPortsCmd) to be called by the Cobra framework when the command is executed.
func (c *PortsCmd) run(cmd *cobra.Command, _ []string) error {
	handler, err := internalcmd.FormatHandler(cmd.OutOrStdout(), c.Format, c.portsPrinter)
	if err != nil {
		return err
	}

	if c.RangeMin > c.RangeMax {
		return handler.HandleError(fmt.Errorf("range-min %d cannot exceed range-max %d", c.RangeMin, c.RangeMax))
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return handler.HandleError(err)
	}

	report := config.CheckPorts(cfg, c.RangeMin, c.RangeMax)

	return handler.HandleResult(report)
}

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
)

// ValidateCmd should be used to represent the 'validate' command.
type ValidateCmd struct {
	*internalcmd.BaseCmd
	Format            internalcmd.OutputFormat
	cfgLoader         config.Loader
	validationPrinter output.Printer[config.ValidationReport]
}

// NewValidateCmd creates a newly configured (Cobra) command.
func NewValidateCmd(baseCmd *internalcmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ValidateCmd{
		BaseCmd:           baseCmd,
		cfgLoader:         opts.ConfigLoader,
		Format:            internalcmd.FormatText,
		validationPrinter: printer.NewValidationPrinter(),
	}

	cobraCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validates every server entry in the registry",
		Long: "Validates every server entry in the registry: launch configuration,\n" +
			"launcher arguments, referenced paths and descriptions.",
		RunE: c.run,
	}

	allowed := internalcmd.AllowedOutputFormats()
	cobraCmd.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCmd, nil
}

// run is configured (via NewValidateCmd) to be called by the Cobra framework when the command is executed.
func (c *ValidateCmd) run(cmd *cobra.Command, _ []string) error {
	handler, err := internalcmd.FormatHandler(cmd.OutOrStdout(), c.Format, c.validationPrinter)
	if err != nil {
		return err
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return handler.HandleError(err)
	}

	report := config.Validate(cfg)

	return handler.HandleResult(report)
}

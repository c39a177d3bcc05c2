package cmd

import (
	"github.com/spf13/cobra"

	internalcmd "github.com/davidgut1982/mcp-diagnostics/internal/cmd"
	"github.com/davidgut1982/mcp-diagnostics/internal/flags"
)

// RootCmd should be used to represent the root command.
type RootCmd struct {
	*internalcmd.BaseCmd
}

// Execute builds the command tree and runs the CLI.
func Execute() error {
	rootCmd, err := NewRootCmd()
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

// NewRootCmd creates a newly configured (Cobra) command.
func NewRootCmd() (*cobra.Command, error) {
	c := &RootCmd{
		BaseCmd: &internalcmd.BaseCmd{},
	}

	cobraCmd := &cobra.Command{
		Use:   "mcp-diagnostics <command> [args]",
		Short: "Health diagnostics and admission control for a fleet of MCP servers",
		Long: "The 'mcp-diagnostics' CLI probes the MCP servers declared in a registry file,\n" +
			"validates their configuration and port assignments, and can run as a daemon\n" +
			"exposing the same checks plus orchestrator health probes over HTTP.",
		SilenceUsage: true,
		Version:      internalcmd.Version(),
	}

	// Global flags
	flags.InitFlags(cobraCmd.PersistentFlags())

	builders := []func() (*cobra.Command, error){
		func() (*cobra.Command, error) { return NewCheckCmd(c.BaseCmd) },
		func() (*cobra.Command, error) { return NewValidateCmd(c.BaseCmd) },
		func() (*cobra.Command, error) { return NewPortsCmd(c.BaseCmd) },
		func() (*cobra.Command, error) { return NewDiagnoseCmd(c.BaseCmd) },
		func() (*cobra.Command, error) { return NewDaemonCmd(c.BaseCmd) },
	}

	for _, build := range builders {
		sub, err := build()
		if err != nil {
			return nil, err
		}
		cobraCmd.AddCommand(sub)
	}

	return cobraCmd, nil
}

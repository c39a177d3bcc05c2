package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/davidgut1982/mcp-diagnostics/internal/config"
)

// stubLoader returns a fixed registry regardless of the requested path.
type stubLoader struct {
	cfg *config.Config
	err error
}

func (s *stubLoader) Load(_ string) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

// executeCommand runs a built command with the given arguments and returns
// the captured standard output.
func executeCommand(t *testing.T, cobraCmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cobraCmd.SetOut(&out)
	cobraCmd.SetErr(&out)
	cobraCmd.SetArgs(args)

	err := cobraCmd.Execute()

	return out.String(), err
}

func requireFlags(t *testing.T, cobraCmd *cobra.Command, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NotNil(t, cobraCmd.Flags().Lookup(name), "expected flag %q to be registered", name)
	}
}

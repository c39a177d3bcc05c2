package cmd

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidgut1982/mcp-diagnostics/internal/cmd/output"
)

func TestAllowedOutputFormats_SortedAndComplete(t *testing.T) {
	t.Parallel()

	formats := AllowedOutputFormats()

	require.Equal(t, OutputFormats{FormatJSON, FormatText, FormatYAML}, formats)
	require.Equal(t, "json, text, yaml", formats.String())
}

func TestOutputFormat_Set(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{name: "json", input: "json", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "text", input: "text", want: FormatText},
		{name: "mixed case", input: "JsOn", want: FormatJSON},
		{name: "surrounding whitespace", input: "  yaml ", want: FormatYAML},
		{name: "unknown format", input: "xml", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var f OutputFormat
			err := f.Set(tc.input)

			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "invalid format")
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, f)
		})
	}
}

func TestOutputFormat_FlagValue(t *testing.T) {
	t.Parallel()

	f := FormatYAML
	require.Equal(t, "yaml", f.String())
	require.Equal(t, "format", f.Type())
}

type healthLine struct {
	Name string
}

type healthLinePrinter struct{}

func (healthLinePrinter) Header(w io.Writer, count int) {
	_, _ = fmt.Fprintf(w, "servers: %d\n", count)
}

func (healthLinePrinter) SetHeader(_ output.WriteFunc[healthLine]) {}

func (healthLinePrinter) Item(w io.Writer, item healthLine) error {
	_, err := fmt.Fprintf(w, "- %s\n", item.Name)
	return err
}

func (healthLinePrinter) Footer(io.Writer, int) {}

func (healthLinePrinter) SetFooter(_ output.WriteFunc[healthLine]) {}

func TestFormatHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  OutputFormat
		want    string
		wantErr string
	}{
		{
			name:   "json",
			format: FormatJSON,
			want:   "{\n  \"results\": [\n    {\n      \"Name\": \"time-server\"\n    }\n  ]\n}\n",
		},
		{
			name:   "yaml",
			format: FormatYAML,
			want:   "results:\n  - name: time-server\n",
		},
		{
			name:   "text",
			format: FormatText,
			want:   "servers: 1\n- time-server\n",
		},
		{
			name:   "empty defaults to text",
			format: "",
			want:   "servers: 1\n- time-server\n",
		},
		{
			name:    "unsupported format",
			format:  "csv",
			wantErr: "unsupported output format 'csv'",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			h, err := FormatHandler[healthLine](&buf, tc.format, healthLinePrinter{})

			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				require.Nil(t, h)
				return
			}

			require.NoError(t, err)
			require.NoError(t, h.HandleResults([]healthLine{{Name: "time-server"}}...))
			require.Equal(t, tc.want, buf.String())
		})
	}
}

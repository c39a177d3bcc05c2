package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/davidgut1982/mcp-diagnostics/internal/cmd/output"
	"github.com/davidgut1982/mcp-diagnostics/internal/config"
)

var _ output.Printer[config.PortReport] = (*PortsPrinter)(nil)

// PortsPrinter renders a port consistency report.
type PortsPrinter struct {
	headerFunc output.WriteFunc[config.PortReport]
	footerFunc output.WriteFunc[config.PortReport]
}

func NewPortsPrinter() *PortsPrinter {
	return &PortsPrinter{}
}

func (p *PortsPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *PortsPrinter) SetHeader(fn output.WriteFunc[config.PortReport]) {
	p.headerFunc = fn
}

func (p *PortsPrinter) Item(w io.Writer, report config.PortReport) error {
	if _, err := fmt.Fprintln(w, "PORT CONSISTENCY CHECK"); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, divider())

	if len(report.Conflicts) == 0 {
		_, _ = fmt.Fprintln(w, "✓ No port conflicts detected")
	} else {
		_, _ = fmt.Fprintln(w, "✗ Port conflicts found!")
		for _, conflict := range report.Conflicts {
			_, _ = fmt.Fprintf(w, "    ✗ port %d: %s\n", conflict.Port, strings.Join(conflict.Servers, ", "))
		}
	}

	_, _ = fmt.Fprintf(w, "  Stdio Servers: %d\n", len(report.StdioServers))
	_, _ = fmt.Fprintf(w, "  SSE Servers: %d\n", len(report.SSEServers))
	_, _ = fmt.Fprintf(w, "  Conflicts: %d\n", len(report.Conflicts))

	for _, server := range report.SSEWithoutPorts {
		_, _ = fmt.Fprintf(w, "    ⚠ %s: SSE server without a port\n", server)
	}
	for _, sp := range report.OutOfRange {
		_, _ = fmt.Fprintf(w, "    ⚠ %s: port %d outside %d-%d\n", sp.Server, sp.Port, report.RangeMin, report.RangeMax)
	}
	if len(report.Gaps) > 0 {
		_, _ = fmt.Fprintf(w, "  Unused ports in range: %d\n", len(report.Gaps))
	}

	_, _ = fmt.Fprintln(w, "")

	return nil
}

func (p *PortsPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *PortsPrinter) SetFooter(fn output.WriteFunc[config.PortReport]) {
	p.footerFunc = fn
}

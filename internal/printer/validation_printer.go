package printer

import (
	"fmt"
	"io"
	"sort"

	"github.com/davidgut1982/mcp-diagnostics/internal/cmd/output"
	"github.com/davidgut1982/mcp-diagnostics/internal/config"
)

var _ output.Printer[config.ValidationReport] = (*ValidationPrinter)(nil)

// ValidationPrinter renders a configuration validation report.
type ValidationPrinter struct {
	headerFunc output.WriteFunc[config.ValidationReport]
	footerFunc output.WriteFunc[config.ValidationReport]
}

func NewValidationPrinter() *ValidationPrinter {
	return &ValidationPrinter{}
}

func (p *ValidationPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ValidationPrinter) SetHeader(fn output.WriteFunc[config.ValidationReport]) {
	p.headerFunc = fn
}

func (p *ValidationPrinter) Item(w io.Writer, report config.ValidationReport) error {
	if _, err := fmt.Fprintln(w, "CONFIGURATION CHECK"); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, divider())
	_, _ = fmt.Fprintf(w, "  Total Servers: %d\n", report.TotalServers)
	_, _ = fmt.Fprintf(w, "  Consistent Format: %d\n", report.ConsistentFormat)
	_, _ = fmt.Fprintf(w, "  Servers with Issues: %d\n", report.ServersWithIssues)

	transports := make([]string, 0, len(report.TransportStats))
	for transport := range report.TransportStats {
		transports = append(transports, transport)
	}
	sort.Strings(transports)
	for _, transport := range transports {
		if report.TransportStats[transport] == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s: %d\n", transport, report.TransportStats[transport])
	}

	if len(report.Issues) > 0 {
		_, _ = fmt.Fprintln(w, "")
		_, _ = fmt.Fprintln(w, "  Configuration Issues:")
		for _, serverIssues := range report.Issues {
			for _, issue := range serverIssues.Issues {
				_, _ = fmt.Fprintf(w, "    ✗ %s: %s\n", serverIssues.Server, issue)
			}
		}
	}

	_, _ = fmt.Fprintln(w, "")

	return nil
}

func (p *ValidationPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ValidationPrinter) SetFooter(fn output.WriteFunc[config.ValidationReport]) {
	p.footerFunc = fn
}

package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/davidgut1982/mcp-diagnostics/internal/cmd/output"
	"github.com/davidgut1982/mcp-diagnostics/internal/diagnose"
)

var _ output.Printer[diagnose.Report] = (*ReportPrinter)(nil)

// ReportPrinter renders a full diagnostic report section by section,
// closing with the summary block and recommendations.
type ReportPrinter struct {
	headerFunc output.WriteFunc[diagnose.Report]
	footerFunc output.WriteFunc[diagnose.Report]

	ports      *PortsPrinter
	batch      *BatchPrinter
	validation *ValidationPrinter
}

func NewReportPrinter() *ReportPrinter {
	return &ReportPrinter{
		ports:      NewPortsPrinter(),
		batch:      NewBatchPrinter(),
		validation: NewValidationPrinter(),
	}
}

func (p *ReportPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ReportPrinter) SetHeader(fn output.WriteFunc[diagnose.Report]) {
	p.headerFunc = fn
}

func (p *ReportPrinter) Item(w io.Writer, report diagnose.Report) error {
	if err := p.ports.Item(w, report.PortCheck); err != nil {
		return err
	}
	if err := p.batch.Item(w, report.HealthCheck); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, "")
	if err := p.validation.Item(w, report.ConfigCheck); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, strings.Repeat("=", sectionDivider))
	_, _ = fmt.Fprintln(w, "SUMMARY")
	_, _ = fmt.Fprintln(w, strings.Repeat("=", sectionDivider))
	_, _ = fmt.Fprintf(w, "Status: %s\n", strings.ToUpper(report.Summary.Status))
	_, _ = fmt.Fprintf(w, "Total Issues: %d\n", report.Summary.TotalIssues)
	_, _ = fmt.Fprintf(w, "Critical Issues: %d\n", report.Summary.CriticalIssues)

	if len(report.Recommendations) > 0 {
		_, _ = fmt.Fprintln(w, "")
		for _, rec := range report.Recommendations {
			_, _ = fmt.Fprintf(w, "  - %s\n", rec)
		}
	}

	return nil
}

func (p *ReportPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ReportPrinter) SetFooter(fn output.WriteFunc[diagnose.Report]) {
	p.footerFunc = fn
}

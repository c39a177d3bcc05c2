package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/davidgut1982/mcp-diagnostics/internal/cmd/output"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
)

var _ output.Printer[domain.ProbeResult] = (*ProbePrinter)(nil)

const sectionDivider = 80

// divider returns a horizontal rule used to separate report sections.
func divider() string {
	return strings.Repeat("-", sectionDivider)
}

// statusMark returns the symbol used for a probe status in text output.
func statusMark(status domain.ProbeStatus) string {
	switch status {
	case domain.ProbeStatusOnline:
		return "✓"
	case domain.ProbeStatusPartial:
		return "⚠"
	default:
		return "✗"
	}
}

// ProbePrinter renders a single probe outcome as one or more indented lines.
type ProbePrinter struct {
	headerFunc output.WriteFunc[domain.ProbeResult]
	footerFunc output.WriteFunc[domain.ProbeResult]
}

func NewProbePrinter() *ProbePrinter {
	return &ProbePrinter{
		headerFunc: DefaultProbeHeader(),
		footerFunc: DefaultProbeFooter(),
	}
}

// DefaultProbeHeader prints the health check section banner.
func DefaultProbeHeader() output.WriteFunc[domain.ProbeResult] {
	return func(w io.Writer, _ int) {
		_, _ = fmt.Fprintln(w, "HEALTH CHECK")
		_, _ = fmt.Fprintln(w, divider())
	}
}

// DefaultProbeFooter prints the number of servers checked.
func DefaultProbeFooter() output.WriteFunc[domain.ProbeResult] {
	return func(w io.Writer, count int) {
		_, _ = fmt.Fprintln(w, "")
		_, _ = fmt.Fprintf(w, "Checked %d server(s)\n", count)
	}
}

func (p *ProbePrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ProbePrinter) SetHeader(fn output.WriteFunc[domain.ProbeResult]) {
	p.headerFunc = fn
}

func (p *ProbePrinter) Item(w io.Writer, result domain.ProbeResult) error {
	line := fmt.Sprintf("  %s %s (%s): %s", statusMark(result.Status), result.Name, result.Transport, result.Status)
	if result.ResponseTime != nil {
		line += fmt.Sprintf(" [%dms]", result.ResponseTime.Milliseconds())
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	if result.Note != "" {
		_, _ = fmt.Fprintf(w, "      note: %s\n", result.Note)
	}
	if result.Error != "" {
		_, _ = fmt.Fprintf(w, "      error: %s\n", result.Error)
	}
	if result.Stderr != "" {
		_, _ = fmt.Fprintf(w, "      stderr: %s\n", truncate(result.Stderr, 100))
	}
	if len(result.RunningProcesses) > 0 {
		_, _ = fmt.Fprintf(w, "      running processes: %d\n", len(result.RunningProcesses))
	}
	for _, alt := range result.AlternativeTransports {
		_, _ = fmt.Fprintf(w, "      alternative transport: %s on port %d\n", alt.Type, alt.Port)
	}
	if result.VenvHealth != nil {
		_, _ = fmt.Fprintf(w, "      venv: %s\n", result.VenvHealth.Status)
	}

	return nil
}

func (p *ProbePrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ProbePrinter) SetFooter(fn output.WriteFunc[domain.ProbeResult]) {
	p.footerFunc = fn
}

// truncate shortens s to max runes, appending an ellipsis when trimmed.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

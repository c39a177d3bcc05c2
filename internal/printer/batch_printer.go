package printer

import (
	"fmt"
	"io"

	"github.com/davidgut1982/mcp-diagnostics/internal/cmd/output"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
)

var _ output.Printer[domain.BatchResult] = (*BatchPrinter)(nil)

// BatchPrinter renders a whole probing pass: per-server lines via the
// configured probe printer, followed by the status tallies.
type BatchPrinter struct {
	headerFunc   output.WriteFunc[domain.BatchResult]
	footerFunc   output.WriteFunc[domain.BatchResult]
	ProbePrinter output.Printer[domain.ProbeResult]
}

func NewBatchPrinter() *BatchPrinter {
	return &BatchPrinter{
		ProbePrinter: NewProbePrinter(),
	}
}

func (p *BatchPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *BatchPrinter) SetHeader(fn output.WriteFunc[domain.BatchResult]) {
	p.headerFunc = fn
}

func (p *BatchPrinter) Item(w io.Writer, batch domain.BatchResult) error {
	p.ProbePrinter.Header(w, len(batch.Results))

	for _, result := range batch.Results {
		if err := p.ProbePrinter.Item(w, result); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintf(w, "  Servers Online: %d/%d\n", batch.Counts.Online, batch.Counts.Total)
	_, _ = fmt.Fprintf(w, "  Servers Offline: %d\n", batch.Counts.Offline)
	if batch.Counts.Partial > 0 {
		_, _ = fmt.Fprintf(w, "  Servers Partial: %d\n", batch.Counts.Partial)
	}
	_, _ = fmt.Fprintf(w, "  Servers Error: %d\n", batch.Counts.Error)

	return nil
}

func (p *BatchPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *BatchPrinter) SetFooter(fn output.WriteFunc[domain.BatchResult]) {
	p.footerFunc = fn
}

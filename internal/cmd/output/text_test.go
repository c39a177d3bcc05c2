package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubPrinter records printer calls and can fail on a chosen item.
type stubPrinter[T comparable] struct {
	headerCalled bool
	headerCount  int
	items        []T
	footerCalled bool
	footerCount  int
	errOnItem    T
}

func (p *stubPrinter[T]) Header(w io.Writer, count int) {
	p.headerCalled = true
	p.headerCount = count
	_, _ = io.WriteString(w, "== begin ==\n")
}

func (p *stubPrinter[T]) SetHeader(_ WriteFunc[T]) {}

func (p *stubPrinter[T]) SetFooter(_ WriteFunc[T]) {}

func (p *stubPrinter[T]) Item(w io.Writer, item T) error {
	p.items = append(p.items, item)

	if _, err := fmt.Fprintf(w, "* %v\n", item); err != nil {
		return err
	}

	if item == p.errOnItem {
		return errors.New("printer failed")
	}

	return nil
}

func (p *stubPrinter[T]) Footer(w io.Writer, count int) {
	p.footerCalled = true
	p.footerCount = count
	_, _ = io.WriteString(w, "== end ==\n")
}

func TestNewTextHandler_Writer(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := NewTextHandler[string](buf, &stubPrinter[string]{})
	require.Equal(t, buf, h.Writer())
}

func TestTextHandler_HandleResult(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	printer := &stubPrinter[string]{}
	h := NewTextHandler[string](buf, printer)

	err := h.HandleResult("github-mcp")
	require.NoError(t, err)

	// A single result is printed without framing.
	require.False(t, printer.headerCalled)
	require.False(t, printer.footerCalled)
	require.Equal(t, "* github-mcp\n", buf.String())
}

func TestTextHandler_HandleResults_Empty(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	printer := &stubPrinter[int]{}
	h := NewTextHandler[int](buf, printer)

	err := h.HandleResults([]int{}...)
	require.NoError(t, err)
	require.False(t, printer.headerCalled)
	require.False(t, printer.footerCalled)
	require.Equal(t, "No items found\n", buf.String())
}

func TestTextHandler_HandleResults_WithItems(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	printer := &stubPrinter[string]{}
	h := NewTextHandler[string](buf, printer)

	items := []string{"github-mcp", "time-server"}
	err := h.HandleResults(items...)
	require.NoError(t, err)

	require.True(t, printer.headerCalled)
	require.Equal(t, len(items), printer.headerCount)
	require.Equal(t, items, printer.items)
	require.True(t, printer.footerCalled)
	require.Equal(t, len(items), printer.footerCount)

	expected := "== begin ==\n* github-mcp\n* time-server\n== end ==\n"
	require.Equal(t, expected, buf.String())
}

func TestTextHandler_HandleResults_ItemError(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	printer := &stubPrinter[int]{errOnItem: 2}
	h := NewTextHandler[int](buf, printer)

	err := h.HandleResults([]int{1, 2, 3}...)
	require.Error(t, err)
	require.Contains(t, err.Error(), "printer failed")

	// Printing stops on the failing item and the footer is skipped.
	require.True(t, printer.headerCalled)
	require.Equal(t, []int{1, 2}, printer.items)
	require.False(t, printer.footerCalled)
}

func TestTextHandler_HandleError(t *testing.T) {
	t.Parallel()

	h := NewTextHandler[string](nil, &stubPrinter[string]{})

	boom := errors.New("registry unreachable")
	require.EqualError(t, h.HandleError(boom), "registry unreachable")
}

package output

import "io"

// Handler renders command results in one output format. A command obtains a
// Handler for the user's requested format and hands it every outcome,
// successful or not.
type Handler[T any] interface {
	// Writer returns the io.Writer this Handler will write to.
	Writer() io.Writer

	// HandleResult renders a single item.
	HandleResult(item T) error

	// HandleResults renders a collection of items.
	HandleResults(items ...T) error

	// HandleError renders the error.
	HandleError(err error) error
}

// WriteFunc writes format-independent framing (a header or footer) for a
// collection of items of type T. It receives the destination writer and the
// number of items being printed, never the items themselves.
type WriteFunc[T any] func(w io.Writer, count int)

// Printer renders items of type T as human-readable text. Structured formats
// bypass the Printer and serialize the payload types below instead.
type Printer[T any] interface {
	// Header should be called once before the Item.
	Header(w io.Writer, count int)

	// SetHeader can be used to configure the Header function.
	SetHeader(fn WriteFunc[T])

	// Item prints one element.
	Item(w io.Writer, elem T) error

	// Footer should be called once after the Item.
	Footer(w io.Writer, count int)

	// SetFooter can be used to configure the Footer function.
	SetFooter(fn WriteFunc[T])
}

// ResultPayload wraps a single value for structured output, serialized under
// the key "result".
type ResultPayload[T any] struct {
	Result T `json:"result" yaml:"result"`
}

// ResultsPayload wraps a list of values for structured output, serialized
// under the key "results".
type ResultsPayload[T any] struct {
	Results []T `json:"results" yaml:"results"`
}

// ErrorPayload carries a failure for structured output, serialized under the
// key "error".
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
}

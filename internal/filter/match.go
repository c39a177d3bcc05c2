// Package filter provides generic, key-based predicate matching used to
// narrow health listings and to resolve requested server names against a
// registry.
package filter

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
)

// Predicate reports whether an item satisfies the given filter value.
type Predicate[T any] func(item T, filterValue string) bool

// StringValueProvider extracts the string field a predicate inspects.
type StringValueProvider[T any] func(T) string

// Options holds the matcher table consulted by Match.
type Options[T any] struct {
	matchers    map[string]Predicate[T]
	unsupported map[string]struct{}
	logFunc     func(key string, val string)
}

// Option configures filter Options.
type Option[T any] func(*Options[T]) error

func defaultOptions[T any]() Options[T] {
	return Options[T]{
		matchers:    make(map[string]Predicate[T]),
		unsupported: make(map[string]struct{}),
		logFunc:     func(key, val string) {},
	}
}

// NewOptions creates Options with defaults and applies the given options.
func NewOptions[T any](opt ...Option[T]) (Options[T], error) {
	opts := defaultOptions[T]()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return Options[T]{}, err
		}
	}

	return opts, nil
}

// NormalizeString lowercases a value and strips surrounding whitespace.
// All filter keys and values are compared in this form.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Equals builds a Predicate that matches when the extracted value equals the
// filter value after normalization. Used for exact fields such as a probe
// status.
func Equals[T any](provider StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		return NormalizeString(provider(item)) == NormalizeString(val)
	}
}

// Partial builds a Predicate that matches when the extracted value contains
// the filter value as a substring after normalization. Used for free-form
// fields such as a server name.
func Partial[T any](provider StringValueProvider[T]) Predicate[T] {
	return func(item T, val string) bool {
		return strings.Contains(NormalizeString(provider(item)), NormalizeString(val))
	}
}

// WithMatcher registers the predicate consulted for a filter key.
func WithMatcher[T any](key string, value Predicate[T]) Option[T] {
	return func(o *Options[T]) error {
		o.matchers[NormalizeString(key)] = value
		return nil
	}
}

// WithUnsupportedKeys marks filter keys that always exclude the item.
// Callers can surface these via WithLogFunc rather than silently ignoring
// them.
func WithUnsupportedKeys[T any](keys ...string) Option[T] {
	return func(o *Options[T]) error {
		for _, key := range keys {
			o.unsupported[NormalizeString(key)] = struct{}{}
		}
		return nil
	}
}

// WithLogFunc sets the function invoked when an unsupported key is seen.
func WithLogFunc[T any](logFunc func(key string, val string)) Option[T] {
	return func(o *Options[T]) error {
		if logFunc != nil {
			o.logFunc = logFunc
		}
		return nil
	}
}

// Match reports whether the item passes every filter. Keys without a
// registered matcher are ignored, empty keys are skipped, and an unsupported
// key rejects the item outright. A nil filters map matches everything.
func Match[T any](item T, filters map[string]string, opts ...Option[T]) (bool, error) {
	if filters == nil {
		return true, nil
	}

	filterOpts, err := NewOptions(opts...)
	if err != nil {
		return false, err
	}

	for key, val := range filters {
		k := NormalizeString(key)
		if k == "" {
			continue
		}

		if _, unsupported := filterOpts.unsupported[k]; unsupported {
			filterOpts.logFunc(k, val)
			return false, nil
		}

		matcher, ok := filterOpts.matchers[k]
		if !ok {
			continue
		}
		if !matcher(item, val) {
			return false, nil
		}
	}

	return true, nil
}

// MatchRequestedSlice resolves the requested server names against the
// available set, returning the normalized selection. An empty request selects
// everything. Names that resolve to nothing produce an error listing them.
func MatchRequestedSlice(requested []string, available []string) ([]string, error) {
	availableSet := make(map[string]struct{}, len(available))
	for _, v := range available {
		availableSet[NormalizeString(v)] = struct{}{}
	}

	if len(requested) == 0 {
		return slices.Collect(maps.Keys(availableSet)), nil
	}

	requestedSet := make(map[string]struct{}, len(requested))
	missing := make([]string, 0)

	for _, v := range requested {
		n := NormalizeString(v)
		requestedSet[n] = struct{}{}
		if _, ok := availableSet[n]; !ok {
			missing = append(missing, v)
		}
	}

	switch len(missing) {
	case 0:
		return slices.Collect(maps.Keys(requestedSet)), nil
	case len(requestedSet):
		return nil, fmt.Errorf("none of the requested servers were found")
	default:
		sort.Strings(missing)
		return nil, fmt.Errorf("missing servers: %s", strings.Join(missing, ", "))
	}
}

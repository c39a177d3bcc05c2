package probe

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/semaphore"

	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	interrors "github.com/davidgut1982/mcp-diagnostics/internal/errors"
)

// Scheduler fans a probing pass out across descriptors. Stdio probes acquire
// a permit before spawning since each one costs a real OS process; HTTP
// probes run unbounded. NewScheduler should be used to create instances of
// Scheduler.
type Scheduler struct {
	logger hclog.Logger
	opts   Options
	stdio  contracts.ServerProber
	http   contracts.ServerProber
	sem    *semaphore.Weighted
}

// NewScheduler creates a scheduler with optional configurations applied.
func NewScheduler(logger hclog.Logger, opt ...Option) (*Scheduler, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	stdio, err := NewStdioProbe(logger, opt...)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		logger: logger.Named("probe.scheduler"),
		opts:   opts,
		stdio:  stdio,
		http:   NewHTTPProbe(logger),
		sem:    semaphore.NewWeighted(opts.StdioConcurrency),
	}, nil
}

// WithProbers replaces both transport probers. Intended for tests.
func (s *Scheduler) WithProbers(stdio, http contracts.ServerProber) *Scheduler {
	if stdio != nil {
		s.stdio = stdio
	}
	if http != nil {
		s.http = http
	}
	return s
}

// RunBatch probes every descriptor concurrently and aggregates the outcomes.
// The returned batch contains exactly one result per dispatched descriptor;
// a single misbehaving probe never aborts the rest of the pass.
func (s *Scheduler) RunBatch(ctx context.Context, descriptors []domain.ServerDescriptor) domain.BatchResult {
	if s.opts.CriticalOnly {
		descriptors = s.filterCritical(descriptors)
	}

	s.logger.Debug("Starting probe batch", "servers", len(descriptors))

	results := make([]domain.ProbeResult, len(descriptors))

	var wg sync.WaitGroup
	for i, desc := range descriptors {
		wg.Add(1)
		go func(i int, desc domain.ServerDescriptor) {
			defer wg.Done()
			results[i] = s.probeOne(ctx, desc)
		}(i, desc)
	}
	wg.Wait()

	batch := domain.NewBatchResult(results)
	s.logger.Info(
		"Probe batch complete",
		"total", batch.Counts.Total,
		"online", batch.Counts.Online,
		"offline", batch.Counts.Offline,
		"partial", batch.Counts.Partial,
		"error", batch.Counts.Error,
	)

	return batch
}

// probeOne dispatches a single descriptor to its transport prober, converting
// panics into error results so the batch always completes.
func (s *Scheduler) probeOne(ctx context.Context, desc domain.ServerDescriptor) (result domain.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Probe panicked", "server", desc.Name, "panic", r)
			result = domain.ProbeResult{
				Name:      desc.Name,
				Transport: desc.Transport,
				Status:    domain.ProbeStatusError,
				Error:     fmt.Sprintf("probe panicked: %v", r),
			}
		}
	}()

	switch desc.Transport {
	case domain.TransportStdio:
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return domain.ProbeResult{
				Name:      desc.Name,
				Transport: desc.Transport,
				Status:    domain.ProbeStatusError,
				Error:     err.Error(),
			}
		}
		defer s.sem.Release(1)
		return s.stdio.Probe(ctx, desc, s.opts.Timeout)

	case domain.TransportHTTP:
		return s.http.Probe(ctx, desc, s.opts.Timeout)

	default:
		return domain.ProbeResult{
			Name:      desc.Name,
			Transport: desc.Transport,
			Status:    domain.ProbeStatusError,
			Error:     fmt.Sprintf("%s: %s", interrors.ErrUnknownTransport.Error(), desc.Transport),
		}
	}
}

func (s *Scheduler) filterCritical(descriptors []domain.ServerDescriptor) []domain.ServerDescriptor {
	filtered := make([]domain.ServerDescriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if _, ok := s.opts.CriticalServers[d.Name]; ok {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

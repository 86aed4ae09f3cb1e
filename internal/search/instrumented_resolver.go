package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nfrund/semsearch/internal/domain"
	"github.com/nfrund/semsearch/internal/metrics"
)

// ResolutionRecorder receives one observation per finished resolution.
type ResolutionRecorder interface {
	ObserveResolution(outcome string, durationSeconds float64, results int)
}

// InstrumentedResolver records outcome and latency of every resolution.
type InstrumentedResolver struct {
	next     domain.Resolver
	recorder ResolutionRecorder
}

// NewInstrumentedResolver wraps next, reporting to recorder.
func NewInstrumentedResolver(next domain.Resolver, recorder ResolutionRecorder) *InstrumentedResolver {
	return &InstrumentedResolver{next: next, recorder: recorder}
}

// Resolve implements domain.Resolver.
func (r *InstrumentedResolver) Resolve(ctx context.Context, query string) ([]domain.Result, error) {
	start := time.Now()
	results, err := r.next.Resolve(ctx, query)
	elapsed := time.Since(start)

	outcome := Outcome(ctx, err)
	r.recorder.ObserveResolution(outcome, elapsed.Seconds(), len(results))

	if outcome == metrics.OutcomeError {
		slog.Warn("Result resolution failed", "query", query, "duration", elapsed, "error", err)
	}
	return results, err
}

// Outcome classifies a resolution result for metrics and logging.
func Outcome(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrSuperseded) || errors.Is(context.Cause(ctx), domain.ErrSuperseded):
		return metrics.OutcomeSuperseded
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeError
	}
}

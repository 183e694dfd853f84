package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/application/address"
	"github.com/erp/backoffice/internal/domain/location"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names for outbound CEP lookups
const (
	MetricCEPLookups        = "backoffice.cep.lookups"
	MetricCEPLookupDuration = "backoffice.cep.lookup.duration"
)

var _ address.Provider = (*InstrumentedCEPProvider)(nil)

// InstrumentedCEPProvider counts provider calls by outcome and records their
// latency. Cache hits never reach it.
type InstrumentedCEPProvider struct {
	next     address.Provider
	lookups  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewInstrumentedCEPProvider wraps next with instruments created from meter
func NewInstrumentedCEPProvider(next address.Provider, meter metric.Meter) (*InstrumentedCEPProvider, error) {
	lookups, err := meter.Int64Counter(MetricCEPLookups,
		metric.WithDescription("Outbound CEP provider calls by outcome"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricCEPLookups, err)
	}
	duration, err := meter.Float64Histogram(MetricCEPLookupDuration,
		metric.WithDescription("Outbound CEP provider latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricCEPLookupDuration, err)
	}
	return &InstrumentedCEPProvider{next: next, lookups: lookups, duration: duration}, nil
}

// Fetch delegates to the wrapped provider
func (p *InstrumentedCEPProvider) Fetch(ctx context.Context, cep string) (*location.PostalAddress, error) {
	start := time.Now()
	addr, err := p.next.Fetch(ctx, cep)

	attrs := metric.WithAttributes(attribute.String("outcome", string(outcomeOf(err))))
	p.lookups.Add(ctx, 1, attrs)
	p.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	return addr, err
}

func outcomeOf(err error) address.Outcome {
	switch {
	case err == nil:
		return address.OutcomeFound
	case errors.Is(err, address.ErrCEPNotFound):
		return address.OutcomeNotFound
	default:
		return address.OutcomeUpstreamError
	}
}

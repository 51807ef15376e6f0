package entry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/imrenagi/go-wiki/entry"

// InstrumentedStore records a counter, a latency histogram and a span for
// every call to the wrapped Store.
type InstrumentedStore struct {
	next     Store
	tracer   trace.Tracer
	ops      metric.Int64Counter
	duration metric.Float64Histogram
}

// NewInstrumentedStore wraps next. A nil MeterProvider falls back to the
// global one.
func NewInstrumentedStore(next Store, mp metric.MeterProvider) (*InstrumentedStore, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	ops, err := meter.Int64Counter("wiki.entry_store.operations",
		metric.WithDescription("Number of entry store operations"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("wiki.entry_store.duration",
		metric.WithDescription("Duration of entry store operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedStore{
		next:     next,
		tracer:   otel.Tracer(instrumentationName),
		ops:      ops,
		duration: duration,
	}, nil
}

func (s *InstrumentedStore) List(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "entry.List")
	defer span.End()
	start := time.Now()

	titles, err := s.next.List(ctx)
	s.record(ctx, span, "list", outcome(err, true), start, err)
	span.SetAttributes(attribute.Int("entry.count", len(titles)))
	return titles, err
}

func (s *InstrumentedStore) Get(ctx context.Context, title string) (string, bool, error) {
	ctx, span := s.tracer.Start(ctx, "entry.Get",
		trace.WithAttributes(attribute.String("entry.title", title)))
	defer span.End()
	start := time.Now()

	content, ok, err := s.next.Get(ctx, title)
	s.record(ctx, span, "get", outcome(err, ok), start, err)
	return content, ok, err
}

func (s *InstrumentedStore) Save(ctx context.Context, title, content string) error {
	ctx, span := s.tracer.Start(ctx, "entry.Save",
		trace.WithAttributes(
			attribute.String("entry.title", title),
			attribute.Int("entry.size", len(content))))
	defer span.End()
	start := time.Now()

	err := s.next.Save(ctx, title, content)
	s.record(ctx, span, "save", outcome(err, true), start, err)
	return err
}

func outcome(err error, found bool) string {
	switch {
	case err != nil:
		return "error"
	case !found:
		return "miss"
	}
	return "ok"
}

func (s *InstrumentedStore) record(ctx context.Context, span trace.Span, op, result string, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", result))
	s.ops.Add(ctx, 1, attrs)
	s.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}

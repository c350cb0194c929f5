package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// TracingAuditSink wraps a domain.AuditSink with OpenTelemetry tracing.
type TracingAuditSink struct {
	next   domain.AuditSink
	tracer trace.Tracer
}

// Compile-time check: TracingAuditSink implements domain.AuditSink.
var _ domain.AuditSink = (*TracingAuditSink)(nil)

// NewTracingAuditSink creates a tracing decorator around the given sink.
func NewTracingAuditSink(next domain.AuditSink) *TracingAuditSink {
	return &TracingAuditSink{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingAuditSink) Emit(ctx context.Context, records []domain.AuditRecord) error {
	attrs := []attribute.KeyValue{attribute.Int("audit.records", len(records))}
	if len(records) > 0 {
		attrs = append(attrs,
			attribute.String("lead.id", records[0].LeadID),
			attribute.String("audit.action", records[0].Action),
		)
	}

	ctx, span := s.tracer.Start(ctx, "AuditSink.Emit", trace.WithAttributes(attrs...))
	defer span.End()

	err := s.next.Emit(ctx, records)
	recordError(span, err)
	return err
}

// TracingSettingsReader wraps a domain.SettingsReader with OpenTelemetry tracing.
type TracingSettingsReader struct {
	next   domain.SettingsReader
	tracer trace.Tracer
}

// Compile-time check: TracingSettingsReader implements domain.SettingsReader.
var _ domain.SettingsReader = (*TracingSettingsReader)(nil)

// NewTracingSettingsReader creates a tracing decorator around the given reader.
func NewTracingSettingsReader(next domain.SettingsReader) *TracingSettingsReader {
	return &TracingSettingsReader{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingSettingsReader) AdminSettings(ctx context.Context) (domain.AdminSettings, error) {
	ctx, span := r.tracer.Start(ctx, "SettingsReader.AdminSettings")
	defer span.End()

	s, err := r.next.AdminSettings(ctx)
	recordError(span, err)
	return s, err
}

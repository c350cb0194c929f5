package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// TracingPartnerRepository wraps a domain.PartnerRepository with OpenTelemetry tracing.
type TracingPartnerRepository struct {
	next   domain.PartnerRepository
	tracer trace.Tracer
}

// Compile-time check: TracingPartnerRepository implements domain.PartnerRepository.
var _ domain.PartnerRepository = (*TracingPartnerRepository)(nil)

// NewTracingPartnerRepository creates a tracing decorator around the given repository.
func NewTracingPartnerRepository(next domain.PartnerRepository) *TracingPartnerRepository {
	return &TracingPartnerRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingPartnerRepository) Save(ctx context.Context, p domain.Partner) error {
	ctx, span := r.tracer.Start(ctx, "PartnerRepository.Save",
		trace.WithAttributes(
			attribute.String("partner.id", p.ID),
			attribute.String("partner.type", string(p.PartnerType)),
		),
	)
	defer span.End()

	err := r.next.Save(ctx, p)
	recordError(span, err)
	return err
}

func (r *TracingPartnerRepository) GetByID(ctx context.Context, id string) (domain.Partner, error) {
	ctx, span := r.tracer.Start(ctx, "PartnerRepository.GetByID",
		trace.WithAttributes(attribute.String("partner.id", id)),
	)
	defer span.End()

	p, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return p, err
}

func (r *TracingPartnerRepository) List(ctx context.Context, filter domain.PartnerFilter) ([]domain.Partner, error) {
	ctx, span := r.tracer.Start(ctx, "PartnerRepository.List")
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.PartnerType != "" {
		span.SetAttributes(attribute.String("filter.partner_type", string(filter.PartnerType)))
	}

	partners, err := r.next.List(ctx, filter)
	recordError(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(partners)))
	}
	return partners, err
}

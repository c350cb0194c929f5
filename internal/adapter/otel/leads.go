package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// TracingLeadRepository wraps a domain.LeadRepository with OpenTelemetry
// tracing. Successful writes also count the audit records they carry, one
// per state change, on the leadflow.transitions counter.
type TracingLeadRepository struct {
	next        domain.LeadRepository
	tracer      trace.Tracer
	transitions metric.Int64Counter
}

// Compile-time check: TracingLeadRepository implements domain.LeadRepository.
var _ domain.LeadRepository = (*TracingLeadRepository)(nil)

// NewTracingLeadRepository creates a tracing decorator around the given repository.
func NewTracingLeadRepository(next domain.LeadRepository) (*TracingLeadRepository, error) {
	counter, err := otel.Meter(tracerName).Int64Counter("leadflow.transitions",
		metric.WithDescription("State changes committed to the lead store"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}
	return &TracingLeadRepository{
		next:        next,
		tracer:      otel.Tracer(tracerName),
		transitions: counter,
	}, nil
}

func (r *TracingLeadRepository) Create(ctx context.Context, lead domain.Lead, records []domain.AuditRecord) error {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.Create",
		trace.WithAttributes(
			attribute.String("lead.id", lead.LeadID),
			attribute.String("lead.service_type", string(lead.ServiceType)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, lead, records)
	recordError(span, err)
	if err == nil {
		r.count(ctx, records)
	}
	return err
}

func (r *TracingLeadRepository) GetByLeadID(ctx context.Context, leadID string) (domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.GetByLeadID",
		trace.WithAttributes(attribute.String("lead.id", leadID)),
	)
	defer span.End()

	lead, err := r.next.GetByLeadID(ctx, leadID)
	recordError(span, err)
	return lead, err
}

func (r *TracingLeadRepository) GetByAssignmentID(ctx context.Context, assignmentID string) (domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.GetByAssignmentID",
		trace.WithAttributes(attribute.String("assignment.id", assignmentID)),
	)
	defer span.End()

	lead, err := r.next.GetByAssignmentID(ctx, assignmentID)
	recordError(span, err)
	if err == nil {
		span.SetAttributes(attribute.String("lead.id", lead.LeadID))
	}
	return lead, err
}

func (r *TracingLeadRepository) List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.List",
		trace.WithAttributes(
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
			attribute.Bool("filter.cancellation_requests", filter.WithCancellationRequests),
		),
	)
	defer span.End()

	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.ServiceType != "" {
		span.SetAttributes(attribute.String("filter.service_type", string(filter.ServiceType)))
	}
	if filter.PartnerID != "" {
		span.SetAttributes(attribute.String("filter.partner_id", filter.PartnerID))
	}

	leads, err := r.next.List(ctx, filter)
	recordError(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(leads)))
	}
	return leads, err
}

func (r *TracingLeadRepository) Update(ctx context.Context, lead domain.Lead, records []domain.AuditRecord) error {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.Update",
		trace.WithAttributes(
			attribute.String("lead.id", lead.LeadID),
			attribute.String("lead.status", string(lead.Status)),
			attribute.Int("lead.assignments", len(lead.Assignments)),
		),
	)
	defer span.End()

	err := r.next.Update(ctx, lead, records)
	recordError(span, err)
	if err == nil {
		r.count(ctx, records)
	}
	return err
}

func (r *TracingLeadRepository) CountAssignments(ctx context.Context, filter domain.AssignmentCountFilter) (int, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.CountAssignments",
		trace.WithAttributes(
			attribute.String("partner.id", filter.PartnerID),
			attribute.String("lead.service_type", string(filter.ServiceType)),
		),
	)
	defer span.End()

	n, err := r.next.CountAssignments(ctx, filter)
	recordError(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", n))
	}
	return n, err
}

func (r *TracingLeadRepository) AuditTrail(ctx context.Context, leadID string) ([]domain.AuditRecord, error) {
	ctx, span := r.tracer.Start(ctx, "LeadRepository.AuditTrail",
		trace.WithAttributes(attribute.String("lead.id", leadID)),
	)
	defer span.End()

	records, err := r.next.AuditTrail(ctx, leadID)
	recordError(span, err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(records)))
	}
	return records, err
}

func (r *TracingLeadRepository) count(ctx context.Context, records []domain.AuditRecord) {
	for _, rec := range records {
		r.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("action", rec.Action),
			attribute.String("lead.status", string(rec.LeadTo)),
		))
	}
}

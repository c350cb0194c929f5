package app

import (
	"context"
	"strings"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// CreateLead records a new customer request in the "pending" state.
func (w *Workflow) CreateLead(ctx context.Context, service domain.ServiceType, customer domain.Customer) (domain.Lead, error) {
	if strings.TrimSpace(string(service)) == "" {
		return domain.Lead{}, &domain.ValidationError{Field: "serviceType", Message: "is required"}
	}

	lead := domain.NewLead(newID(), newLeadID(), service, customer, w.now())
	record := domain.AuditRecord{
		ID:     newID(),
		LeadID: lead.LeadID,
		Actor:  domain.ActorFrom(ctx),
		Action: domain.ActionCreate,
		LeadTo: lead.Status,
		At:     lead.CreatedAt,
	}

	if err := w.leads.Create(ctx, lead, []domain.AuditRecord{record}); err != nil {
		return domain.Lead{}, storeError("creating lead", err)
	}

	w.emit(ctx, []domain.AuditRecord{record})
	return lead, nil
}

// GetLead returns a lead by its human-readable id.
func (w *Workflow) GetLead(ctx context.Context, leadID string) (domain.Lead, error) {
	lead, err := w.leads.GetByLeadID(ctx, leadID)
	if err != nil {
		return domain.Lead{}, storeError("loading lead", err)
	}
	return lead, nil
}

// ListLeads returns leads matching the given filter.
func (w *Workflow) ListLeads(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	leads, err := w.leads.List(ctx, filter)
	if err != nil {
		return nil, storeError("listing leads", err)
	}
	return leads, nil
}

// AuditTrail returns the recorded state changes of a lead, oldest first.
func (w *Workflow) AuditTrail(ctx context.Context, leadID string) ([]domain.AuditRecord, error) {
	if _, err := w.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	records, err := w.leads.AuditTrail(ctx, leadID)
	if err != nil {
		return nil, storeError("loading audit trail", err)
	}
	return records, nil
}

package app

import (
	"context"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// ListEligiblePartners returns the candidate partners for a lead split into
// the basic, exclusive and search tabs, each annotated with quota usage.
func (w *Workflow) ListEligiblePartners(ctx context.Context, leadID string, q domain.EligibilityQuery) (domain.EligiblePartners, error) {
	if q.PartnerType != "" && !q.PartnerType.Valid() {
		return domain.EligiblePartners{}, &domain.ValidationError{Field: "partnerType", Message: "must be basic or exclusive"}
	}

	lead, err := w.leads.GetByLeadID(ctx, leadID)
	if err != nil {
		return domain.EligiblePartners{}, storeError("loading lead", err)
	}

	active := domain.PartnerActive
	partners, err := w.partners.List(ctx, domain.PartnerFilter{Status: &active})
	if err != nil {
		return domain.EligiblePartners{}, storeError("listing partners", err)
	}

	settings := w.adminSettings(ctx)

	// Counting failures leave the limit in place and report zero usage;
	// quota figures are advisory.
	capacityOf := func(p domain.Partner) domain.Capacity {
		c, err := w.capacity(ctx, p, lead.ServiceType, settings)
		if err != nil {
			w.logger.WarnContext(ctx, "capacity lookup failed", "partner_id", p.ID, "error", err)
			return domain.Capacity{Limit: domain.WeeklyLimit(p, lead.ServiceType, settings)}
		}
		return c
	}

	return domain.PartitionCandidates(lead, partners, q, capacityOf), nil
}

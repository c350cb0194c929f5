package app

import (
	"context"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// SavePartner stores a partner record, replacing any with the same id. A
// missing status means active.
func (w *Workflow) SavePartner(ctx context.Context, p domain.Partner) (domain.Partner, error) {
	if p.Status == "" {
		p.Status = domain.PartnerActive
	}
	if err := p.Validate(); err != nil {
		return domain.Partner{}, err
	}
	if err := w.partners.Save(ctx, p); err != nil {
		return domain.Partner{}, storeError("saving partner", err)
	}
	w.logger.InfoContext(ctx, "partner saved", "partner_id", p.ID, "partner_type", p.PartnerType, "status", p.Status)
	return p, nil
}

// GetPartner returns a partner by id.
func (w *Workflow) GetPartner(ctx context.Context, id string) (domain.Partner, error) {
	p, err := w.partners.GetByID(ctx, id)
	if err != nil {
		return domain.Partner{}, storeError("loading partner", err)
	}
	return p, nil
}

// ListPartners returns partners matching the filter.
func (w *Workflow) ListPartners(ctx context.Context, filter domain.PartnerFilter) ([]domain.Partner, error) {
	partners, err := w.partners.List(ctx, filter)
	if err != nil {
		return nil, storeError("listing partners", err)
	}
	return partners, nil
}

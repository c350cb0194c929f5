package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// GetCapacity returns how many leads the partner received this week for the
// service and what their limit is.
func (w *Workflow) GetCapacity(ctx context.Context, partnerID string, service domain.ServiceType) (domain.Capacity, error) {
	partner, err := w.partners.GetByID(ctx, partnerID)
	if err != nil {
		return domain.Capacity{}, storeError("loading partner", err)
	}
	return w.capacity(ctx, partner, service, w.adminSettings(ctx))
}

// capacity counts every assignment made to the partner this week for the
// service, whatever its current status.
func (w *Workflow) capacity(ctx context.Context, partner domain.Partner, service domain.ServiceType, settings domain.AdminSettings) (domain.Capacity, error) {
	from, to := domain.WeekBounds(w.now())

	current, err := w.leads.CountAssignments(ctx, domain.AssignmentCountFilter{
		PartnerID:   partner.ID,
		ServiceType: service,
		From:        from,
		To:          to,
	})
	if err != nil {
		return domain.Capacity{}, storeError("counting assignments", err)
	}

	return domain.Capacity{
		Current: current,
		Limit:   domain.WeeklyLimit(partner, service, settings),
	}, nil
}

// capacityWarning describes an exhausted quota, or returns "".
func capacityWarning(partner domain.Partner, service domain.ServiceType, c domain.Capacity) string {
	if c.HasCapacity() {
		return ""
	}
	return fmt.Sprintf("partner %s has reached the weekly limit for %s (%d/%d)", partner.ID, service, c.Current, c.Limit)
}

package app

import (
	"context"
	"strings"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// CommitResult is the outcome of committing one partner to a lead.
type CommitResult struct {
	Lead       domain.Lead
	Assignment domain.PartnerAssignment
	// CapacityWarning is set when the partner was at or over their weekly
	// limit. The assignment is made regardless.
	CapacityWarning string
}

// CommitAssignment assigns one partner to a lead as a new pending
// assignment. The partner must not already hold an active assignment on the
// lead, and exclusivity between tiers is enforced.
func (w *Workflow) CommitAssignment(ctx context.Context, leadID string, ref domain.PartnerRef) (CommitResult, error) {
	if strings.TrimSpace(ref.ID) == "" {
		return CommitResult{}, &domain.ValidationError{Field: "partnerId", Message: "is required"}
	}

	partner, err := w.partners.GetByID(ctx, ref.ID)
	if err != nil {
		return CommitResult{}, storeError("loading partner", err)
	}
	if partner.Status != domain.PartnerActive {
		return CommitResult{}, &domain.ValidationError{Field: "partnerId", Message: "partner is " + string(partner.Status) + ", not active"}
	}

	var (
		assignment domain.PartnerAssignment
		warning    string
	)
	lead, err := w.mutate(ctx, leadID, domain.ActionCommit, func(lead *domain.Lead, settings domain.AdminSettings) ([]domain.AuditRecord, error) {
		if err := domain.CheckCommit(*lead, partner); err != nil {
			return nil, err
		}

		c, err := w.capacity(ctx, partner, lead.ServiceType, settings)
		if err != nil {
			return nil, err
		}
		warning = capacityWarning(partner, lead.ServiceType, c)

		assignment = domain.NewAssignment(newID(), partner, w.now())
		lead.Assignments = append(lead.Assignments, assignment)

		return []domain.AuditRecord{{
			AssignmentID: assignment.ID,
			PartnerID:    partner.ID,
			Action:       domain.ActionCommit,
			ToStatus:     assignment.Status,
			Reason:       warning,
		}}, nil
	})
	if err != nil {
		return CommitResult{}, err
	}

	if warning != "" {
		w.logger.WarnContext(ctx, "partner over weekly capacity",
			"lead_id", lead.LeadID,
			"partner_id", partner.ID,
		)
	}

	return CommitResult{Lead: lead, Assignment: assignment, CapacityWarning: warning}, nil
}

package app

import (
	"context"
	"strings"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// AcceptAssignment records that the partner takes the lead. Fails with an
// exclusivity violation when another partner's active assignment conflicts
// by tier; the assignment then stays pending.
func (w *Workflow) AcceptAssignment(ctx context.Context, leadID, assignmentID string) (domain.Lead, error) {
	return w.mutate(ctx, leadID, string(domain.EventAccept), func(lead *domain.Lead, _ domain.AdminSettings) ([]domain.AuditRecord, error) {
		idx, ok := lead.AssignmentIndex(assignmentID)
		if !ok {
			return nil, domain.ErrAssignmentNotFound
		}
		if lead.Assignments[idx].Status == domain.AssignmentPending {
			if err := domain.CheckAccept(*lead, idx); err != nil {
				return nil, err
			}
		}

		rec, err := w.transition(ctx, lead, idx, domain.EventAccept, "")
		if err != nil {
			return nil, err
		}
		now := w.now()
		lead.Assignments[idx].RespondedAt = &now

		return []domain.AuditRecord{rec}, nil
	})
}

// RejectAssignment records that the partner declines a pending assignment.
// Sibling assignments are unaffected.
func (w *Workflow) RejectAssignment(ctx context.Context, leadID, assignmentID, reason string) (domain.Lead, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Lead{}, &domain.ValidationError{Field: "reason", Message: "is required"}
	}

	return w.mutate(ctx, leadID, string(domain.EventReject), func(lead *domain.Lead, _ domain.AdminSettings) ([]domain.AuditRecord, error) {
		idx, ok := lead.AssignmentIndex(assignmentID)
		if !ok {
			return nil, domain.ErrAssignmentNotFound
		}

		rec, err := w.transition(ctx, lead, idx, domain.EventReject, reason)
		if err != nil {
			return nil, err
		}
		now := w.now()
		lead.Assignments[idx].RespondedAt = &now
		lead.Assignments[idx].RejectionReason = reason

		return []domain.AuditRecord{rec}, nil
	})
}

// CompleteLead marks an accepted lead as done. Completed leads accept no
// further partner-driven changes.
func (w *Workflow) CompleteLead(ctx context.Context, leadID string) (domain.Lead, error) {
	return w.mutate(ctx, leadID, domain.ActionComplete, func(lead *domain.Lead, _ domain.AdminSettings) ([]domain.AuditRecord, error) {
		if lead.Status != domain.LeadAccepted {
			return nil, &domain.TransitionError{Subject: "lead", Event: domain.ActionComplete, Current: string(lead.Status)}
		}
		lead.Status = domain.LeadCompleted
		return []domain.AuditRecord{{Action: domain.ActionComplete}}, nil
	})
}

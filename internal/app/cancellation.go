package app

import (
	"context"
	"strings"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// RequestCancellation lets a partner ask to withdraw from an accepted
// assignment. Only one request per assignment can ever be rejected; after
// that the partner may not ask again.
func (w *Workflow) RequestCancellation(ctx context.Context, assignmentID, reason string) (domain.PartnerAssignment, error) {
	owner, err := w.leads.GetByAssignmentID(ctx, assignmentID)
	if err != nil {
		return domain.PartnerAssignment{}, storeError("loading lead", err)
	}

	var out domain.PartnerAssignment
	_, err = w.mutate(ctx, owner.LeadID, string(domain.EventRequestCancel), func(lead *domain.Lead, _ domain.AdminSettings) ([]domain.AuditRecord, error) {
		idx, ok := lead.AssignmentIndex(assignmentID)
		if !ok {
			return nil, domain.ErrAssignmentNotFound
		}
		if err := domain.CheckCancellationRequest(lead.Assignments[idx], reason); err != nil {
			return nil, err
		}

		reason = strings.TrimSpace(reason)
		rec, err := w.transition(ctx, lead, idx, domain.EventRequestCancel, reason)
		if err != nil {
			return nil, err
		}

		now := w.now()
		a := &lead.Assignments[idx]
		a.CancellationReason = reason
		a.CancellationRequestedAt = &now
		out = *a

		return []domain.AuditRecord{rec}, nil
	})
	if err != nil {
		return domain.PartnerAssignment{}, err
	}
	return out, nil
}

// ApproveCancellation accepts the partner's pending cancellation request.
// The lead becomes cancelled when no other assignment remains active.
func (w *Workflow) ApproveCancellation(ctx context.Context, leadID, partnerID string) (domain.Lead, error) {
	return w.mutate(ctx, leadID, string(domain.EventApproveCancel), func(lead *domain.Lead, _ domain.AdminSettings) ([]domain.AuditRecord, error) {
		idx, ok := cancellationTarget(*lead, partnerID)
		if !ok {
			return nil, domain.ErrAssignmentNotFound
		}

		rec, err := w.transition(ctx, lead, idx, domain.EventApproveCancel, "")
		if err != nil {
			return nil, err
		}

		now := w.now()
		a := &lead.Assignments[idx]
		a.CancellationApproved = true
		a.CancellationApprovedAt = &now

		return []domain.AuditRecord{rec}, nil
	})
}

// RejectCancellation refuses the partner's pending cancellation request. The
// assignment returns to accepted and can never request cancellation again.
func (w *Workflow) RejectCancellation(ctx context.Context, leadID, partnerID, reason string) (domain.PartnerAssignment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.PartnerAssignment{}, &domain.ValidationError{Field: "reason", Message: "is required"}
	}

	var out domain.PartnerAssignment
	_, err := w.mutate(ctx, leadID, string(domain.EventRejectCancel), func(lead *domain.Lead, _ domain.AdminSettings) ([]domain.AuditRecord, error) {
		idx, ok := cancellationTarget(*lead, partnerID)
		if !ok {
			return nil, domain.ErrAssignmentNotFound
		}

		rec, err := w.transition(ctx, lead, idx, domain.EventRejectCancel, reason)
		if err != nil {
			return nil, err
		}

		now := w.now()
		a := &lead.Assignments[idx]
		a.CancellationRejected = true
		a.CancellationRejectedAt = &now
		a.CancellationRejectionReason = reason
		out = *a

		return []domain.AuditRecord{rec}, nil
	})
	if err != nil {
		return domain.PartnerAssignment{}, err
	}
	return out, nil
}

// ListCancellationRequests returns the read-only cancellation overview.
func (w *Workflow) ListCancellationRequests(ctx context.Context, filter domain.CancellationFilter) ([]domain.CancellationRequest, error) {
	switch filter.Status {
	case "", domain.RequestPending, domain.RequestApproved, domain.RequestRejected:
	default:
		return nil, &domain.ValidationError{Field: "status", Message: "unknown request status " + string(filter.Status)}
	}

	leads, err := w.leads.List(ctx, domain.LeadFilter{
		ServiceType:              filter.ServiceType,
		PartnerID:                filter.PartnerID,
		WithCancellationRequests: true,
	})
	if err != nil {
		return nil, storeError("listing leads", err)
	}

	return domain.ProjectCancellationRequests(leads, filter), nil
}

// cancellationTarget picks the partner's active assignment on the lead, or
// their latest one so the state machine can report why it does not apply.
func cancellationTarget(lead domain.Lead, partnerID string) (int, bool) {
	if idx, ok := lead.ActiveAssignmentIndex(partnerID); ok {
		return idx, true
	}
	return lead.LatestAssignmentIndex(partnerID)
}

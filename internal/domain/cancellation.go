package domain

import "time"

// RequestStatus is the computed state of a cancellation request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "cancellation_approved"
	RequestRejected RequestStatus = "cancellation_rejected"
)

// CancellationRequest is a read-only row of the cancellation overview. It is
// projected from lead assignments and is never written back.
type CancellationRequest struct {
	LeadID           string
	ServiceType      ServiceType
	AssignmentID     string
	PartnerID        string
	PartnerType      PartnerType
	AssignmentStatus AssignmentStatus
	Reason           string
	RequestedAt      time.Time
	RequestStatus    RequestStatus
	DecidedAt        *time.Time
	RejectionReason  string
}

// CancellationFilter holds optional criteria for the cancellation overview.
type CancellationFilter struct {
	Status      RequestStatus
	PartnerID   string
	ServiceType ServiceType
}

// RequestStatusOf computes the request status of an assignment. The second
// result is false when no cancellation was ever requested.
func RequestStatusOf(a PartnerAssignment) (RequestStatus, bool) {
	switch {
	case a.CancellationRequestedAt == nil:
		return "", false
	case a.CancellationApproved:
		return RequestApproved, true
	case a.CancellationRejected:
		return RequestRejected, true
	default:
		return RequestPending, true
	}
}

// ProjectCancellationRequests flattens leads into one row per assignment that
// has ever requested cancellation, keeping rows that match filter.
func ProjectCancellationRequests(leads []Lead, filter CancellationFilter) []CancellationRequest {
	out := []CancellationRequest{}
	for _, l := range leads {
		if filter.ServiceType != "" && l.ServiceType != filter.ServiceType {
			continue
		}
		for _, a := range l.Assignments {
			status, ok := RequestStatusOf(a)
			if !ok {
				continue
			}
			if filter.Status != "" && status != filter.Status {
				continue
			}
			if filter.PartnerID != "" && a.PartnerID != filter.PartnerID {
				continue
			}

			row := CancellationRequest{
				LeadID:           l.LeadID,
				ServiceType:      l.ServiceType,
				AssignmentID:     a.ID,
				PartnerID:        a.PartnerID,
				PartnerType:      a.PartnerType,
				AssignmentStatus: a.Status,
				Reason:           a.CancellationReason,
				RequestedAt:      *a.CancellationRequestedAt,
				RequestStatus:    status,
			}
			switch status {
			case RequestApproved:
				row.DecidedAt = a.CancellationApprovedAt
			case RequestRejected:
				row.DecidedAt = a.CancellationRejectedAt
				row.RejectionReason = a.CancellationRejectionReason
			}
			out = append(out, row)
		}
	}
	return out
}

// CheckCancellationRequest verifies that a partner may ask to withdraw from
// the assignment: it must be accepted, never had a request rejected, and
// come with a reason.
func CheckCancellationRequest(a PartnerAssignment, reason string) error {
	switch {
	case isBlank(reason):
		return &InvalidCancellationRequestError{AssignmentID: a.ID, Reason: "a reason is required"}
	case a.CancellationRejected:
		return &InvalidCancellationRequestError{AssignmentID: a.ID, Reason: "a previous cancellation request was rejected"}
	case a.Status != AssignmentAccepted:
		return &InvalidCancellationRequestError{AssignmentID: a.ID, Reason: "assignment is " + string(a.Status) + ", not accepted"}
	}
	return nil
}

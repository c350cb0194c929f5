package domain

// DeriveLeadStatus computes a lead's status from its assignments. maxBasic is
// the number of active basic assignments that makes the lead fully assigned;
// a single active exclusive assignment always does.
//
// Precedence: a pending cancellation outranks an acceptance, which outranks
// plain pending assignments. With nothing active, any cancellation makes the
// lead cancelled and otherwise it is rejected.
func DeriveLeadStatus(assignments []PartnerAssignment, maxBasic int) LeadStatus {
	if len(assignments) == 0 {
		return LeadPending
	}
	if maxBasic <= 0 {
		maxBasic = DefaultMaxBasicAssignments
	}

	var active, pending, accepted, cancelRequested, cancelled int
	exclusive := false
	for _, a := range assignments {
		if a.Status.Active() {
			active++
			if a.PartnerType == PartnerExclusive {
				exclusive = true
			}
		}
		switch a.Status {
		case AssignmentPending:
			pending++
		case AssignmentAccepted:
			accepted++
		case AssignmentCancellationRequested:
			cancelRequested++
		case AssignmentCancelled:
			cancelled++
		}
	}

	switch {
	case cancelRequested > 0:
		return LeadCancellationRequested
	case accepted > 0:
		return LeadAccepted
	case pending > 0:
		full := maxBasic
		if exclusive {
			full = 1
		}
		if active < full {
			return LeadPartialAssigned
		}
		return LeadAssigned
	case cancelled > 0:
		return LeadCancelled
	default:
		return LeadRejected
	}
}

// Recompute refreshes the lead's status from its assignments. A completed
// lead is terminal and keeps its status.
func (l *Lead) Recompute(maxBasic int) {
	if l.Status == LeadCompleted {
		return
	}
	l.Status = DeriveLeadStatus(l.Assignments, maxBasic)
}

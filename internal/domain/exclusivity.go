package domain

// CheckCommit verifies that partner may receive a new assignment on lead:
// the partner must not already hold an active assignment, an exclusive
// partner needs the lead free of active assignments, and a basic partner
// needs it free of an active exclusive one.
func CheckCommit(lead Lead, partner Partner) error {
	if lead.HasActiveAssignment(partner.ID) {
		return &DuplicateAssignmentError{LeadID: lead.LeadID, PartnerID: partner.ID}
	}
	for _, a := range lead.Assignments {
		if !a.Status.Active() {
			continue
		}
		if partner.PartnerType == PartnerExclusive || a.PartnerType == PartnerExclusive {
			return &ExclusivityViolationError{LeadID: lead.LeadID, PartnerID: partner.ID, HolderID: a.PartnerID}
		}
	}
	return nil
}

// CheckAccept verifies that the assignment at idx may be accepted without
// breaking exclusivity against another partner's active assignment.
func CheckAccept(lead Lead, idx int) error {
	target := lead.Assignments[idx]
	for i, a := range lead.Assignments {
		if i == idx || !a.Status.Active() || a.PartnerID == target.PartnerID {
			continue
		}
		if a.PartnerType == PartnerExclusive || target.PartnerType == PartnerExclusive {
			return &ExclusivityViolationError{LeadID: lead.LeadID, PartnerID: target.PartnerID, HolderID: a.PartnerID}
		}
	}
	return nil
}

// ExclusivityIntact reports whether at most one assignment is active when any
// active assignment is exclusive.
func ExclusivityIntact(assignments []PartnerAssignment) bool {
	active, exclusive := 0, 0
	for _, a := range assignments {
		if !a.Status.Active() {
			continue
		}
		active++
		if a.PartnerType == PartnerExclusive {
			exclusive++
		}
	}
	return exclusive == 0 || active == 1
}

package domain

// Candidate is a partner offered for a lead together with its quota usage.
type Candidate struct {
	Partner  Partner
	Capacity Capacity
	// HasExistingAssignment is true when the partner already holds an active
	// assignment on the lead. Such candidates are shown but not selectable.
	HasExistingAssignment bool
}

// Selectable reports whether an operator may pick this candidate.
func (c Candidate) Selectable() bool {
	return !c.HasExistingAssignment
}

// EligibilityQuery narrows the search pool.
type EligibilityQuery struct {
	Search string
	// PartnerType, when set, restricts the search pool to that tier and to
	// partners offering the lead's service.
	PartnerType PartnerType
}

// EligiblePartners is the candidate list for a lead, split into tabs.
type EligiblePartners struct {
	Basic     []Candidate
	Exclusive []Candidate
	Search    []Candidate
}

// SuggestedFor reports whether p belongs on the tier tab of a lead for the
// given service.
func SuggestedFor(p Partner, service ServiceType, tier PartnerType) bool {
	return p.Status == PartnerActive && p.PartnerType == tier && p.Offers(service)
}

// inSearchPool reports whether p belongs to the free-text search pool.
func inSearchPool(p Partner, service ServiceType, q EligibilityQuery) bool {
	if p.Status != PartnerActive || !p.MatchesSearch(q.Search) {
		return false
	}
	if q.PartnerType != "" {
		return p.PartnerType == q.PartnerType && p.Offers(service)
	}
	return true
}

// PartitionCandidates builds the tabs for lead from partners. capacity is
// consulted once per partner that lands on at least one tab.
func PartitionCandidates(lead Lead, partners []Partner, q EligibilityQuery, capacity func(Partner) Capacity) EligiblePartners {
	out := EligiblePartners{
		Basic:     []Candidate{},
		Exclusive: []Candidate{},
		Search:    []Candidate{},
	}

	for _, p := range partners {
		basic := SuggestedFor(p, lead.ServiceType, PartnerBasic)
		exclusive := SuggestedFor(p, lead.ServiceType, PartnerExclusive)
		search := inSearchPool(p, lead.ServiceType, q)
		if !basic && !exclusive && !search {
			continue
		}

		c := Candidate{
			Partner:               p,
			Capacity:              capacity(p),
			HasExistingAssignment: lead.HasActiveAssignment(p.ID),
		}
		if basic {
			out.Basic = append(out.Basic, c)
		}
		if exclusive {
			out.Exclusive = append(out.Exclusive, c)
		}
		if search {
			out.Search = append(out.Search, c)
		}
	}

	return out
}

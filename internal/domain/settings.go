package domain

// DefaultMaxBasicAssignments is the number of concurrently active basic
// assignments that makes a lead fully assigned when no setting overrides it.
const DefaultMaxBasicAssignments = 3

// DistributionRule is the default quota for one service and tier.
type DistributionRule struct {
	LeadsPerWeek int
}

// AdminSettings is the read-only configuration maintained by administrators.
type AdminSettings struct {
	LeadDistribution    map[ServiceType]map[PartnerType]DistributionRule
	MaxBasicAssignments int
}

// LeadsPerWeek returns the configured quota for the service and tier. The
// second result is false when nothing positive is configured.
func (s AdminSettings) LeadsPerWeek(service ServiceType, tier PartnerType) (int, bool) {
	byTier, ok := s.LeadDistribution[service]
	if !ok {
		return 0, false
	}
	rule, ok := byTier[tier]
	if !ok || rule.LeadsPerWeek <= 0 {
		return 0, false
	}
	return rule.LeadsPerWeek, true
}

// MaxBasic returns the full-assignment threshold for leads served by basic
// partners.
func (s AdminSettings) MaxBasic() int {
	if s.MaxBasicAssignments > 0 {
		return s.MaxBasicAssignments
	}
	return DefaultMaxBasicAssignments
}

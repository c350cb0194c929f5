package domain_test

import (
	"slices"
	"testing"

	"github.com/neomorfeo/leadflow/internal/domain"
)

func candidateIDs(cs []domain.Candidate) []string {
	out := []string{}
	for _, c := range cs {
		out = append(out, c.Partner.ID)
	}
	return out
}

// sameSet reports whether got and want hold the same ids in any order.
func sameSet(got, want []string) bool {
	got, want = slices.Clone(got), slices.Clone(want)
	slices.Sort(got)
	slices.Sort(want)
	return slices.Equal(got, want)
}

func testPartners() []domain.Partner {
	return []domain.Partner{
		{ID: "mb", CompanyName: "Move Basic GmbH", PartnerType: domain.PartnerBasic, Services: []domain.ServiceType{domain.ServiceMoving}, Status: domain.PartnerActive, Email: "info@movebasic.example"},
		{ID: "me", CompanyName: "Move Exclusive AG", PartnerType: domain.PartnerExclusive, Services: []domain.ServiceType{domain.ServiceMoving}, Status: domain.PartnerActive},
		{ID: "legacy", CompanyName: "Old Movers", PartnerType: domain.PartnerBasic, LegacyServiceType: domain.ServiceMoving, Status: domain.PartnerActive, ContactLastName: "Schmidt"},
		{ID: "cb", CompanyName: "Clean Basic", PartnerType: domain.PartnerBasic, Services: []domain.ServiceType{domain.ServiceCleaning}, Status: domain.PartnerActive},
		{ID: "susp", CompanyName: "Suspended Movers", PartnerType: domain.PartnerBasic, Services: []domain.ServiceType{domain.ServiceMoving}, Status: domain.PartnerSuspended},
	}
}

func fixedCapacity(domain.Partner) domain.Capacity {
	return domain.Capacity{Current: 1, Limit: 3}
}

func TestPartitionCandidates_Tabs(t *testing.T) {
	lead := domain.Lead{LeadID: "LD-1", ServiceType: domain.ServiceMoving}

	got := domain.PartitionCandidates(lead, testPartners(), domain.EligibilityQuery{}, fixedCapacity)

	if ids := candidateIDs(got.Basic); !sameSet(ids, []string{"mb", "legacy"}) {
		t.Errorf("basic tab = %v, want [mb legacy]", ids)
	}
	if ids := candidateIDs(got.Exclusive); !sameSet(ids, []string{"me"}) {
		t.Errorf("exclusive tab = %v, want [me]", ids)
	}
	// Empty search matches every active partner, whatever its service.
	if ids := candidateIDs(got.Search); !sameSet(ids, []string{"mb", "me", "legacy", "cb"}) {
		t.Errorf("search tab = %v, want [mb me legacy cb]", ids)
	}
	for _, c := range got.Basic {
		if c.Capacity != (domain.Capacity{Current: 1, Limit: 3}) {
			t.Errorf("capacity of %s = %+v, want 1/3", c.Partner.ID, c.Capacity)
		}
	}
}

func TestPartitionCandidates_SearchText(t *testing.T) {
	lead := domain.Lead{ServiceType: domain.ServiceMoving}

	cases := []struct {
		query string
		want  []string
	}{
		// Company names match case-insensitively; suspended partners never do.
		{"MOVE", []string{"mb", "me", "legacy"}},
		{"exclusive ag", []string{"me"}},
		{"schmidt", []string{"legacy"}},
		{"movebasic.example", []string{"mb"}},
		{"cb", []string{"cb"}},
		{"nobody", []string{}},
	}

	for _, tc := range cases {
		got := domain.PartitionCandidates(lead, testPartners(), domain.EligibilityQuery{Search: tc.query}, fixedCapacity)
		if ids := candidateIDs(got.Search); !sameSet(ids, tc.want) {
			t.Errorf("query %q: search tab = %v, want %v", tc.query, ids, tc.want)
		}
	}
}

func TestPartitionCandidates_SearchWithTierFilterRequiresService(t *testing.T) {
	lead := domain.Lead{ServiceType: domain.ServiceMoving}
	q := domain.EligibilityQuery{Search: "", PartnerType: domain.PartnerBasic}

	got := domain.PartitionCandidates(lead, testPartners(), q, fixedCapacity)
	if ids := candidateIDs(got.Search); !sameSet(ids, []string{"mb", "legacy"}) {
		t.Errorf("search tab = %v, want [mb legacy]", ids)
	}
}

func TestPartitionCandidates_MarksExistingAssignment(t *testing.T) {
	lead := domain.Lead{
		ServiceType: domain.ServiceMoving,
		Assignments: []domain.PartnerAssignment{
			assignment("mb", domain.PartnerBasic, domain.AssignmentAccepted),
			assignment("legacy", domain.PartnerBasic, domain.AssignmentRejected),
		},
	}

	got := domain.PartitionCandidates(lead, testPartners(), domain.EligibilityQuery{}, fixedCapacity)
	if len(got.Basic) != 2 {
		t.Fatalf("basic tab has %d candidates, want 2", len(got.Basic))
	}
	for _, c := range got.Basic {
		switch c.Partner.ID {
		case "mb":
			if !c.HasExistingAssignment || c.Selectable() {
				t.Errorf("mb: existing = %v, selectable = %v; want true, false", c.HasExistingAssignment, c.Selectable())
			}
		case "legacy":
			// Terminal assignments do not block.
			if c.HasExistingAssignment || !c.Selectable() {
				t.Errorf("legacy: existing = %v, selectable = %v; want false, true", c.HasExistingAssignment, c.Selectable())
			}
		}
	}
}

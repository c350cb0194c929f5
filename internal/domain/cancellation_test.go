package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/leadflow/internal/domain"
)

func TestCheckCancellationRequest(t *testing.T) {
	accepted := assignment("p", domain.PartnerBasic, domain.AssignmentAccepted)
	stickyRejected := accepted
	stickyRejected.CancellationRejected = true

	cases := []struct {
		name   string
		a      domain.PartnerAssignment
		reason string
		ok     bool
	}{
		{"accepted with reason", accepted, "customer moved", true},
		{"blank reason", accepted, "   ", false},
		{"pending", assignment("p", domain.PartnerBasic, domain.AssignmentPending), "x", false},
		{"already requested", assignment("p", domain.PartnerBasic, domain.AssignmentCancellationRequested), "x", false},
		{"previously rejected", stickyRejected, "trying again", false},
	}

	for _, tc := range cases {
		err := domain.CheckCancellationRequest(tc.a, tc.reason)
		if tc.ok {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tc.name, err)
			}
			continue
		}
		var cancelErr *domain.InvalidCancellationRequestError
		if !errors.As(err, &cancelErr) {
			t.Errorf("%s: expected InvalidCancellationRequestError, got %v", tc.name, err)
		}
	}
}

func TestProjectCancellationRequests(t *testing.T) {
	requested := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	decided := requested.Add(time.Hour)

	pending := assignment("p1", domain.PartnerBasic, domain.AssignmentCancellationRequested)
	pending.CancellationRequestedAt = &requested
	pending.CancellationReason = "customer moved"

	approved := assignment("p2", domain.PartnerBasic, domain.AssignmentCancelled)
	approved.CancellationRequestedAt = &requested
	approved.CancellationApproved = true
	approved.CancellationApprovedAt = &decided

	rejected := assignment("p3", domain.PartnerBasic, domain.AssignmentAccepted)
	rejected.CancellationRequestedAt = &requested
	rejected.CancellationRejected = true
	rejected.CancellationRejectedAt = &decided
	rejected.CancellationRejectionReason = "not eligible"

	never := assignment("p4", domain.PartnerBasic, domain.AssignmentAccepted)

	leads := []domain.Lead{
		{LeadID: "LD-1", ServiceType: domain.ServiceMoving, Assignments: []domain.PartnerAssignment{pending, approved}},
		{LeadID: "LD-2", ServiceType: domain.ServiceCleaning, Assignments: []domain.PartnerAssignment{rejected, never}},
	}

	all := domain.ProjectCancellationRequests(leads, domain.CancellationFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(all))
	}

	byPartner := map[string]domain.CancellationRequest{}
	for _, r := range all {
		byPartner[r.PartnerID] = r
	}

	p1 := byPartner["p1"]
	if p1.RequestStatus != domain.RequestPending || p1.DecidedAt != nil || p1.Reason != "customer moved" {
		t.Errorf("p1 = %+v, want an undecided pending request", p1)
	}
	p2 := byPartner["p2"]
	if p2.RequestStatus != domain.RequestApproved || p2.DecidedAt == nil || !p2.DecidedAt.Equal(decided) {
		t.Errorf("p2 = %+v, want approved at %v", p2, decided)
	}
	p3 := byPartner["p3"]
	if p3.RequestStatus != domain.RequestRejected || p3.RejectionReason != "not eligible" || p3.LeadID != "LD-2" {
		t.Errorf("p3 = %+v, want rejected on LD-2", p3)
	}

	filters := []struct {
		name    string
		filter  domain.CancellationFilter
		partner string
	}{
		{"pending only", domain.CancellationFilter{Status: domain.RequestPending}, "p1"},
		{"cleaning only", domain.CancellationFilter{ServiceType: domain.ServiceCleaning}, "p3"},
		{"by partner", domain.CancellationFilter{PartnerID: "p2"}, "p2"},
	}
	for _, f := range filters {
		got := domain.ProjectCancellationRequests(leads, f.filter)
		if len(got) != 1 || got[0].PartnerID != f.partner {
			t.Errorf("%s: got %+v, want a single request from %s", f.name, got, f.partner)
		}
	}

	byID := domain.ProjectCancellationRequests(leads, domain.CancellationFilter{PartnerID: "p2"})
	if len(byID) == 1 && byID[0].AssignmentStatus != domain.AssignmentCancelled {
		t.Errorf("assignment status = %s, want %s", byID[0].AssignmentStatus, domain.AssignmentCancelled)
	}
}

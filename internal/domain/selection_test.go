package domain_test

import (
	"slices"
	"testing"

	"github.com/neomorfeo/leadflow/internal/domain"
)

func ids(s domain.Selection) []string {
	out := []string{}
	for _, p := range s.Partners {
		out = append(out, p.ID)
	}
	return out
}

func TestSelection_Toggle(t *testing.T) {
	b1 := domain.SelectedPartner{ID: "b1", PartnerType: domain.PartnerBasic}
	b2 := domain.SelectedPartner{ID: "b2", PartnerType: domain.PartnerBasic}
	e1 := domain.SelectedPartner{ID: "e1", PartnerType: domain.PartnerExclusive}
	e2 := domain.SelectedPartner{ID: "e2", PartnerType: domain.PartnerExclusive}

	steps := []struct {
		name   string
		toggle domain.SelectedPartner
		want   []string
	}{
		{"first basic", b1, []string{"b1"}},
		{"basic partners accumulate", b2, []string{"b1", "b2"}},
		{"exclusive clears everything else", e1, []string{"e1"}},
		{"exclusive replaces exclusive", e2, []string{"e2"}},
		{"basic replaces a selected exclusive", b1, []string{"b1"}},
		{"reselecting deselects", b1, []string{}},
	}

	var s domain.Selection
	for _, step := range steps {
		s = s.Toggle(step.toggle)
		if got := ids(s); !slices.Equal(got, step.want) {
			t.Fatalf("%s: selection = %v, want %v", step.name, got, step.want)
		}
	}
}

func TestSelection_ToggleDoesNotAlias(t *testing.T) {
	b1 := domain.SelectedPartner{ID: "b1", PartnerType: domain.PartnerBasic}
	b2 := domain.SelectedPartner{ID: "b2", PartnerType: domain.PartnerBasic}
	b3 := domain.SelectedPartner{ID: "b3", PartnerType: domain.PartnerBasic}

	base := domain.Selection{}.Toggle(b1)
	left := base.Toggle(b2)
	right := base.Toggle(b3)

	if got := ids(base); !slices.Equal(got, []string{"b1"}) {
		t.Errorf("base = %v, want [b1]", got)
	}
	if got := ids(left); !slices.Equal(got, []string{"b1", "b2"}) {
		t.Errorf("left = %v, want [b1 b2]", got)
	}
	if got := ids(right); !slices.Equal(got, []string{"b1", "b3"}) {
		t.Errorf("right = %v, want [b1 b3]", got)
	}
}

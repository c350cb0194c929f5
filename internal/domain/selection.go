package domain

// SelectedPartner is one entry of an operator's pending selection.
type SelectedPartner struct {
	ID          string
	PartnerType PartnerType
}

// Selection is the set of partners an operator has picked for a lead but not
// yet committed. The zero value is an empty selection.
type Selection struct {
	Partners []SelectedPartner
}

// Contains reports whether the partner is selected.
func (s Selection) Contains(id string) bool {
	for _, p := range s.Partners {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Toggle applies one operator click and returns the resulting selection:
//   - clicking a selected partner deselects it;
//   - an exclusive partner replaces the whole selection;
//   - a basic partner replaces a selected exclusive partner;
//   - otherwise a basic partner is appended.
func (s Selection) Toggle(p SelectedPartner) Selection {
	if s.Contains(p.ID) {
		out := make([]SelectedPartner, 0, len(s.Partners)-1)
		for _, sp := range s.Partners {
			if sp.ID != p.ID {
				out = append(out, sp)
			}
		}
		return Selection{Partners: out}
	}

	if p.PartnerType == PartnerExclusive || s.hasExclusive() {
		return Selection{Partners: []SelectedPartner{p}}
	}

	out := make([]SelectedPartner, 0, len(s.Partners)+1)
	out = append(out, s.Partners...)
	return Selection{Partners: append(out, p)}
}

func (s Selection) hasExclusive() bool {
	for _, p := range s.Partners {
		if p.PartnerType == PartnerExclusive {
			return true
		}
	}
	return false
}

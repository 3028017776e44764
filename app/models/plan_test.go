package models

import "testing"

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "basico", want: "basico"},
		{in: "destacado", want: "destacado"},
		{in: "premium", want: "premium"},
		{in: "PREMIUM", want: "premium"},
		{in: " destacado ", want: "destacado"},
		{in: "invalid", want: "basico"},
		{in: "", want: "basico"},
	}

	for _, tt := range tests {
		if got := NormalizePlan(tt.in); got != tt.want {
			t.Fatalf("NormalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanPrice(t *testing.T) {
	if PlanPrice(PlanBasico) >= PlanPrice(PlanDestacado) {
		t.Fatalf("expected destacado to cost more than basico")
	}
	if PlanPrice(PlanDestacado) >= PlanPrice(PlanPremium) {
		t.Fatalf("expected premium to cost more than destacado")
	}
	if got := PlanPrice("unknown"); got != PlanPrice(PlanBasico) {
		t.Fatalf("expected unknown plans to price as basico, got %d", got)
	}
}

func TestPlanDisplayName(t *testing.T) {
	if got := PlanDisplayName(PlanBasico); got != "Plan Básico" {
		t.Fatalf("PlanDisplayName(basico) = %q", got)
	}
}

func TestAdSlotPrice(t *testing.T) {
	for _, slot := range []string{AdSlotHomeTop, AdSlotHomeSide, AdSlotListingPage} {
		if AdSlotPrice(slot) <= 0 {
			t.Fatalf("expected slot %q to have a price", slot)
		}
	}
	if AdSlotPrice("unknown") != 0 {
		t.Fatalf("expected unknown slot to have no price")
	}
}

func TestIsValidAdSlot(t *testing.T) {
	if !IsValidAdSlot(AdSlotHomeTop) {
		t.Fatalf("expected %q to be valid", AdSlotHomeTop)
	}
	if IsValidAdSlot("footer") {
		t.Fatalf("expected unknown slot to be invalid")
	}
}

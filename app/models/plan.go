package models

import "strings"

// Listing plans sold on the marketplace. Prices are CRC minor units.
const (
	PlanBasico    = "basico"
	PlanDestacado = "destacado"
	PlanPremium   = "premium"
)

var planPrices = map[string]int64{
	PlanBasico:    250000,
	PlanDestacado: 450000,
	PlanPremium:   750000,
}

var planNames = map[string]string{
	PlanBasico:    "Plan Básico",
	PlanDestacado: "Plan Destacado",
	PlanPremium:   "Plan Premium",
}

// Monthly banner prices per slot, CRC minor units.
var adSlotPrices = map[string]int64{
	AdSlotHomeTop:     1500000,
	AdSlotHomeSide:    900000,
	AdSlotListingPage: 600000,
}

// AdSlotPrice returns the CRC minor-unit price for a banner slot, or 0 for an
// unknown slot.
func AdSlotPrice(slot string) int64 {
	return adSlotPrices[slot]
}

// NormalizePlan maps arbitrary input to a known plan, defaulting to básico.
func NormalizePlan(plan string) string {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case PlanDestacado:
		return PlanDestacado
	case PlanPremium:
		return PlanPremium
	default:
		return PlanBasico
	}
}

// PlanPrice returns the CRC minor-unit price for a listing plan.
func PlanPrice(plan string) int64 {
	return planPrices[NormalizePlan(plan)]
}

// PlanDisplayName returns the customer-facing plan name.
func PlanDisplayName(plan string) string {
	return planNames[NormalizePlan(plan)]
}

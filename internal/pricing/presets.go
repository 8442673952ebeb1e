package pricing

import "sort"

// DefaultPolicyName is the preset used when a caller does not pick one.
const DefaultPolicyName = "ib-floor-v2"

var presets = map[string]Policy{
	"markup-v1": {
		Name:                   "markup-v1",
		Version:                1,
		Family:                 FamilyMarkup,
		WasteFactor:            1.05,
		TaxRate:                0.05,
		InstallRatePerSqFt:     19,
		FabricationRatePerSqFt: 16,
		MaterialMarkupFactor:   1.51,
		IBMaterialMarkup:       1.05,
		MinAreaSqFt:            1,
		AccessoryAffectsMargin: true,
	},
	"markup-v2": {
		Name:                   "markup-v2",
		Version:                2,
		Family:                 FamilyMarkup,
		WasteFactor:            1.20,
		TaxRate:                0.05,
		InstallRatePerSqFt:     19,
		FabricationRatePerSqFt: 16,
		MaterialMarkupFactor:   1.0,
		IBMaterialMarkup:       1.05,
		MinAreaSqFt:            1,
		AccessoryAffectsMargin: true,
	},
	"ib-floor-v1": {
		Name:                   "ib-floor-v1",
		Version:                3,
		Family:                 FamilyIBFloor,
		WasteFactor:            1.20,
		TaxRate:                0.05,
		InstallRatePerSqFt:     19,
		FabricationRatePerSqFt: 16,
		IBMaterialMarkup:       1.05,
		IBMinMarginFraction:    0.18,
		IBToCustomerMarkup:     1.15,
		MinAreaSqFt:            1,
		AccessoryAffectsMargin: true,
	},
	"ib-floor-v2": {
		Name:                   "ib-floor-v2",
		Version:                4,
		Family:                 FamilyIBFloor,
		WasteFactor:            1.20,
		TaxRate:                0.05,
		InstallRatePerSqFt:     19,
		FabricationRatePerSqFt: 16,
		IBMaterialMarkup:       1.05,
		IBMinMarginFraction:    0.18,
		IBToCustomerMarkup:     1.15,
		DiscountTiers: []DiscountTier{
			{MinSqFt: 100, Fraction: 0.05},
			{MinSqFt: 200, Fraction: 0.08},
			{MinSqFt: 300, Fraction: 0.10},
		},
		MinAreaSqFt:            1,
		AccessoryAffectsMargin: true,
	},
}

// Preset returns a copy of the named built-in policy.
func Preset(name string) (Policy, bool) {
	p, ok := presets[name]
	if !ok {
		return Policy{}, false
	}
	p.DiscountTiers = append([]DiscountTier(nil), p.DiscountTiers...)
	return p, true
}

// Presets returns copies of every built-in policy ordered by version.
func Presets() []Policy {
	out := make([]Policy, 0, len(presets))
	for name := range presets {
		p, _ := Preset(name)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

package pricing

import (
	"fmt"
	"math"
	"sort"
)

// Family selects which cost chain a policy runs.
type Family string

const (
	// FamilyMarkup marks up raw material directly and adds fabrication and install at cost.
	FamilyMarkup Family = "markup"
	// FamilyIBFloor derives an internal base cost protected by a margin floor and
	// prices the customer at a fixed markup over it.
	FamilyIBFloor Family = "ib_floor"
)

// DiscountTier grants Fraction off the customer subtotal once the finished
// area reaches MinSqFt.
type DiscountTier struct {
	MinSqFt  float64 `json:"min_sqft" mapstructure:"min_sqft"`
	Fraction float64 `json:"fraction" mapstructure:"fraction"`
}

// Policy holds every tunable constant of the cost model.
type Policy struct {
	Name    string `json:"name" mapstructure:"name"`
	Version int    `json:"version" mapstructure:"version"`
	Family  Family `json:"family" mapstructure:"family"`

	WasteFactor            float64 `json:"waste_factor" mapstructure:"waste_factor"`
	TaxRate                float64 `json:"tax_rate" mapstructure:"tax_rate"`
	InstallRatePerSqFt     float64 `json:"install_rate_per_sqft" mapstructure:"install_rate_per_sqft"`
	FabricationRatePerSqFt float64 `json:"fabrication_rate_per_sqft" mapstructure:"fabrication_rate_per_sqft"`

	// MaterialMarkupFactor only applies to FamilyMarkup.
	MaterialMarkupFactor float64 `json:"material_markup_factor" mapstructure:"material_markup_factor"`
	IBMaterialMarkup     float64 `json:"ib_material_markup" mapstructure:"ib_material_markup"`
	// IBMinMarginFraction and IBToCustomerMarkup only apply to FamilyIBFloor.
	IBMinMarginFraction float64 `json:"ib_min_margin_fraction" mapstructure:"ib_min_margin_fraction"`
	IBToCustomerMarkup  float64 `json:"ib_to_customer_markup" mapstructure:"ib_to_customer_markup"`

	DiscountTiers []DiscountTier `json:"discount_tiers" mapstructure:"discount_tiers"`

	// MinAreaSqFt raises smaller positive areas to this value. Zero disables the clamp.
	MinAreaSqFt float64 `json:"min_area_sqft" mapstructure:"min_area_sqft"`
	// AccessoryAffectsMargin counts accessory revenue in gross profit and margin.
	AccessoryAffectsMargin bool `json:"accessory_affects_margin" mapstructure:"accessory_affects_margin"`
	// FloorAfterDiscount caps the volume discount so the discounted slab
	// subtotal still clears IBMinMarginFraction over the internal base cost.
	FloorAfterDiscount bool `json:"floor_after_discount" mapstructure:"floor_after_discount"`
}

// Validate reports the first inconsistent field, wrapped in ErrInvalidPolicy.
func (p Policy) Validate() error {
	if p.Family != FamilyMarkup && p.Family != FamilyIBFloor {
		return fmt.Errorf("%w: unknown family %q", ErrInvalidPolicy, p.Family)
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"waste_factor", p.WasteFactor},
		{"tax_rate", p.TaxRate},
		{"install_rate_per_sqft", p.InstallRatePerSqFt},
		{"fabrication_rate_per_sqft", p.FabricationRatePerSqFt},
		{"material_markup_factor", p.MaterialMarkupFactor},
		{"ib_material_markup", p.IBMaterialMarkup},
		{"ib_min_margin_fraction", p.IBMinMarginFraction},
		{"ib_to_customer_markup", p.IBToCustomerMarkup},
		{"min_area_sqft", p.MinAreaSqFt},
	}
	for _, f := range fields {
		if !isFinite(f.value) || f.value < 0 {
			return fmt.Errorf("%w: %s must be a finite value >= 0", ErrInvalidPolicy, f.name)
		}
	}

	if p.WasteFactor < 1 {
		return fmt.Errorf("%w: waste_factor must be >= 1", ErrInvalidPolicy)
	}
	if p.IBMinMarginFraction >= 1 {
		return fmt.Errorf("%w: ib_min_margin_fraction must be < 1", ErrInvalidPolicy)
	}

	switch p.Family {
	case FamilyMarkup:
		if p.MaterialMarkupFactor <= 0 {
			return fmt.Errorf("%w: material_markup_factor must be > 0 for the markup family", ErrInvalidPolicy)
		}
	case FamilyIBFloor:
		// Below 1 the customer pays less than the internal base cost.
		if p.IBToCustomerMarkup < 1 {
			return fmt.Errorf("%w: ib_to_customer_markup must be >= 1 for the ib_floor family", ErrInvalidPolicy)
		}
	}

	seen := make(map[float64]bool, len(p.DiscountTiers))
	for _, tier := range p.DiscountTiers {
		if !isFinite(tier.MinSqFt) || tier.MinSqFt < 0 {
			return fmt.Errorf("%w: discount tier threshold must be >= 0", ErrInvalidPolicy)
		}
		if !isFinite(tier.Fraction) || tier.Fraction < 0 || tier.Fraction >= 1 {
			return fmt.Errorf("%w: discount tier fraction must be in [0, 1)", ErrInvalidPolicy)
		}
		if seen[tier.MinSqFt] {
			return fmt.Errorf("%w: duplicate discount tier at %v sqft", ErrInvalidPolicy, tier.MinSqFt)
		}
		seen[tier.MinSqFt] = true
	}

	return nil
}

// DiscountFor returns the tier matching areaSqFt: the highest threshold the
// area meets or exceeds. It returns zeros when no tier applies.
func (p Policy) DiscountFor(areaSqFt float64) (threshold, fraction float64) {
	tiers := make([]DiscountTier, len(p.DiscountTiers))
	copy(tiers, p.DiscountTiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinSqFt > tiers[j].MinSqFt
	})

	for _, tier := range tiers {
		if areaSqFt >= tier.MinSqFt {
			return tier.MinSqFt, tier.Fraction
		}
	}
	return 0, 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

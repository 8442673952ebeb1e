// Package pricing turns a slab unit cost and a finished area into an
// itemized customer quote under a Policy. Compute is a pure function and is
// safe for concurrent use.
package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for negative costs and non-positive areas.
	ErrInvalidInput = errors.New("invalid pricing input")
	// ErrInvalidPolicy is returned when a policy fails Validate.
	ErrInvalidPolicy = errors.New("invalid pricing policy")
)

// Request represents a single quote request for one material.
type Request struct {
	UnitCost         float64 `json:"unit_cost"`
	FinishedAreaSqFt float64 `json:"finished_area_sqft"`
	AccessoryCost    float64 `json:"accessory_cost"`
	ApplyDiscount    bool    `json:"apply_discount"`
}

// Result contains every line of the quote plus the intermediate values of
// the cost chain that produced it.
type Result struct {
	PolicyName string `json:"policy_name"`
	Family     Family `json:"family"`

	AreaSqFt            float64 `json:"area_sqft"`
	SqFtWithWaste       float64 `json:"sqft_with_waste"`
	RawMaterialCost     float64 `json:"raw_material_cost"`
	RawFabCost          float64 `json:"raw_fab_cost"`
	TotalDirectCost     float64 `json:"total_direct_cost"`
	IBCandidateMarkup   float64 `json:"ib_candidate_markup"`
	IBCandidateFloor    float64 `json:"ib_candidate_floor"`
	CustomerMatFabTotal float64 `json:"customer_mat_fab_total"`

	MaterialCost     float64 `json:"material_cost"`
	FabricationCost  float64 `json:"fabrication_cost"`
	InstallCost      float64 `json:"install_cost"`
	InternalBaseCost float64 `json:"internal_base_cost"`
	CustomerSubtotal float64 `json:"customer_subtotal"`

	DiscountTierSqFt      float64 `json:"discount_tier_sqft"`
	DiscountPct           float64 `json:"discount_pct"`
	DiscountAmount        float64 `json:"discount_amount"`
	AccessoryCost         float64 `json:"accessory_cost"`
	SubtotalAfterDiscount float64 `json:"subtotal_after_discount"`

	GrossProfit  float64 `json:"gross_profit"`
	MarginPct    float64 `json:"margin_pct"`
	TaxAmount    float64 `json:"tax_amount"`
	TotalWithTax float64 `json:"total_with_tax"`
}

// Compute prices req under p.
func Compute(req Request, p Policy) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	area := req.FinishedAreaSqFt
	if p.MinAreaSqFt > 0 && area < p.MinAreaSqFt {
		area = p.MinAreaSqFt
	}

	res := Result{
		PolicyName:    p.Name,
		Family:        p.Family,
		AreaSqFt:      area,
		SqFtWithWaste: area * p.WasteFactor,
		AccessoryCost: req.AccessoryCost,
	}

	switch p.Family {
	case FamilyMarkup:
		markupChain(&res, req.UnitCost, p)
	case FamilyIBFloor:
		ibFloorChain(&res, req.UnitCost, p)
	}

	if req.ApplyDiscount {
		applyVolumeDiscount(&res, p)
	}

	res.SubtotalAfterDiscount = res.CustomerSubtotal - res.DiscountAmount
	res.SubtotalAfterDiscount += req.AccessoryCost

	basis := res.SubtotalAfterDiscount
	if !p.AccessoryAffectsMargin {
		basis -= req.AccessoryCost
	}
	res.GrossProfit = basis - res.InternalBaseCost
	if basis > 0 {
		res.MarginPct = res.GrossProfit / basis * 100
	}

	res.TaxAmount = res.SubtotalAfterDiscount * p.TaxRate
	res.TotalWithTax = res.SubtotalAfterDiscount * (1 + p.TaxRate)

	return res, nil
}

func markupChain(res *Result, unitCost float64, p Policy) {
	area := res.AreaSqFt

	res.RawMaterialCost = unitCost * res.SqFtWithWaste
	res.RawFabCost = p.FabricationRatePerSqFt * area
	res.TotalDirectCost = res.RawMaterialCost + res.RawFabCost

	res.MaterialCost = unitCost * p.MaterialMarkupFactor * res.SqFtWithWaste
	res.FabricationCost = p.FabricationRatePerSqFt * area
	res.InstallCost = p.InstallRatePerSqFt * area

	res.InternalBaseCost = (unitCost*p.IBMaterialMarkup + p.FabricationRatePerSqFt) * area
	res.IBCandidateMarkup = res.InternalBaseCost

	res.CustomerMatFabTotal = res.MaterialCost + res.FabricationCost
	res.CustomerSubtotal = res.MaterialCost + res.FabricationCost + res.InstallCost
}

func ibFloorChain(res *Result, unitCost float64, p Policy) {
	area := res.AreaSqFt

	res.RawMaterialCost = unitCost * res.SqFtWithWaste
	res.RawFabCost = p.FabricationRatePerSqFt * area
	res.TotalDirectCost = res.RawMaterialCost + res.RawFabCost

	res.IBCandidateMarkup = res.RawMaterialCost*p.IBMaterialMarkup + res.RawFabCost
	res.IBCandidateFloor = res.TotalDirectCost / (1 - p.IBMinMarginFraction)
	res.InternalBaseCost = max(res.IBCandidateMarkup, res.IBCandidateFloor)

	res.CustomerMatFabTotal = res.InternalBaseCost * p.IBToCustomerMarkup
	if res.TotalDirectCost > 0 {
		res.MaterialCost = res.CustomerMatFabTotal * (res.RawMaterialCost / res.TotalDirectCost)
	}
	res.FabricationCost = res.CustomerMatFabTotal - res.MaterialCost
	res.InstallCost = p.InstallRatePerSqFt * area

	res.CustomerSubtotal = res.CustomerMatFabTotal + res.InstallCost
}

func applyVolumeDiscount(res *Result, p Policy) {
	threshold, fraction := p.DiscountFor(res.AreaSqFt)
	if fraction == 0 {
		return
	}

	res.DiscountTierSqFt = threshold
	res.DiscountPct = fraction * 100
	res.DiscountAmount = res.CustomerSubtotal * fraction

	if p.FloorAfterDiscount {
		floorSubtotal := res.InternalBaseCost / (1 - p.IBMinMarginFraction)
		limit := max(0, res.CustomerSubtotal-floorSubtotal)
		if res.DiscountAmount > limit {
			res.DiscountAmount = limit
			res.DiscountPct = 0
			if res.CustomerSubtotal > 0 {
				res.DiscountPct = limit / res.CustomerSubtotal * 100
			}
		}
		if res.DiscountAmount == 0 {
			res.DiscountTierSqFt = 0
		}
	}
}

func (r Request) validate() error {
	if !isFinite(r.UnitCost) || r.UnitCost < 0 {
		return fmt.Errorf("%w: unit cost must be >= 0, got %v", ErrInvalidInput, r.UnitCost)
	}
	if !isFinite(r.FinishedAreaSqFt) || r.FinishedAreaSqFt <= 0 {
		return fmt.Errorf("%w: finished area must be > 0, got %v", ErrInvalidInput, r.FinishedAreaSqFt)
	}
	if !isFinite(r.AccessoryCost) || r.AccessoryCost < 0 {
		return fmt.Errorf("%w: accessory cost must be >= 0, got %v", ErrInvalidInput, r.AccessoryCost)
	}
	return nil
}

package pricing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func mustPreset(t *testing.T, name string) Policy {
	t.Helper()
	p, ok := Preset(name)
	require.True(t, ok, "preset %s", name)
	return p
}

func TestCompute_IBFloorWorkedExample(t *testing.T) {
	p := mustPreset(t, "ib-floor-v2")

	res, err := Compute(Request{UnitCost: 10, FinishedAreaSqFt: 35}, p)
	require.NoError(t, err)

	assert.InDelta(t, 42.0, res.SqFtWithWaste, delta)
	assert.InDelta(t, 420.0, res.RawMaterialCost, delta)
	assert.InDelta(t, 560.0, res.RawFabCost, delta)
	assert.InDelta(t, 980.0, res.TotalDirectCost, delta)
	assert.InDelta(t, 1001.0, res.IBCandidateMarkup, delta)
	assert.InDelta(t, 980.0/0.82, res.IBCandidateFloor, delta)
	assert.InDelta(t, 980.0/0.82, res.InternalBaseCost, delta)
	assert.InDelta(t, 980.0/0.82*1.15, res.CustomerMatFabTotal, delta)
	assert.InDelta(t, 665.0, res.InstallCost, delta)
	assert.InDelta(t, 980.0/0.82*1.15+665, res.CustomerSubtotal, delta)
	assert.Zero(t, res.DiscountAmount)
	assert.Equal(t, res.CustomerSubtotal, res.SubtotalAfterDiscount)
	assert.InDelta(t, res.SubtotalAfterDiscount-res.InternalBaseCost, res.GrossProfit, delta)
	assert.InDelta(t, res.GrossProfit/res.SubtotalAfterDiscount*100, res.MarginPct, delta)
	assert.InDelta(t, 2141.3597560975613, res.TotalWithTax, 1e-6)
	assert.InDelta(t, res.CustomerMatFabTotal, res.MaterialCost+res.FabricationCost, delta)
	assert.InDelta(t, res.CustomerMatFabTotal*420/980, res.MaterialCost, delta)
}

func TestCompute_MarkupChain(t *testing.T) {
	p := mustPreset(t, "markup-v1")

	res, err := Compute(Request{UnitCost: 10, FinishedAreaSqFt: 35, ApplyDiscount: true}, p)
	require.NoError(t, err)

	assert.InDelta(t, 36.75, res.SqFtWithWaste, delta)
	assert.InDelta(t, 554.925, res.MaterialCost, delta)
	assert.InDelta(t, 560.0, res.FabricationCost, delta)
	assert.InDelta(t, 665.0, res.InstallCost, delta)
	assert.InDelta(t, 927.5, res.InternalBaseCost, delta)
	assert.InDelta(t, 1779.925, res.CustomerSubtotal, delta)
	assert.Zero(t, res.DiscountPct, "markup presets carry no tiers")
	assert.InDelta(t, (1779.925-927.5)/1779.925*100, res.MarginPct, delta)
	assert.InDelta(t, 1779.925*1.05, res.TotalWithTax, 1e-6)
}

func TestCompute_MarkupFoldedIntoIB(t *testing.T) {
	p := mustPreset(t, "markup-v2")

	res, err := Compute(Request{UnitCost: 10, FinishedAreaSqFt: 10}, p)
	require.NoError(t, err)

	assert.InDelta(t, 12.0, res.SqFtWithWaste, delta)
	assert.InDelta(t, 120.0, res.MaterialCost, delta)
	assert.InDelta(t, (10*1.05+16)*10, res.InternalBaseCost, delta)
}

func TestCompute_DiscountTierBoundaries(t *testing.T) {
	p := mustPreset(t, "ib-floor-v2")

	tests := []struct {
		area     float64
		wantPct  float64
		wantTier float64
	}{
		{area: 99, wantPct: 0, wantTier: 0},
		{area: 100, wantPct: 5, wantTier: 100},
		{area: 199, wantPct: 5, wantTier: 100},
		{area: 200, wantPct: 8, wantTier: 200},
		{area: 299.99, wantPct: 8, wantTier: 200},
		{area: 300, wantPct: 10, wantTier: 300},
		{area: 5000, wantPct: 10, wantTier: 300},
	}

	for _, tt := range tests {
		res, err := Compute(Request{UnitCost: 12, FinishedAreaSqFt: tt.area, ApplyDiscount: true}, p)
		require.NoError(t, err)
		assert.InDelta(t, tt.wantPct, res.DiscountPct, delta, "area %v", tt.area)
		assert.Equal(t, tt.wantTier, res.DiscountTierSqFt, "area %v", tt.area)
		assert.InDelta(t, res.CustomerSubtotal*tt.wantPct/100, res.DiscountAmount, 1e-6, "area %v", tt.area)
	}
}

func TestCompute_DiscountDisabled(t *testing.T) {
	p := mustPreset(t, "ib-floor-v2")

	res, err := Compute(Request{UnitCost: 12, FinishedAreaSqFt: 250, ApplyDiscount: false}, p)
	require.NoError(t, err)
	assert.Zero(t, res.DiscountAmount)
	assert.Zero(t, res.DiscountPct)
	assert.Equal(t, res.CustomerSubtotal, res.SubtotalAfterDiscount)
}

func TestCompute_AccessoryAddedAfterDiscount(t *testing.T) {
	p := mustPreset(t, "ib-floor-v2")

	without, err := Compute(Request{UnitCost: 12, FinishedAreaSqFt: 120, ApplyDiscount: true}, p)
	require.NoError(t, err)
	with, err := Compute(Request{UnitCost: 12, FinishedAreaSqFt: 120, AccessoryCost: 450, ApplyDiscount: true}, p)
	require.NoError(t, err)

	assert.Equal(t, without.DiscountAmount, with.DiscountAmount)
	assert.InDelta(t, without.SubtotalAfterDiscount+450, with.SubtotalAfterDiscount, delta)
	assert.InDelta(t, without.GrossProfit+450, with.GrossProfit, delta)
	assert.InDelta(t, with.SubtotalAfterDiscount*1.05, with.TotalWithTax, 1e-6)
}

func TestCompute_AccessoryExcludedFromMargin(t *testing.T) {
	p := mustPreset(t, "ib-floor-v2")
	p.AccessoryAffectsMargin = false

	without, err := Compute(Request{UnitCost: 12, FinishedAreaSqFt: 40}, p)
	require.NoError(t, err)
	with, err := Compute(Request{UnitCost: 12, FinishedAreaSqFt: 40, AccessoryCost: 300}, p)
	require.NoError(t, err)

	assert.InDelta(t, without.GrossProfit, with.GrossProfit, 1e-6)
	assert.InDelta(t, without.MarginPct, with.MarginPct, 1e-9)
	assert.InDelta(t, without.TotalWithTax+300*1.05, with.TotalWithTax, 1e-6)
}

func TestCompute_MarkupCandidateWins(t *testing.T) {
	p := mustPreset(t, "ib-floor-v1")
	p.IBMaterialMarkup = 2.0
	p.FabricationRatePerSqFt = 0

	res, err := Compute(Request{UnitCost: 10, FinishedAreaSqFt: 10}, p)
	require.NoError(t, err)

	assert.InDelta(t, 240.0, res.IBCandidateMarkup, delta)
	assert.InDelta(t, 120.0/0.82, res.IBCandidateFloor, delta)
	assert.Equal(t, res.IBCandidateMarkup, res.InternalBaseCost)
	assert.InDelta(t, res.CustomerMatFabTotal, res.MaterialCost, delta)
	assert.Zero(t, res.FabricationCost)
}

func TestCompute_FloorAfterDiscountCapsDiscount(t *testing.T) {
	p := mustPreset(t, "ib-floor-v1")
	p.InstallRatePerSqFt = 0
	p.DiscountTiers = []DiscountTier{{MinSqFt: 10, Fraction: 0.5}}

	uncapped, err := Compute(Request{UnitCost: 10, FinishedAreaSqFt: 20, ApplyDiscount: true}, p)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, uncapped.DiscountPct, delta)

	p.FloorAfterDiscount = true
	capped, err := Compute(Request{UnitCost: 10, FinishedAreaSqFt: 20, ApplyDiscount: true}, p)
	require.NoError(t, err)

	// 1.15 x IB is already below IB / 0.82, so nothing is left to give away.
	assert.Zero(t, capped.DiscountAmount)
	assert.Zero(t, capped.DiscountPct)
	assert.Zero(t, capped.DiscountTierSqFt, "no tier is reported when the cap removes the discount")

	p.InstallRatePerSqFt = 19
	partial, err := Compute(Request{UnitCost: 10, FinishedAreaSqFt: 20, ApplyDiscount: true}, p)
	require.NoError(t, err)
	floorSubtotal := partial.InternalBaseCost / 0.82
	assert.InDelta(t, partial.CustomerSubtotal-floorSubtotal, partial.DiscountAmount, 1e-6)
	assert.InDelta(t, 18.0, partial.MarginPct, 1e-6)
	assert.Less(t, partial.DiscountPct, 50.0)
	assert.Equal(t, 10.0, partial.DiscountTierSqFt)
}

func TestCompute_ZeroSubtotalHasZeroMargin(t *testing.T) {
	p := mustPreset(t, "ib-floor-v1")
	p.FabricationRatePerSqFt = 0
	p.InstallRatePerSqFt = 0

	res, err := Compute(Request{UnitCost: 0, FinishedAreaSqFt: 30}, p)
	require.NoError(t, err)
	assert.Zero(t, res.SubtotalAfterDiscount)
	assert.Zero(t, res.MarginPct)
	assert.Zero(t, res.TotalWithTax)
	assert.False(t, math.IsNaN(res.MarginPct))
}

func TestCompute_MinimumAreaClamp(t *testing.T) {
	p := mustPreset(t, "ib-floor-v2")

	res, err := Compute(Request{UnitCost: 10, FinishedAreaSqFt: 0.25}, p)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.AreaSqFt)

	p.MinAreaSqFt = 0
	res, err = Compute(Request{UnitCost: 10, FinishedAreaSqFt: 0.25}, p)
	require.NoError(t, err)
	assert.Equal(t, 0.25, res.AreaSqFt)
}

func TestCompute_InvalidInput(t *testing.T) {
	p := mustPreset(t, "ib-floor-v2")

	tests := map[string]Request{
		"zero area":          {UnitCost: 10, FinishedAreaSqFt: 0},
		"negative area":      {UnitCost: 10, FinishedAreaSqFt: -5},
		"negative cost":      {UnitCost: -0.01, FinishedAreaSqFt: 10},
		"nan cost":           {UnitCost: math.NaN(), FinishedAreaSqFt: 10},
		"infinite area":      {UnitCost: 10, FinishedAreaSqFt: math.Inf(1)},
		"negative accessory": {UnitCost: 10, FinishedAreaSqFt: 10, AccessoryCost: -1},
	}

	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Compute(req, p)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCompute_InvalidPolicy(t *testing.T) {
	p := mustPreset(t, "ib-floor-v2")
	p.IBMinMarginFraction = 1

	_, err := Compute(Request{UnitCost: 10, FinishedAreaSqFt: 10}, p)
	require.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestCompute_IsDeterministic(t *testing.T) {
	p := mustPreset(t, "ib-floor-v2")
	req := Request{UnitCost: 17.38, FinishedAreaSqFt: 212.5, AccessoryCost: 389.99, ApplyDiscount: true}

	first, err := Compute(req, p)
	require.NoError(t, err)
	second, err := Compute(req, p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompute_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, p := range Presets() {
		for i := 0; i < 500; i++ {
			req := Request{
				UnitCost:         rng.Float64() * 200,
				FinishedAreaSqFt: 0.5 + rng.Float64()*400,
				AccessoryCost:    float64(rng.Intn(3)) * 250,
				ApplyDiscount:    rng.Intn(2) == 0,
			}

			res, err := Compute(req, p)
			require.NoError(t, err)

			require.Equal(t, res.SubtotalAfterDiscount*(1+p.TaxRate), res.TotalWithTax, "%s %+v", p.Name, req)
			require.GreaterOrEqual(t, res.SubtotalAfterDiscount, 0.0)
			require.GreaterOrEqual(t, res.TotalWithTax, res.SubtotalAfterDiscount)

			if res.SubtotalAfterDiscount > 0 {
				want := (res.SubtotalAfterDiscount - res.InternalBaseCost) / res.SubtotalAfterDiscount * 100
				require.InDelta(t, want, res.MarginPct, 1e-9)
			}

			if p.Family == FamilyIBFloor {
				require.GreaterOrEqual(t, res.InternalBaseCost, res.IBCandidateFloor)
				require.GreaterOrEqual(t, res.InternalBaseCost, res.IBCandidateMarkup)
				if res.TotalDirectCost > 0 {
					floorMargin := (res.InternalBaseCost - res.TotalDirectCost) / res.InternalBaseCost
					require.GreaterOrEqual(t, floorMargin, p.IBMinMarginFraction-1e-12)
				}
			}

			bigger := req
			bigger.FinishedAreaSqFt += 1 + rng.Float64()*50
			next, err := Compute(bigger, p)
			require.NoError(t, err)
			require.GreaterOrEqual(t, next.CustomerSubtotal, res.CustomerSubtotal)
		}
	}
}

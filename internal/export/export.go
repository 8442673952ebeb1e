// Package export renders quotes and inventory as text, CSV and XLSX.
package export

import (
	"github.com/shopspring/decimal"

	"github.com/Simplici0/slabquote/internal/store"
)

// Line is one labelled amount of a quote breakdown.
type Line struct {
	Label  string
	Amount decimal.Decimal
	// Percent marks values rendered as percentages rather than money.
	Percent bool
}

// Money rounds v half away from zero to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Breakdown lists the customer-facing lines of q in display order. Amounts
// are rounded here and nowhere earlier.
func Breakdown(q store.Quote) []Line {
	t := q.Totals
	lines := []Line{
		{Label: "Material", Amount: Money(t.MaterialCost)},
		{Label: "Fabrication", Amount: Money(t.FabricationCost)},
		{Label: "Installation", Amount: Money(t.InstallCost)},
		{Label: "Subtotal", Amount: Money(t.CustomerSubtotal)},
	}
	if t.DiscountAmount > 0 {
		lines = append(lines,
			Line{Label: "Volume discount", Amount: Money(t.DiscountPct), Percent: true},
			Line{Label: "Discount amount", Amount: Money(-t.DiscountAmount)},
		)
	}
	if t.AccessoryCost > 0 {
		lines = append(lines, Line{Label: "Accessories", Amount: Money(t.AccessoryCost)})
	}
	lines = append(lines,
		Line{Label: "Subtotal after discount", Amount: Money(t.SubtotalAfterDiscount)},
		Line{Label: "Tax", Amount: Money(t.TaxAmount)},
		Line{Label: "Total", Amount: Money(t.TotalWithTax)},
	)
	return lines
}

// Internal lists the cost-side lines that stay inside the shop.
func Internal(q store.Quote) []Line {
	t := q.Totals
	return []Line{
		{Label: "Internal base cost", Amount: Money(t.InternalBaseCost)},
		{Label: "Gross profit", Amount: Money(t.GrossProfit)},
		{Label: "Margin", Amount: Money(t.MarginPct), Percent: true},
	}
}

func (l Line) String() string {
	if l.Percent {
		return l.Amount.StringFixed(2) + "%"
	}
	if l.Amount.IsNegative() {
		return "-$" + l.Amount.Neg().StringFixed(2)
	}
	return "$" + l.Amount.StringFixed(2)
}

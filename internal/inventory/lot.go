// Package inventory turns clearance inventory feeds into priced lots and
// material groups.
package inventory

import (
	"github.com/Simplici0/slabquote/internal/variant"
)

// Lot is one inventory row: a physical slab or bundle of slabs.
type Lot struct {
	RawLabel  string  `json:"raw_label"`
	Brand     string  `json:"brand"`
	Color     string  `json:"color"`
	Thickness string  `json:"thickness"`
	Location  string  `json:"location"`
	OnHandQty float64 `json:"on_hand_qty"`
	TotalCost float64 `json:"total_cost"`
}

// NewLot parses label with p and attaches the quantities.
func NewLot(p variant.Parser, label string, onHandQty, totalCost float64) Lot {
	v := p.Parse(label)
	return Lot{
		RawLabel:  label,
		Brand:     v.Brand,
		Color:     v.Color,
		Thickness: v.Thickness,
		Location:  v.Location,
		OnHandQty: onHandQty,
		TotalCost: totalCost,
	}
}

// UnitCost returns cost per square foot. ok is false when the lot has no
// stock on hand.
func (l Lot) UnitCost() (cost float64, ok bool) {
	if l.OnHandQty <= 0 {
		return 0, false
	}
	return l.TotalCost / l.OnHandQty, true
}

// FullName renders "Brand Color (Thickness)".
func (l Lot) FullName() string {
	return variant.Variant{Brand: l.Brand, Color: l.Color, Thickness: l.Thickness}.FullName()
}

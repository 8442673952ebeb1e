package inventory

import (
	"slices"
	"strings"
)

// Representative picks the unit cost that stands for a whole group.
type Representative int

const (
	// RepresentativeFirst uses the unit cost of the first lot seen.
	RepresentativeFirst Representative = iota
	// RepresentativeMean averages the unit costs of all lots.
	RepresentativeMean
)

// Group aggregates lots that share brand, color and thickness.
type Group struct {
	Name      string   `json:"name"`
	Brand     string   `json:"brand"`
	Color     string   `json:"color"`
	Thickness string   `json:"thickness"`
	OnHandQty float64  `json:"on_hand_qty"`
	TotalCost float64  `json:"total_cost"`
	UnitCost  float64  `json:"unit_cost"`
	LotCount  int      `json:"lot_count"`
	Locations []string `json:"locations"`
}

type groupKey struct {
	brand, color, thickness string
}

// GroupLots merges lots into groups in order of first appearance. Lots
// without stock are skipped.
func GroupLots(lots []Lot, rep Representative) []Group {
	index := make(map[groupKey]int)
	groups := make([]Group, 0)
	unitSums := make([]float64, 0)

	for _, lot := range lots {
		unit, ok := lot.UnitCost()
		if !ok {
			continue
		}

		key := groupKey{
			brand:     strings.ToLower(lot.Brand),
			color:     strings.ToLower(lot.Color),
			thickness: strings.ToLower(lot.Thickness),
		}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Name:      lot.FullName(),
				Brand:     lot.Brand,
				Color:     lot.Color,
				Thickness: lot.Thickness,
				UnitCost:  unit,
			})
			unitSums = append(unitSums, 0)
		}

		g := &groups[i]
		g.OnHandQty += lot.OnHandQty
		g.TotalCost += lot.TotalCost
		g.LotCount++
		unitSums[i] += unit
		if lot.Location != "" && !slices.Contains(g.Locations, lot.Location) {
			g.Locations = append(g.Locations, lot.Location)
		}
	}

	if rep == RepresentativeMean {
		for i := range groups {
			groups[i].UnitCost = unitSums[i] / float64(groups[i].LotCount)
		}
	}

	return groups
}

// FindGroup looks a group up by its full name, ignoring case.
func FindGroup(groups []Group, name string) (Group, bool) {
	for _, g := range groups {
		if strings.EqualFold(g.Name, strings.TrimSpace(name)) {
			return g, true
		}
	}
	return Group{}, false
}

// Filter narrows a group listing. Empty fields match everything.
type Filter struct {
	Query     string
	Thickness string
	Brand     string
}

// FilterGroups keeps groups whose name contains Query and whose thickness
// and brand match exactly, all ignoring case.
func FilterGroups(groups []Group, f Filter) []Group {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if query != "" && !strings.Contains(strings.ToLower(g.Name), query) {
			continue
		}
		if f.Thickness != "" && !strings.EqualFold(g.Thickness, strings.TrimSpace(f.Thickness)) {
			continue
		}
		if f.Brand != "" && !strings.EqualFold(g.Brand, strings.TrimSpace(f.Brand)) {
			continue
		}
		out = append(out, g)
	}
	return out
}

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/slabquote/internal/inventory"
	"github.com/Simplici0/slabquote/internal/store"
)

const (
	quoteSheet     = "Quote"
	inventorySheet = "Inventory"
)

// QuoteXLSX writes a one-sheet workbook with the quote header and breakdown.
func QuoteXLSX(w io.Writer, q store.Quote) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", quoteSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := [][]any{
		{"Quote ID", q.ID},
		{"Created At", q.CreatedAt.Format("2006-01-02 15:04")},
		{"Title", q.Title},
		{"Material", q.Material},
		{"Policy", q.PolicyName},
		{"Area (sq ft)", Money(q.Totals.AreaSqFt).InexactFloat64()},
	}
	row := 1
	for _, values := range header {
		if err := setRow(f, quoteSheet, row, values); err != nil {
			return err
		}
		row++
	}
	row++

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := f.SetCellStyle(quoteSheet, "A1", fmt.Sprintf("A%d", len(header)), bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for _, l := range append(Breakdown(q), Internal(q)...) {
		if err := setRow(f, quoteSheet, row, []any{l.Label, l.Amount.InexactFloat64()}); err != nil {
			return err
		}
		if !l.Percent {
			cell, _ := excelize.CoordinatesToCellName(2, row)
			if err := f.SetCellStyle(quoteSheet, cell, cell, money); err != nil {
				return fmt.Errorf("style amount: %w", err)
			}
		}
		row++
	}

	if err := f.SetColWidth(quoteSheet, "A", "A", 26); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write quote workbook: %w", err)
	}
	return nil
}

// InventoryXLSX writes material groups with their aggregated stock and cost.
func InventoryXLSX(w io.Writer, groups []inventory.Group) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, inventorySheet, 1, []any{
		"Material", "Brand", "Color", "Thickness", "On Hand (sq ft)", "Total Cost", "Unit Cost", "Lots", "Locations",
	}); err != nil {
		return err
	}

	for i, g := range groups {
		if err := setRow(f, inventorySheet, i+2, []any{
			g.Name,
			g.Brand,
			g.Color,
			g.Thickness,
			Money(g.OnHandQty).InexactFloat64(),
			Money(g.TotalCost).InexactFloat64(),
			Money(g.UnitCost).InexactFloat64(),
			g.LotCount,
			strings.Join(g.Locations, ", "),
		}); err != nil {
			return err
		}
	}

	if err := f.SetPanes(inventorySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write inventory workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

package inventory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLotUnitCost(t *testing.T) {
	lot := Lot{OnHandQty: 50, TotalCost: 612.5}
	cost, ok := lot.UnitCost()
	require.True(t, ok)
	assert.Equal(t, 12.25, cost)

	_, ok = Lot{OnHandQty: 0, TotalCost: 10}.UnitCost()
	assert.False(t, ok)
}

func TestGroupLots(t *testing.T) {
	r := NewReader()
	lots := []Lot{
		NewLot(r.Parser, "1 - Cambria Brittanicca (ABB) 3cm", 50, 500),
		NewLot(r.Parser, "2 - Silestone Eternal Marquina 2cm", 40, 600),
		NewLot(r.Parser, "3 - Cambria Brittanicca (ATL) 3cm", 25, 375),
		NewLot(r.Parser, "4 - Cambria Brittanicca 2cm", 10, 90),
		{Brand: "Ghost", Color: "Lot", Thickness: "3cm", OnHandQty: 0, TotalCost: 100},
	}

	first := GroupLots(lots, RepresentativeFirst)
	require.Len(t, first, 3)

	g := first[0]
	assert.Equal(t, "Cambria Brittanicca (3cm)", g.Name)
	assert.Equal(t, 75.0, g.OnHandQty)
	assert.Equal(t, 875.0, g.TotalCost)
	assert.Equal(t, 2, g.LotCount)
	assert.Equal(t, 10.0, g.UnitCost)
	assert.Equal(t, []string{"ABB", "ATL"}, g.Locations)

	assert.Equal(t, "Silestone Eternal Marquina (2cm)", first[1].Name)
	assert.Equal(t, "Cambria Brittanicca (2cm)", first[2].Name)

	mean := GroupLots(lots, RepresentativeMean)
	assert.Equal(t, 12.5, mean[0].UnitCost)

	found, ok := FindGroup(mean, "  cambria brittanicca (3cm) ")
	require.True(t, ok)
	assert.Equal(t, 2, found.LotCount)

	_, ok = FindGroup(mean, "Nope (3cm)")
	assert.False(t, ok)
}

func TestFilterGroups(t *testing.T) {
	groups := []Group{
		{Name: "Cambria Brittanicca (3cm)", Brand: "Cambria", Thickness: "3cm"},
		{Name: "Silestone Eternal Marquina (2cm)", Brand: "Silestone", Thickness: "2cm"},
		{Name: "Cambria Brittanicca (2cm)", Brand: "Cambria", Thickness: "2cm"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty", Filter{}, []string{"Cambria Brittanicca (3cm)", "Silestone Eternal Marquina (2cm)", "Cambria Brittanicca (2cm)"}},
		{"query", Filter{Query: "britt"}, []string{"Cambria Brittanicca (3cm)", "Cambria Brittanicca (2cm)"}},
		{"thickness", Filter{Thickness: "2CM"}, []string{"Silestone Eternal Marquina (2cm)", "Cambria Brittanicca (2cm)"}},
		{"brand and thickness", Filter{Brand: "cambria", Thickness: "2cm"}, []string{"Cambria Brittanicca (2cm)"}},
		{"no match", Filter{Brand: "Dekton"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := make([]string, 0)
			for _, g := range FilterGroups(groups, tt.filter) {
				names = append(names, g.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestReadCSV(t *testing.T) {
	feed := strings.Join([]string{
		` Product Variant ,On Hand Qty,Serialized On Hand Cost ,Warehouse`,
		`"17 - Cambria Brittanicca (ABB) 3cm",55.5,"$1,110.00",Main`,
		`18 - Silestone Eternal Marquina 2cm,0,$300.00,Main`,
		`19 - Caesarstone Empira White 3cm,abc,$300.00,Main`,
		`20 - Caesarstone Empira White 3cm,"1,000",$12000,Annex`,
		`,10,100,Main`,
	}, "\n")

	lots, err := NewReader().ReadCSV(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, lots, 2)

	assert.Equal(t, "Cambria", lots[0].Brand)
	assert.Equal(t, "ABB", lots[0].Location, "label location wins over the column")
	assert.Equal(t, 55.5, lots[0].OnHandQty)
	assert.Equal(t, 1110.0, lots[0].TotalCost)

	assert.Equal(t, "Annex", lots[1].Location)
	assert.Equal(t, 1000.0, lots[1].OnHandQty)
	cost, ok := lots[1].UnitCost()
	require.True(t, ok)
	assert.Equal(t, 12.0, cost)
}

func TestReadCSV_Latin1(t *testing.T) {
	feed := "Product Variant,On Hand Qty,Serialized On Hand Cost\n" +
		"Acme Cr\xe8me Brul\xe9e 3cm,10,100\n"

	lots, err := NewReader().ReadCSV(strings.NewReader(feed))
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "Crème Brulée", lots[0].Color)
}

func TestReadCSV_FuzzyAndMissingColumns(t *testing.T) {
	fuzzy := "Item Product Variant Name,Total On Hand Qty,Serialized On Hand Cost (USD)\nAcme Grey 3cm,2,20\n"
	lots, err := NewReader().ReadCSV(strings.NewReader(fuzzy))
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "Acme", lots[0].Brand)

	_, err = NewReader().ReadCSV(strings.NewReader("Name,Qty\nA,1\n"))
	require.ErrorIs(t, err, ErrMissingColumn)

	_, err = NewReader().ReadCSV(strings.NewReader("Product Variant,Qty\nA,1\n"))
	require.ErrorIs(t, err, ErrMissingColumn)

	_, err = NewReader().ReadCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadXLSX_HeaderOnSecondRow(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]any{
		{"Clearance export"},
		{"Product Variant", "On Hand Qty", "Serialized On Hand Cost"},
		{"21 - Cambria Skara Brae (CLT) 3cm", 40, 880},
		{"22 - Dekton Entzo 2cm", 0, 100},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	lots, err := NewReader().ReadFile("inventory.xlsx", buf)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "Skara Brae", lots[0].Color)
	assert.Equal(t, "CLT", lots[0].Location)
	cost, _ := lots[0].UnitCost()
	assert.Equal(t, 22.0, cost)
}

func TestReadFile_UnsupportedFormat(t *testing.T) {
	_, err := NewReader().ReadFile("inventory.pdf", strings.NewReader(""))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

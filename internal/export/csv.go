package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Simplici0/slabquote/internal/store"
)

// CSV writes the quote breakdown as label,amount rows, internal lines last.
func CSV(w io.Writer, q store.Quote) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"field", "value"},
		{"quote_id", q.ID},
		{"created_at", q.CreatedAt.Format("2006-01-02T15:04:05Z07:00")},
		{"title", q.Title},
		{"material", q.Material},
		{"policy", q.PolicyName},
		{"area_sqft", Money(q.Totals.AreaSqFt).StringFixed(2)},
	}
	for _, l := range append(Breakdown(q), Internal(q)...) {
		rows = append(rows, []string{l.Label, l.Amount.StringFixed(2)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write quote csv: %w", err)
	}
	return nil
}

package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Simplici0/slabquote/internal/store"
)

// Text writes a plain-text quote suitable for pasting into an email.
func Text(w io.Writer, q store.Quote) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	title := q.Title
	if title == "" {
		title = "Quote"
	}
	fmt.Fprintf(tw, "%s\n", title)
	fmt.Fprintf(tw, "%s\n\n", strings.Repeat("=", len(title)))
	fmt.Fprintf(tw, "Quote ID:\t%s\t\n", q.ID)
	fmt.Fprintf(tw, "Date:\t%s\t\n", q.CreatedAt.Format("2006-01-02 15:04"))
	if q.Material != "" {
		fmt.Fprintf(tw, "Material:\t%s\t\n", q.Material)
	}
	fmt.Fprintf(tw, "Area:\t%s sq ft\t\n", Money(q.Totals.AreaSqFt).StringFixed(2))
	fmt.Fprintf(tw, "Policy:\t%s\t\n\n", q.PolicyName)

	for _, l := range Breakdown(q) {
		fmt.Fprintf(tw, "%s:\t%s\t\n", l.Label, l)
	}

	return tw.Flush()
}

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Simplici0/slabquote/internal/export"
	"github.com/Simplici0/slabquote/internal/inventory"
)

func (a *app) inventoryCmd() *cobra.Command {
	var (
		filter   inventory.Filter
		mean     bool
		asJSON   bool
		xlsxPath string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "inventory <file|url>...",
		Short: "Group inventory lots by material",
		Long: `Read CSV or XLSX inventory files, or published sheet CSV URLs, and
print one row per material with stock, cost and unit cost.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := inventory.NewReader()
			fetcher := inventory.NewFetcher(&http.Client{Timeout: timeout}, a.log, 2*timeout)

			var lots []inventory.Lot
			for _, src := range args {
				var (
					batch []inventory.Lot
					err   error
				)
				if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
					batch, err = fetcher.Fetch(cmd.Context(), src)
				} else {
					batch, err = readInventoryFile(reader, src)
				}
				if err != nil {
					return err
				}
				lots = append(lots, batch...)
			}

			rep := inventory.RepresentativeFirst
			if mean {
				rep = inventory.RepresentativeMean
			}
			groups := inventory.FilterGroups(inventory.GroupLots(lots, rep), filter)

			if xlsxPath != "" {
				f, err := os.Create(xlsxPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", xlsxPath, err)
				}
				if err := export.InventoryXLSX(f, groups); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", xlsxPath, err)
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(groups)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MATERIAL\tON HAND\tUNIT COST\tLOTS\tLOCATIONS")
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					g.Name,
					export.Money(g.OnHandQty).StringFixed(2),
					export.Money(g.UnitCost).StringFixed(2),
					g.LotCount,
					strings.Join(g.Locations, ","))
			}
			return w.Flush()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&filter.Query, "query", "q", "", "substring of the material name")
	flags.StringVar(&filter.Brand, "brand", "", "exact brand")
	flags.StringVar(&filter.Thickness, "thickness", "", `exact thickness, e.g. "3cm"`)
	flags.BoolVar(&mean, "mean", false, "use the mean lot unit cost instead of the first lot")
	flags.BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	flags.StringVar(&xlsxPath, "xlsx", "", "also write the groups to this XLSX file")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout per inventory URL")

	return cmd
}

func readInventoryFile(reader *inventory.Reader, path string) ([]inventory.Lot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	defer f.Close()

	return reader.ReadFile(path, f)
}

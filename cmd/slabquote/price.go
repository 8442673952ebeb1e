package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Simplici0/slabquote/internal/export"
	"github.com/Simplici0/slabquote/internal/inventory"
	"github.com/Simplici0/slabquote/internal/pricing"
	"github.com/Simplici0/slabquote/internal/store"
)

func (a *app) priceCmd() *cobra.Command {
	var (
		req           pricing.Request
		title         string
		material      string
		inventoryFile string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a countertop job",
		Long: `Price a job from an explicit unit cost, or look the material up in an
inventory file and use its unit cost.`,
		Example: `  slabquote price --unit-cost 10 --area 35
  slabquote price --inventory stock.csv --material "Cambria Brittanicca (3cm)" --area 120 --discount=false`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.policy()
			if err != nil {
				return err
			}

			if material != "" {
				if inventoryFile == "" {
					return fmt.Errorf("--material requires --inventory")
				}
				g, err := findMaterial(inventoryFile, material)
				if err != nil {
					return err
				}
				material = g.Name
				if !cmd.Flags().Changed("unit-cost") {
					req.UnitCost = g.UnitCost
				}
			} else if !cmd.Flags().Changed("unit-cost") {
				return fmt.Errorf("either --unit-cost or --material is required")
			}

			res, err := pricing.Compute(req, p)
			if err != nil {
				return err
			}

			q := store.Quote{
				ID:         uuid.New().String(),
				CreatedAt:  time.Now().UTC(),
				Title:      title,
				Material:   material,
				PolicyName: p.Name,
				Request:    req,
				Totals:     res,
			}

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				return export.Text(out, q)
			case "csv":
				return export.CSV(out, q)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(q)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&req.UnitCost, "unit-cost", 0, "material cost per square foot")
	flags.Float64Var(&req.FinishedAreaSqFt, "area", 0, "finished countertop area in square feet")
	flags.Float64Var(&req.AccessoryCost, "accessory", 0, "accessory cost added after the discount")
	flags.BoolVar(&req.ApplyDiscount, "discount", true, "apply the policy volume discount")
	flags.StringVar(&title, "title", "", "quote title")
	flags.StringVar(&material, "material", "", `material name, e.g. "Cambria Brittanicca (3cm)"`)
	flags.StringVar(&inventoryFile, "inventory", "", "inventory CSV or XLSX file used to resolve --material")
	flags.StringVarP(&format, "format", "o", "text", "output format (text, csv, json)")
	_ = cmd.MarkFlagRequired("area")

	return cmd
}

func findMaterial(path, name string) (inventory.Group, error) {
	lots, err := readInventoryFile(inventory.NewReader(), path)
	if err != nil {
		return inventory.Group{}, err
	}
	g, ok := inventory.FindGroup(inventory.GroupLots(lots, inventory.RepresentativeFirst), name)
	if !ok {
		return inventory.Group{}, fmt.Errorf("material %q not found in %s", name, path)
	}
	return g, nil
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/slabquote/internal/variant"
)

func (a *app) parseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "parse [label...]",
		Short:   "Split inventory labels into brand, color, thickness and location",
		Long:    `Parse labels given as arguments, or one per line on stdin when none are given.`,
		Example: `  slabquote parse "17 - Cambria Brittanicca (ABB) 3cm"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			labels := args
			if len(labels) == 0 {
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					if line := strings.TrimSpace(sc.Text()); line != "" {
						labels = append(labels, line)
					}
				}
				if err := sc.Err(); err != nil {
					return fmt.Errorf("read labels: %w", err)
				}
			}

			variants := make([]variant.Variant, 0, len(labels))
			for _, label := range labels {
				variants = append(variants, variant.Parse(label))
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(variants)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BRAND\tCOLOR\tTHICKNESS\tLOCATION")
			for _, v := range variants {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.Brand, v.Color, v.Thickness, v.Location)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

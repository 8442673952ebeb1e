package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/slabquote/internal/pricing"
)

func (a *app) policiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List or show pricing policies",
	}
	cmd.AddCommand(a.listPoliciesCmd())
	cmd.AddCommand(a.showPolicyCmd())
	return cmd
}

func (a *app) listPoliciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and file policies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := a.policies()
			if err != nil {
				return err
			}

			policies := make([]pricing.Policy, 0, len(all))
			for _, p := range all {
				policies = append(policies, p)
			}
			sort.Slice(policies, func(i, j int) bool {
				if policies[i].Version != policies[j].Version {
					return policies[i].Version < policies[j].Version
				}
				return policies[i].Name < policies[j].Name
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tFAMILY\tWASTE\tTAX\tTIERS")
			for _, p := range policies {
				fmt.Fprintf(w, "%s\t%d\t%s\t%.2f\t%.2f\t%d\n", p.Name, p.Version, p.Family, p.WasteFactor, p.TaxRate, len(p.DiscountTiers))
			}
			return w.Flush()
		},
	}
}

func (a *app) showPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print one policy as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.v.Set("policy", args[0])
			}
			p, err := a.policy()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

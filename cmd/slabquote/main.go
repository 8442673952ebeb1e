package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Simplici0/slabquote/internal/config"
	"github.com/Simplici0/slabquote/internal/logger"
	"github.com/Simplici0/slabquote/internal/pricing"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "slabquote",
		Short: "Price clearance countertop slabs",
		Long: `slabquote prices clearance slab inventory for countertop jobs.

It parses inventory labels, groups lots by material and runs the pricing
engine under a named policy without needing the server.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	flags := root.PersistentFlags()
	flags.String("policy-file", "", "YAML, JSON or TOML file with extra pricing policies")
	flags.String("policy", pricing.DefaultPolicyName, "pricing policy name")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	_ = a.v.BindPFlag("policy_file", flags.Lookup("policy-file"))
	_ = a.v.BindPFlag("policy", flags.Lookup("policy"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(a.priceCmd())
	root.AddCommand(a.parseCmd())
	root.AddCommand(a.inventoryCmd())
	root.AddCommand(a.policiesCmd())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	a.v.SetEnvPrefix("SLABQUOTE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	log, err := logger.New(a.v.GetString("log.level"), a.v.GetString("log.format"))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.log = log
	return nil
}

// policies returns the built-in presets overlaid with the policy file.
func (a *app) policies() (map[string]pricing.Policy, error) {
	all := make(map[string]pricing.Policy)
	for _, p := range pricing.Presets() {
		all[p.Name] = p
	}

	if path := a.v.GetString("policy_file"); path != "" {
		loaded, err := config.LoadPolicies(path)
		if err != nil {
			return nil, err
		}
		for _, p := range loaded {
			all[p.Name] = p
		}
		a.log.Debug("policy file loaded", zap.String("path", path), zap.Int("policies", len(loaded)))
	}
	return all, nil
}

func (a *app) policy() (pricing.Policy, error) {
	all, err := a.policies()
	if err != nil {
		return pricing.Policy{}, err
	}

	name := a.v.GetString("policy")
	p, ok := all[name]
	if !ok {
		return pricing.Policy{}, fmt.Errorf("unknown policy %q (available: %s)", name, strings.Join(sortedNames(all), ", "))
	}
	return p, nil
}

func sortedNames(all map[string]pricing.Policy) []string {
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

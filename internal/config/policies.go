package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/Simplici0/slabquote/internal/pricing"
)

// LoadPolicies reads a policy file (YAML, JSON or TOML, picked by extension)
// with a top-level "policies" list. An entry may name a preset under "base"
// and override only the fields it lists.
func LoadPolicies(path string) ([]pricing.Policy, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	raw, ok := v.Get("policies").([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no policies list", pricing.ErrInvalidPolicy, path)
	}

	policies := make([]pricing.Policy, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: policies[%d] is not a table", pricing.ErrInvalidPolicy, i)
		}

		p, err := decodePolicy(m)
		if err != nil {
			return nil, fmt.Errorf("policies[%d]: %w", i, err)
		}
		policies = append(policies, p)
	}

	return policies, nil
}

func decodePolicy(m map[string]any) (pricing.Policy, error) {
	var p pricing.Policy
	if base, ok := m["base"].(string); ok && base != "" {
		preset, found := pricing.Preset(base)
		if !found {
			return p, fmt.Errorf("%w: unknown base preset %q", pricing.ErrInvalidPolicy, base)
		}
		p = preset
	}
	if _, ok := m["discount_tiers"]; ok {
		p.DiscountTiers = nil
	}

	sub := viper.New()
	if err := sub.MergeConfigMap(m); err != nil {
		return p, fmt.Errorf("merge policy: %w", err)
	}
	if err := sub.Unmarshal(&p); err != nil {
		return p, fmt.Errorf("decode policy: %w", err)
	}

	if p.Name == "" {
		return p, fmt.Errorf("%w: name is required", pricing.ErrInvalidPolicy)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("policy %s: %w", p.Name, err)
	}
	return p, nil
}

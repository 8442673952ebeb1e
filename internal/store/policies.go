package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/slabquote/internal/pricing"
)

// SavePolicy validates p and inserts or replaces it by name.
func (s *Store) SavePolicy(ctx context.Context, p pricing.Policy) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", pricing.ErrInvalidPolicy)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode policy %s: %w", p.Name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pricing_policies (name, version, family, policy_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			family = excluded.family,
			policy_json = excluded.policy_json,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
	`, p.Name, p.Version, string(p.Family), string(raw))
	if err != nil {
		return fmt.Errorf("upsert policy %s: %w", p.Name, err)
	}
	return nil
}

// PolicyExists reports whether a policy named name is stored.
func (s *Store) PolicyExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM pricing_policies WHERE name = ? LIMIT 1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check policy %s: %w", name, err)
	}
	return exists, nil
}

// GetPolicy loads a policy by name.
func (s *Store) GetPolicy(ctx context.Context, name string) (pricing.Policy, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT policy_json FROM pricing_policies WHERE name = ?`, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.Policy{}, fmt.Errorf("policy %s: %w", name, ErrNotFound)
		}
		return pricing.Policy{}, fmt.Errorf("query policy %s: %w", name, err)
	}

	var p pricing.Policy
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return pricing.Policy{}, fmt.Errorf("decode policy %s: %w", name, err)
	}
	return p, nil
}

// ListPolicies returns every stored policy ordered by version, then name.
func (s *Store) ListPolicies(ctx context.Context) ([]pricing.Policy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT policy_json
		FROM pricing_policies
		ORDER BY version, name
	`)
	if err != nil {
		return nil, fmt.Errorf("query policies: %w", err)
	}
	defer rows.Close()

	policies := make([]pricing.Policy, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		var p pricing.Policy
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode policy: %w", err)
		}
		policies = append(policies, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate policies: %w", err)
	}

	return policies, nil
}

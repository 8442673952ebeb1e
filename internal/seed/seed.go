package seed

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/slabquote/internal/pricing"
)

// Config contains the values required by startup seed.
type Config struct {
	// Policies come from a policy file and override stored rows of the same name.
	Policies []pricing.Policy
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way: built-in presets are
// inserted when missing, configured policies are inserted or updated.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	for _, p := range pricing.Presets() {
		if err := ensurePolicy(tx, p, false, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}
	for _, p := range cfg.Policies {
		if err := ensurePolicy(tx, p, true, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensurePolicy(tx *sql.Tx, p pricing.Policy, overwrite bool, stats *Stats) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("seed policy %s: %w", p.Name, err)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode policy %s: %w", p.Name, err)
	}

	var current string
	err = tx.QueryRow(`SELECT policy_json FROM pricing_policies WHERE name = ?`, p.Name).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec(`
			INSERT INTO pricing_policies (name, version, family, policy_json)
			VALUES (?, ?, ?, ?)
		`, p.Name, p.Version, string(p.Family), string(raw)); err != nil {
			return fmt.Errorf("insert policy %s: %w", p.Name, err)
		}
		stats.Inserts++
		return nil
	case err != nil:
		return fmt.Errorf("check policy %s existence: %w", p.Name, err)
	}

	if !overwrite || current == string(raw) {
		return nil
	}

	if _, err := tx.Exec(`
		UPDATE pricing_policies
		SET
			version = ?,
			family = ?,
			policy_json = ?,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE name = ?
	`, p.Version, string(p.Family), string(raw), p.Name); err != nil {
		return fmt.Errorf("update policy %s: %w", p.Name, err)
	}
	stats.Updates++
	return nil
}

package store

import (
	"context"
	"fmt"

	"github.com/Simplici0/slabquote/internal/inventory"
)

// ReplaceLots swaps the whole inventory for lots in one transaction.
func (s *Store) ReplaceLots(ctx context.Context, source string, lots []inventory.Lot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace lots: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_lots`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear inventory lots: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory_lots (raw_label, brand, color, thickness, location, on_hand_qty, total_cost, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare lot insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range lots {
		if _, err := stmt.ExecContext(ctx, l.RawLabel, l.Brand, l.Color, l.Thickness, l.Location, l.OnHandQty, l.TotalCost, source); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert lot %q: %w", l.RawLabel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace lots: %w", err)
	}
	return nil
}

// ListLots returns lots in the order they were loaded.
func (s *Store) ListLots(ctx context.Context) ([]inventory.Lot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT raw_label, brand, color, thickness, location, on_hand_qty, total_cost
		FROM inventory_lots
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query inventory lots: %w", err)
	}
	defer rows.Close()

	lots := make([]inventory.Lot, 0)
	for rows.Next() {
		var l inventory.Lot
		if err := rows.Scan(&l.RawLabel, &l.Brand, &l.Color, &l.Thickness, &l.Location, &l.OnHandQty, &l.TotalCost); err != nil {
			return nil, fmt.Errorf("scan inventory lot: %w", err)
		}
		lots = append(lots, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory lots: %w", err)
	}

	return lots, nil
}

// CountLots reports how many lots are loaded.
func (s *Store) CountLots(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_lots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count inventory lots: %w", err)
	}
	return n, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/slabquote/internal/pricing"
)

// Quote is a priced snapshot. Totals are stored as computed and never
// recalculated on read.
type Quote struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	Title      string          `json:"title"`
	Material   string          `json:"material"`
	PolicyName string          `json:"policy_name"`
	Request    pricing.Request `json:"request"`
	Totals     pricing.Result  `json:"totals"`
}

// QuoteListItem is the summary row for quote listings.
type QuoteListItem struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Title        string    `json:"title"`
	Material     string    `json:"material"`
	PolicyName   string    `json:"policy_name"`
	TotalWithTax float64   `json:"total_with_tax"`
}

// CreateQuote stores q. ID and CreatedAt must be set by the caller.
func (s *Store) CreateQuote(ctx context.Context, q Quote) error {
	reqJSON, err := json.Marshal(q.Request)
	if err != nil {
		return fmt.Errorf("encode quote request: %w", err)
	}
	totalsJSON, err := json.Marshal(q.Totals)
	if err != nil {
		return fmt.Errorf("encode quote totals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, created_at, title, material, policy_name, request_json, totals_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.CreatedAt.UTC().Format(timeLayout), q.Title, q.Material, q.PolicyName, string(reqJSON), string(totalsJSON))
	if err != nil {
		return fmt.Errorf("insert quote %s: %w", q.ID, err)
	}
	return nil
}

// GetQuote loads the snapshot stored under id.
func (s *Store) GetQuote(ctx context.Context, id string) (Quote, error) {
	var (
		q          Quote
		createdAt  string
		reqJSON    string
		totalsJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, title, material, policy_name, request_json, totals_json
		FROM quotes
		WHERE id = ?
	`, id).Scan(&q.ID, &createdAt, &q.Title, &q.Material, &q.PolicyName, &reqJSON, &totalsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quote{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
		}
		return Quote{}, fmt.Errorf("query quote %s: %w", id, err)
	}

	if q.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Quote{}, fmt.Errorf("parse quote created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(reqJSON), &q.Request); err != nil {
		return Quote{}, fmt.Errorf("decode quote request: %w", err)
	}
	if err := json.Unmarshal([]byte(totalsJSON), &q.Totals); err != nil {
		return Quote{}, fmt.Errorf("decode quote totals: %w", err)
	}
	return q, nil
}

// ListQuotes returns quotes newest first, optionally filtered by a
// substring of the title or material.
func (s *Store) ListQuotes(ctx context.Context, query string) ([]QuoteListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, title, material, policy_name, totals_json
		FROM quotes
		WHERE (? = '' OR title LIKE ? OR material LIKE ?)
		ORDER BY created_at DESC, rowid DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]QuoteListItem, 0)
	for rows.Next() {
		var (
			item       QuoteListItem
			createdAt  string
			totalsJSON string
		)
		if err := rows.Scan(&item.ID, &createdAt, &item.Title, &item.Material, &item.PolicyName, &totalsJSON); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		if item.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse quote created_at: %w", err)
		}
		item.TotalWithTax = extractTotal(totalsJSON)
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

func extractTotal(totalsJSON string) float64 {
	var totals struct {
		TotalWithTax float64 `json:"total_with_tax"`
	}
	if err := json.Unmarshal([]byte(totalsJSON), &totals); err != nil {
		return 0
	}
	return totals.TotalWithTax
}

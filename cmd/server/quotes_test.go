package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Simplici0/slabquote/internal/pricing"
	"github.com/Simplici0/slabquote/internal/store"
)

func TestListQuotesOrdersByDateDescAndReadsTotal(t *testing.T) {
	srv := newTestServer(t)

	seedQuote(t, srv, "a", "2024-01-01T10:00:00Z", "Primary bath", "Silestone Lagoon (2cm)", 100.50)
	seedQuote(t, srv, "c", "2024-01-03T12:00:00Z", "Kitchen", "Cambria Brittanicca (3cm)", 300.00)
	seedQuote(t, srv, "b", "2024-01-02T11:00:00Z", "Laundry", "Cambria Skara Brae (3cm)", 200.25)

	rr := doJSON(t, srv.routes(), http.MethodGet, "/quotes", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	quotes := decodeBody[[]store.QuoteListItem](t, rr)

	if len(quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(quotes))
	}

	if quotes[0].Title != "Kitchen" || quotes[1].Title != "Laundry" || quotes[2].Title != "Primary bath" {
		t.Fatalf("quotes are not sorted desc by created_at: %+v", quotes)
	}

	if quotes[0].TotalWithTax != 300.00 || quotes[1].TotalWithTax != 200.25 || quotes[2].TotalWithTax != 100.50 {
		t.Fatalf("unexpected totals: %+v", quotes)
	}
}

func TestListQuotesFilterByTitleAndMaterial(t *testing.T) {
	srv := newTestServer(t)

	seedQuote(t, srv, "a", "2024-01-01T10:00:00Z", "Cambria showroom", "Silestone Lagoon (2cm)", 80)
	seedQuote(t, srv, "b", "2024-01-02T10:00:00Z", "Vanity", "Dekton Aura (2cm)", 120)
	seedQuote(t, srv, "c", "2024-01-03T10:00:00Z", "Island", "Cambria Brittanicca (3cm)", 160)

	h := srv.routes()

	byTitle := decodeBody[[]store.QuoteListItem](t, doJSON(t, h, http.MethodGet, "/quotes?q=Vani", nil))
	if len(byTitle) != 1 || byTitle[0].Title != "Vanity" {
		t.Fatalf("expected 1 quote filtered by title, got %+v", byTitle)
	}

	byMaterial := decodeBody[[]store.QuoteListItem](t, doJSON(t, h, http.MethodGet, "/quotes?q=cambria", nil))
	if len(byMaterial) != 2 {
		t.Fatalf("expected 2 quotes filtered by material/title, got %+v", byMaterial)
	}
}

func seedQuote(t *testing.T, srv *server, id, createdAt, title, material string, total float64) {
	t.Helper()

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}

	err = srv.store.CreateQuote(context.Background(), store.Quote{
		ID:         id,
		CreatedAt:  ts,
		Title:      title,
		Material:   material,
		PolicyName: pricing.DefaultPolicyName,
		Totals:     pricing.Result{TotalWithTax: total},
	})
	if err != nil {
		t.Fatalf("failed to seed quote: %v", err)
	}
}

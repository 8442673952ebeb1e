package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/slabquote/internal/export"
	"github.com/Simplici0/slabquote/internal/pricing"
	"github.com/Simplici0/slabquote/internal/quoting"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.store.ListQuotes(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQuoteRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.quotes.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.RecordQuote(q.PolicyName, string(q.Totals.Family))
	s.log.Info("quote created",
		zap.String("quote_id", q.ID),
		zap.String("policy", q.PolicyName),
		zap.Float64("total_with_tax", q.Totals.TotalWithTax))

	w.Header().Set("Location", "/quotes/"+q.ID)
	writeJSON(w, http.StatusCreated, q)
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := export.Text(w, q); err != nil {
		s.log.Error("render quote text", zap.String("quote_id", q.ID), zap.Error(err))
	}
}

func (s *server) handleQuoteCSV(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%s.csv"`, q.ID))
	if err := export.CSV(w, q); err != nil {
		s.log.Error("render quote csv", zap.String("quote_id", q.ID), zap.Error(err))
	}
}

func (s *server) handleQuoteXLSX(w http.ResponseWriter, r *http.Request) {
	q, err := s.store.GetQuote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%s.xlsx"`, q.ID))
	if err := export.QuoteXLSX(w, q); err != nil {
		s.log.Error("render quote xlsx", zap.String("quote_id", q.ID), zap.Error(err))
	}
}

// decodeQuoteRequest accepts a JSON body or an urlencoded form.
func decodeQuoteRequest(r *http.Request) (quoting.Request, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return quoting.Request{}, fmt.Errorf("%w: invalid form", errBadRequest)
		}
		return parseQuoteForm(r)
	}

	var req quoting.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return quoting.Request{}, fmt.Errorf("%w: decode quote request: %v", errBadRequest, err)
	}
	return req, nil
}

func parseQuoteForm(r *http.Request) (quoting.Request, error) {
	req := quoting.Request{
		Title:         strings.TrimSpace(r.FormValue("title")),
		Material:      strings.TrimSpace(r.FormValue("material")),
		Policy:        strings.TrimSpace(r.FormValue("policy")),
		ApplyDiscount: parseCheckbox(r.FormValue("apply_discount")),
	}

	var err error
	if req.FinishedAreaSqFt, err = parsePositiveFloat(r.FormValue("finished_area_sqft"), "finished_area_sqft"); err != nil {
		return req, err
	}
	if raw := strings.TrimSpace(r.FormValue("accessory_cost")); raw != "" {
		if req.AccessoryCost, err = parseNonNegativeFloat(raw, "accessory_cost"); err != nil {
			return req, err
		}
	}
	if raw := strings.TrimSpace(r.FormValue("unit_cost")); raw != "" {
		cost, err := parseNonNegativeFloat(raw, "unit_cost")
		if err != nil {
			return req, err
		}
		req.UnitCost = &cost
	}

	if req.Material == "" && req.UnitCost == nil {
		return req, fmt.Errorf("%w: material or unit_cost is required", pricing.ErrInvalidInput)
	}
	return req, nil
}

// parseCheckbox returns nil for an absent value so the discount default
// applies.
func parseCheckbox(raw string) *bool {
	var on bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return nil
	case "1", "true", "on", "yes":
		on = true
	}
	return &on
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be numeric", pricing.ErrInvalidInput, field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %s must be greater than or equal to 0", pricing.ErrInvalidInput, field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be numeric", pricing.ErrInvalidInput, field)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: %s must be greater than 0", pricing.ErrInvalidInput, field)
	}
	return value, nil
}

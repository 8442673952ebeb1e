package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/slabquote/internal/pricing"
)

func (s *server) handlePoliciesList(w http.ResponseWriter, r *http.Request) {
	policies, err := s.store.ListPolicies(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, policies)
}

func (s *server) handlePolicyGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPolicy(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handlePolicyPut(w http.ResponseWriter, r *http.Request) {
	var p pricing.Policy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: decode policy: %v", errBadRequest, err))
		return
	}
	p.Name = chi.URLParam(r, "name")

	if err := s.store.SavePolicy(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("policy saved", zap.String("policy", p.Name), zap.String("family", string(p.Family)))
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handlePrice(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQuoteRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q, err := s.quotes.Price(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.RecordQuote(q.PolicyName, string(q.Totals.Family))
	writeJSON(w, http.StatusOK, q.Totals)
}

package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/slabquote/internal/inventory"
	"github.com/Simplici0/slabquote/internal/logger"
	"github.com/Simplici0/slabquote/internal/pricing"
	"github.com/Simplici0/slabquote/internal/quoting"
	"github.com/Simplici0/slabquote/internal/store"
)

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes and counts rejected input.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	reason := ""
	switch {
	case errors.Is(err, pricing.ErrInvalidInput):
		status, reason = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, pricing.ErrInvalidPolicy):
		status, reason = http.StatusBadRequest, "invalid_policy"
	case errors.Is(err, inventory.ErrMissingColumn), errors.Is(err, inventory.ErrUnsupportedFormat):
		status, reason = http.StatusBadRequest, "invalid_inventory"
	case errors.Is(err, errBadRequest):
		status, reason = http.StatusBadRequest, "bad_request"
	case errors.Is(err, quoting.ErrUnknownMaterial), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}

	if reason != "" {
		s.metrics.RecordInvalid(reason)
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("request_id", logger.RequestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

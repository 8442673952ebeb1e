package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/slabquote/internal/export"
	"github.com/Simplici0/slabquote/internal/inventory"
	"github.com/Simplici0/slabquote/internal/metrics"
)

const maxUploadBytes = 32 << 20

type inventorySummary struct {
	Lots    int      `json:"lots"`
	Groups  int      `json:"groups"`
	Skipped []string `json:"skipped_sources,omitempty"`
}

func (s *server) handleInventoryList(w http.ResponseWriter, r *http.Request) {
	groups, err := s.quotes.Groups(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	groups = inventory.FilterGroups(groups, inventory.Filter{
		Query:     q.Get("q"),
		Thickness: q.Get("thickness"),
		Brand:     q.Get("brand"),
	})
	writeJSON(w, http.StatusOK, groups)
}

func (s *server) handleInventoryUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: invalid multipart form: %v", errBadRequest, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: file is required", errBadRequest))
		return
	}
	defer file.Close()

	lots, err := s.reader.ReadFile(header.Filename, file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.replaceInventory(r.Context(), "upload:"+header.Filename, lots)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("inventory uploaded", zap.String("file", header.Filename), zap.Int("lots", summary.Lots))
	writeJSON(w, http.StatusOK, summary)
}

func (s *server) handleInventoryRefresh(w http.ResponseWriter, r *http.Request) {
	if len(s.sources) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: no inventory sources configured", errBadRequest))
		return
	}

	summary, err := s.refreshInventory(r.Context())
	if err != nil {
		s.log.Error("inventory refresh failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "all inventory sources failed"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// refreshInventory pulls every configured source and replaces the stored lots.
func (s *server) refreshInventory(ctx context.Context) (inventorySummary, error) {
	res, err := s.fetcher.FetchAll(ctx, s.sources)
	if err != nil {
		s.metrics.RecordRefresh(metrics.RefreshFailed, 0)
		return inventorySummary{}, err
	}

	summary, err := s.replaceInventory(ctx, "refresh:"+strings.Join(s.sources, ","), res.Lots)
	if err != nil {
		s.metrics.RecordRefresh(metrics.RefreshFailed, 0)
		return inventorySummary{}, err
	}
	summary.Skipped = res.Failed

	outcome := metrics.RefreshOK
	if res.Partial() {
		outcome = metrics.RefreshPartial
	}
	s.metrics.RecordRefresh(outcome, summary.Lots)
	s.log.Info("inventory refreshed", zap.String("outcome", outcome), zap.Int("lots", summary.Lots))
	return summary, nil
}

func (s *server) replaceInventory(ctx context.Context, source string, lots []inventory.Lot) (inventorySummary, error) {
	if err := s.store.ReplaceLots(ctx, source, lots); err != nil {
		return inventorySummary{}, err
	}
	s.metrics.InventoryLots.Set(float64(len(lots)))

	groups, err := s.quotes.Groups(ctx)
	if err != nil {
		return inventorySummary{}, err
	}
	return inventorySummary{Lots: len(lots), Groups: len(groups)}, nil
}

func (s *server) handleInventoryExport(w http.ResponseWriter, r *http.Request) {
	groups, err := s.quotes.Groups(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	if err := export.InventoryXLSX(w, groups); err != nil {
		s.log.Error("inventory export failed", zap.Error(err))
	}
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	m := New("test")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/quotes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/quotes/"+id, nil))
	}

	got := testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/quotes/{id}", "404"))
	assert.Equal(t, 2.0, got)
}

func TestRecorders(t *testing.T) {
	m := New("test")

	m.RecordQuote("ib-floor-v2", "ib_floor")
	m.RecordQuote("ib-floor-v2", "ib_floor")
	m.RecordInvalid("invalid_input")
	m.RecordRefresh(RefreshOK, 12)
	m.RecordRefresh(RefreshFailed, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QuotesComputed.WithLabelValues("ib-floor-v2", "ib_floor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvalidInputs.WithLabelValues("invalid_input")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.InventoryLots), "failed refresh keeps the last gauge value")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InventoryRefreshes.WithLabelValues(RefreshFailed)))
}

func TestHandlerExposesPrefixedMetrics(t *testing.T) {
	m := New("slabquote")
	m.RecordQuote("markup-v1", "markup")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `slabquote_quotes_computed_total{family="markup",policy="markup-v1"} 1`)
}

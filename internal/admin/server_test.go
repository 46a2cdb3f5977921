package admin

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/history"
	"exchange-latency-sim/internal/observability"
	"exchange-latency-sim/internal/sim"
	"exchange-latency-sim/internal/snapshot"
	"exchange-latency-sim/internal/stream"
	"exchange-latency-sim/internal/telemetry"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	cat, err := catalog.Default().Subset([]string{"binance-singapore", "okx-hongkong", "kraken-london"})
	require.NoError(t, err)
	gen := snapshot.NewGenerator(rand.New(rand.NewSource(1)), snapshot.DefaultOptions())
	st := stream.New(gen, cat.Exchanges(), cat.Regions(), 20*time.Millisecond)
	t.Cleanup(st.Close)
	s := sim.NewSimulator(gen, st, nil, nil)
	opts.Catalog = cat
	if opts.History == nil {
		opts.History = history.NewGenerator(rand.New(rand.NewSource(2)), history.WithResolver(cat))
	}
	return NewServer(s, opts)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestExchangesAndRegions(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	rec := do(t, h, http.MethodGet, "/api/exchanges", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var exs []catalog.Exchange
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exs))
	assert.Len(t, exs, 3)

	rec = do(t, h, http.MethodGet, "/api/exchanges?provider=AWS", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exs))
	require.Len(t, exs, 1)
	assert.Equal(t, "binance-singapore", exs[0].ID)

	rec = do(t, h, http.MethodGet, "/api/exchanges?provider=nope", "")
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/regions?provider=GCP", "")
	var rgs []catalog.CloudRegion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rgs))
	for _, r := range rgs {
		assert.Equal(t, catalog.ProviderGCP, r.Provider)
	}
}

func TestSnapshotGeneratedOnDemand(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()
	rec := do(t, h, http.MethodGet, "/api/snapshot?exchanges=kraken-london", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap telemetry.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.NotEmpty(t, snap.ID)
	require.NotEmpty(t, snap.Records)
	for _, r := range snap.Records {
		assert.True(t, r.From == "kraken-london" || r.To == "kraken-london", "unexpected record %s -> %s", r.From, r.To)
	}
}

func TestHistory(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	rec := do(t, h, http.MethodGet, "/api/history?range=1h&pairs=binance-singapore-okx-hongkong,bogus", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, history.Range1h, resp.Range)
	assert.Len(t, resp.Points, 60)
	assert.Equal(t, []string{"bogus"}, resp.Skipped)

	rec = do(t, h, http.MethodGet, "/api/history?range=1h&pairs=binance-singapore-okx-hongkong&points=5", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Points, 5)

	rec = do(t, h, http.MethodGet, "/api/history?range=2y", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/history?range=1h&points=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/history?range=1h&points=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryAppliesInjectedEvents(t *testing.T) {
	later := func() time.Time { return time.Now().Add(2 * time.Hour) }
	newHist := func() *history.Generator {
		cat, err := catalog.Default().Subset([]string{"binance-singapore", "okx-hongkong", "kraken-london"})
		require.NoError(t, err)
		return history.NewGenerator(rand.New(rand.NewSource(7)), history.WithResolver(cat), history.WithClock(later))
	}
	const target = "/api/history?range=1h&pairs=binance-singapore-okx-hongkong"
	total := func(h http.Handler) float64 {
		rec := do(t, h, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp historyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Points, 60)
		sum := 0.0
		for _, p := range resp.Points {
			sum += p.Latency
		}
		return sum
	}

	baseline := total(newTestServer(t, Options{History: newHist()}).Handler())

	h := newTestServer(t, Options{History: newHist()}).Handler()
	rec := do(t, h, http.MethodPost, "/api/events", `{"type":"outage","severity":"high","affectedExchanges":["okx-hongkong"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Greater(t, total(h), baseline)
}

func TestInjectAndResolveEvent(t *testing.T) {
	s := newTestServer(t, Options{})
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/events", `{"type":"outage","severity":"high","affectedExchanges":["okx-hongkong"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ev telemetry.NetworkEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, telemetry.EventOutage, ev.Type)
	assert.Nil(t, ev.EndTime)

	rec = do(t, h, http.MethodGet, "/api/events", "")
	var evs []telemetry.NetworkEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &evs))
	require.Len(t, evs, 1)

	rec = do(t, h, http.MethodDelete, "/api/events/"+ev.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/events/"+ev.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInjectEventRejectsBadInput(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()
	for _, body := range []string{
		`not json`,
		`{"type":"flood","severity":"high","affectedExchanges":["okx-hongkong"]}`,
		`{"type":"outage","severity":"high","affectedExchanges":[]}`,
		`{"type":"outage","severity":"high","affectedExchanges":["mtgox-tokyo"]}`,
	} {
		rec := do(t, h, http.MethodPost, "/api/events", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestProvidersAndStatus(t *testing.T) {
	s := newTestServer(t, Options{Report: catalog.Report{Exchanges: catalog.BatchResult{ValidCount: 3, InvalidCount: 1}}})
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/providers", "")
	var stats []ProviderStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 3)
	total := 0
	for _, st := range stats {
		assert.Equal(t, 1, st.Exchanges, st.Provider)
		if st.Connections > 0 {
			assert.Greater(t, st.AverageLatency, 0.0)
		}
		total += st.Connections
	}
	assert.Positive(t, total)

	rec = do(t, h, http.MethodGet, "/api/validation", "")
	var rep catalog.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 1, rep.Exchanges.InvalidCount)

	rec = do(t, h, http.MethodGet, "/api/status", "")
	var st sim.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, stream.StateIdle, st.State)
	assert.Equal(t, "20ms", st.Interval)
}

func TestExport(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()

	rec := do(t, h, http.MethodGet, "/api/export?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "latency-data-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Exchange Latency Export"))

	rec = do(t, h, http.MethodGet, "/api/export?format=json&metadata=false", "")
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc, "data")
	assert.NotContains(t, doc, "metadata")

	rec = do(t, h, http.MethodGet, "/api/export?format=geojson", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FeatureCollection")

	rec = do(t, h, http.MethodGet, "/api/export?kind=historical&format=csv&range=1h", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "historical-latency-1h-")

	rec = do(t, h, http.MethodGet, "/api/export?kind=report&range=24h", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "recommendations")

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/export?format=xml", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/export?kind=other", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/export?kind=historical&format=geojson", "").Code)
}

func TestIndexPage(t *testing.T) {
	h := newTestServer(t, Options{}).Handler()
	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kraken-london")
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/missing", "").Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, Options{RateLimit: 0.001, Burst: 2}).Handler()
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/status", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/status", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api/status", "").Code)
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewCollector(reg)
	require.NoError(t, err)
	h := newTestServer(t, Options{Metrics: m}).Handler()

	do(t, h, http.MethodGet, "/api/status", "")
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `latency_api_requests_total{code="200",route="/api/status"} 1`)
}

func TestWebSocketFeed(t *testing.T) {
	s := newTestServer(t, Options{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "snapshot", msg.Type)
	assert.NotEmpty(t, msg.Data.Records)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, stream.StateStreaming, s.Sim.Stream().State())

	conn.Close()
	assert.Eventually(t, func() bool { return s.Sim.Stream().SubscriberCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

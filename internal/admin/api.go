package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/export"
	"exchange-latency-sim/internal/history"
	"exchange-latency-sim/internal/telemetry"
)

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) handleExchanges(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var exs []catalog.Exchange
	switch {
	case q.Get("provider") != "":
		exs = s.cat.ExchangesByProvider(catalog.Provider(q.Get("provider")))
	case q.Get("region") != "":
		exs = s.cat.ExchangesByRegion(q.Get("region"))
	default:
		exs = s.cat.Exchanges()
	}
	if exs == nil {
		exs = []catalog.Exchange{}
	}
	writeJSON(w, http.StatusOK, exs)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	rgs := s.cat.Regions()
	if p := r.URL.Query().Get("provider"); p != "" {
		rgs = s.cat.RegionsByProvider(catalog.Provider(p))
	}
	if rgs == nil {
		rgs = []catalog.CloudRegion{}
	}
	writeJSON(w, http.StatusOK, rgs)
}

// currentSnapshot returns the simulator's latest snapshot, generating one on
// demand before the first tick.
func (s *Server) currentSnapshot() telemetry.Snapshot {
	if snap, ok := s.Sim.Latest(); ok {
		return snap
	}
	if snap, ok := s.Sim.Stream().Latest(); ok {
		return snap
	}
	exs, rgs := s.Sim.Stream().Sources()
	return s.Sim.Generator().Generate(exs, rgs)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.currentSnapshot()
	if ids := splitList(r.URL.Query().Get("exchanges")); len(ids) > 0 {
		snap.Records = export.FilterRecords(snap.Records, ids)
	}
	if snap.Records == nil {
		snap.Records = []telemetry.LatencyRecord{}
	}
	writeJSON(w, http.StatusOK, snap)
}

type historyResponse struct {
	Range   history.TimeRange           `json:"range"`
	Points  []telemetry.HistoricalPoint `json:"points"`
	Skipped []string                    `json:"skipped,omitempty"`
}

func (s *Server) generateHistory(r *http.Request) (historyResponse, error) {
	q := r.URL.Query()
	tr := history.TimeRange(q.Get("range"))
	if tr == "" {
		tr = history.Range24h
	}
	pairs := splitList(q.Get("pairs"))
	if len(pairs) == 0 {
		pairs = s.pairs
	}
	if len(pairs) == 0 {
		pairs = telemetry.PairKeys(history.PopularPairs())
	}

	s.histMu.Lock()
	defer s.histMu.Unlock()
	if s.hist == nil {
		s.hist = history.NewGenerator(rand.New(rand.NewSource(rand.Int63())), history.WithResolver(s.cat))
	}
	history.WithEvents(s.Sim.Events())(s.hist)
	var (
		pts  []telemetry.HistoricalPoint
		diag history.Diagnostics
		err  error
	)
	if p := q.Get("points"); p != "" {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return historyResponse{}, fmt.Errorf("%w: %q", history.ErrPointCount, p)
		}
		pts, diag, err = s.hist.Generate(pairs, tr, n)
	} else {
		pts, diag, err = s.hist.GenerateRange(pairs, tr)
	}
	if err != nil {
		return historyResponse{}, err
	}
	if pts == nil {
		pts = []telemetry.HistoricalPoint{}
	}
	return historyResponse{Range: tr, Points: pts, Skipped: diag.Skipped}, nil
}

func historyStatus(err error) int {
	if errors.Is(err, history.ErrUnknownRange) || errors.Is(err, history.ErrPointCount) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.generateHistory(r)
	if err != nil {
		writeError(w, historyStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	evs := s.Sim.Events()
	if evs == nil {
		evs = []telemetry.NetworkEvent{}
	}
	writeJSON(w, http.StatusOK, evs)
}

type injectRequest struct {
	Type        telemetry.EventType `json:"type"`
	Severity    telemetry.Severity  `json:"severity"`
	AffectedIDs []string            `json:"affectedExchanges"`
}

func (s *Server) handleInjectEvent(w http.ResponseWriter, r *http.Request) {
	var req injectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	for _, id := range req.AffectedIDs {
		if !s.cat.Has(id) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown exchange or region %q", id))
			return
		}
	}
	ev, err := s.Sim.InjectIncident(req.Type, req.Severity, req.AffectedIDs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Info("incident injected", "id", ev.ID, "type", ev.Type, "severity", ev.Severity, "affected", ev.AffectedIDs)
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleResolveEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.Sim.ResolveIncident(id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("event %q not found", id))
		return
	}
	s.log.Info("incident resolved", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ProviderStats summarises one cloud provider over the catalog and the
// latest snapshot.
type ProviderStats struct {
	Provider       catalog.Provider `json:"provider"`
	Exchanges      int              `json:"exchanges"`
	Regions        int              `json:"regions"`
	Connections    int              `json:"connections"`
	AverageLatency float64          `json:"averageLatency"`
}

func (s *Server) providerStats(records []telemetry.LatencyRecord) []ProviderStats {
	var out []ProviderStats
	for _, p := range []catalog.Provider{catalog.ProviderAWS, catalog.ProviderGCP, catalog.ProviderAzure} {
		st := ProviderStats{
			Provider:  p,
			Exchanges: len(s.cat.ExchangesByProvider(p)),
			Regions:   len(s.cat.RegionsByProvider(p)),
		}
		var sum float64
		for _, rec := range records {
			if ex, ok := s.cat.ExchangeByID(rec.From); ok && ex.CloudProvider == p {
				st.Connections++
				sum += rec.Latency
			}
		}
		if st.Connections > 0 {
			st.AverageLatency = sum / float64(st.Connections)
		}
		out = append(out, st)
	}
	return out
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.providerStats(s.currentSnapshot().Records))
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Status())
}

// handleExport streams the current snapshot, a historical series or an
// analysis report as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ids := splitList(q.Get("exchanges"))
	now := time.Now()
	opts := export.Options{
		Now:       func() time.Time { return now },
		Metadata:  q.Get("metadata") != "false",
		Exchanges: s.cat.Exchanges(),
		Regions:   s.cat.Regions(),
	}
	records := export.FilterRecords(s.currentSnapshot().Records, ids)

	kind := q.Get("kind")
	switch kind {
	case "", "current":
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(false, "", format, now))
		switch format {
		case export.FormatCSV:
			err = export.RecordsCSV(w, records, opts)
		case export.FormatGeoJSON:
			err = export.WriteGeoJSON(w, opts.Exchanges, opts.Regions, records)
		default:
			err = export.RecordsJSON(w, records, opts)
		}
	case "historical", "report":
		resp, herr := s.generateHistory(r)
		if herr != nil {
			writeError(w, historyStatus(herr), herr.Error())
			return
		}
		points := export.FilterHistory(resp.Points, ids, time.Time{})
		if kind == "report" {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Disposition", "attachment; filename=latency-report-"+now.UTC().Format("2006-01-02")+".json")
			err = export.WriteReport(w, export.BuildReport(records, points, resp.Range, opts))
			break
		}
		if format == export.FormatGeoJSON {
			writeError(w, http.StatusBadRequest, "geojson export is only available for current data")
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename(true, resp.Range, format, now))
		if format == export.FormatCSV {
			err = export.HistoryCSV(w, points, opts)
		} else {
			err = export.HistoryJSON(w, points, opts)
		}
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export kind %q", kind))
		return
	}
	if err != nil {
		s.log.Error("export failed", "kind", kind, "format", format, "err", err)
	}
}

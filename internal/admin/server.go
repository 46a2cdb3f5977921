// Package admin serves the HTTP API, status page, live WebSocket feed and
// Prometheus metrics for a running simulator.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"exchange-latency-sim/internal/catalog"
	"exchange-latency-sim/internal/history"
	"exchange-latency-sim/internal/observability"
	"exchange-latency-sim/internal/sim"
)

//go:embed templates/index.html
var content embed.FS

// Options configure a Server. Zero values fall back to defaults.
type Options struct {
	Catalog *catalog.Catalog
	Report  catalog.Report
	History *history.Generator
	// Pairs are the history pair keys used when a request names none.
	Pairs     []string
	Metrics   *observability.Collector
	RateLimit float64
	Burst     int
	Logger    *slog.Logger
}

type Server struct {
	Sim *sim.Simulator

	cat      *catalog.Catalog
	report   catalog.Report
	histMu   sync.Mutex
	hist     *history.Generator
	pairs    []string
	metrics  *observability.Collector
	limiter  *RateLimiter
	log      *slog.Logger
	tpl      *template.Template
	upgrader websocket.Upgrader
}

func NewServer(sim *sim.Simulator, opts Options) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.Burst < 1 {
		opts.Burst = 40
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		Sim:     sim,
		cat:     opts.Catalog,
		report:  opts.Report,
		hist:    opts.History,
		pairs:   opts.Pairs,
		metrics: opts.Metrics,
		limiter: NewRateLimiter(opts.RateLimit, opts.Burst),
		log:     opts.Logger,
		tpl:     tpl,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the routed handler. API routes are rate limited per client
// and counted in the request metric.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	s.api(mux, "GET /api/exchanges", "/api/exchanges", s.handleExchanges)
	s.api(mux, "GET /api/regions", "/api/regions", s.handleRegions)
	s.api(mux, "GET /api/snapshot", "/api/snapshot", s.handleSnapshot)
	s.api(mux, "GET /api/history", "/api/history", s.handleHistory)
	s.api(mux, "GET /api/events", "/api/events", s.handleListEvents)
	s.api(mux, "POST /api/events", "/api/events", s.handleInjectEvent)
	s.api(mux, "DELETE /api/events/{id}", "/api/events/{id}", s.handleResolveEvent)
	s.api(mux, "GET /api/providers", "/api/providers", s.handleProviders)
	s.api(mux, "GET /api/validation", "/api/validation", s.handleValidation)
	s.api(mux, "GET /api/status", "/api/status", s.handleStatus)
	s.api(mux, "GET /api/export", "/api/export", s.handleExport)
	mux.HandleFunc("GET /ws", s.handleWS)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return mux
}

func (s *Server) api(mux *http.ServeMux, pattern, route string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(route, s.limiter.Handler(h).ServeHTTP))
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		s.metrics.APIRequest(route, rec.code)
	})
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("admin server listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Status    sim.Status
		Exchanges []catalog.Exchange
		Regions   int
		Rejected  int
	}{
		Status:    s.Sim.Status(),
		Exchanges: s.cat.Exchanges(),
		Regions:   len(s.cat.Regions()),
		Rejected:  s.report.Invalid(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		s.log.Error("render index", "err", err)
	}
}

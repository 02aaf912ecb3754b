package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/hostbridge/internal/registry"
	"github.com/vango-dev/hostbridge/internal/snapshot"
)

// Server is the inspector HTTP server.
type Server struct {
	rec      *snapshot.Recorder
	reg      *registry.Registry
	hub      *Hub
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	router   chi.Router
	cancel   func()
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer sets the Prometheus gatherer served on /metrics.
// Default: prometheus.DefaultGatherer
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates an inspector for the snapshots of rec. Every snapshot rec
// records is pushed to websocket clients.
func New(rec *snapshot.Recorder, reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		rec:      rec,
		reg:      reg,
		hub:      NewHub(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.router = s.routes()
	s.cancel = rec.Subscribe(s.push)
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/tree", s.handleTree)
	r.Get("/nodes", s.handleNodes)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.handleWebSocket)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	snap := s.rec.Latest()

	if r.URL.Query().Get("format") == "msgpack" {
		data, err := snapshot.MarshalMsgpack(snap)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		w.Write(data)
		return
	}

	data, err := snapshot.MarshalJSON(snap)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleNodes(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count": s.reg.Len(),
		"ids":   s.reg.IDs(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	greeting, err := snapshot.MarshalMsgpack(s.rec.Latest())
	if err != nil {
		greeting = nil
	}
	s.hub.HandleWebSocket(w, r, greeting)
}

func (s *Server) push(snap snapshot.Snapshot) {
	data, err := snapshot.MarshalMsgpack(snap)
	if err != nil {
		s.logger.Warn("inspect: encode snapshot", "seq", snap.Seq, "error", err)
		return
	}
	s.hub.Broadcast(data)
}

// ListenAndServe serves the inspector on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspect: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close unsubscribes from the recorder and disconnects all clients.
func (s *Server) Close() {
	s.cancel()
	s.hub.Close()
}

// Package server hosts the conversion pipeline over HTTP: uploads in,
// viseme timelines out, plus health, metrics, and a WebSocket stream.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/normanking/lipsyncd/internal/bus"
	"github.com/normanking/lipsyncd/internal/config"
	"github.com/normanking/lipsyncd/internal/engine"
	"github.com/normanking/lipsyncd/internal/journal"
	"github.com/normanking/lipsyncd/internal/metrics"
)

const version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	engine     *engine.Engine
	bus        *bus.EventBus
	journal    *journal.Store
	sweeper    *journal.Sweeper
	httpServer *http.Server
	upgrader   websocket.Upgrader
	startTime  time.Time
	logger     zerolog.Logger
}

// New creates a new HTTP server around an engine
func New(cfg *config.Config, eng *engine.Engine, b *bus.EventBus, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  eng,
		bus:     b,
		journal: eng.Journal(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		startTime: time.Now(),
		logger:    logger.With().Str("component", "server").Logger(),
	}

	if s.journal != nil && cfg.Journal.Retention > 0 {
		s.sweeper = journal.NewSweeper(logger, s.journal, cfg.Journal.Retention)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/process/", s.instrument("/process/", s.processHandler))
	mux.HandleFunc("/health/", s.instrument("/health/", s.healthHandler))
	mux.HandleFunc("/jobs/", s.instrument("/jobs/", s.jobsHandler))
	mux.HandleFunc("/stream", s.streamHandler)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and the journal sweeper
func (s *Server) Start() error {
	if s.sweeper != nil {
		s.sweeper.Start()
	}
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server starting")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// statusRecorder captures the response status for instrumentation
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request count and duration for an endpoint
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		metrics.RequestCount.WithLabelValues(r.Method, endpoint, strconv.Itoa(rec.status)).Inc()
		metrics.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(started).Seconds())
	}
}

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"sitewatch/config"
	"sitewatch/db/repo"
	"sitewatch/metrics"
	"sitewatch/model"
	"sitewatch/recorder"
)

const requestTimeout = 10 * time.Second

type Server struct {
	storage  repo.IVisitorLogStorage
	recorder *recorder.Recorder
	logger   *slog.Logger
	config   *config.Config
	server   *http.Server
}

func NewServer(storage repo.IVisitorLogStorage, rec *recorder.Recorder, logger *slog.Logger, cfg *config.Config) *Server {
	return &Server{
		storage:  storage,
		recorder: rec,
		logger:   logger,
		config:   cfg,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/visit", s.visitHandler)
	mux.HandleFunc("/visitors", s.visitorsHandler)

	return mux
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.config.Server.Port,
		Handler: s.Handler(),
	}

	s.logger.Info("starting HTTP server", "port", s.config.Server.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) visitHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.recorder.Record(ctx, r); err != nil {
		s.logger.Error("failed to record visit", "error", err)
		metrics.VisitsRecorded.WithLabelValues("error").Inc()
		metrics.RecordDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.VisitsRecorded.WithLabelValues("ok").Inc()
	metrics.RecordDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// visitorsHandler always answers with a JSON array so the dashboard
// stays up even when the log cannot be read.
func (s *Server) visitorsHandler(w http.ResponseWriter, r *http.Request) {
	visits, err := s.storage.RecentVisits(r.Context(), s.config.Recent.Limit)
	if err != nil {
		s.logger.Error("failed to load recent visits", "error", err)
		visits = nil
	}
	if visits == nil {
		visits = []model.VisitorEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(visits)
}

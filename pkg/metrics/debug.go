package metrics

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostpin/hostpin/pkg/log"
)

var startTime = time.Now()

// DebugServer serves the process-local Prometheus metrics and a liveness
// endpoint on an opt-in local address. It complements the push reporter; the
// daemon runs fine without it.
type DebugServer struct {
	server *http.Server
	logger zerolog.Logger
}

// NewDebugServer creates a debug listener on addr serving /metrics and
// /healthz
func NewDebugServer(addr string) *DebugServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/healthz", HealthzHandler())

	return &DebugServer{
		server: &http.Server{Addr: addr, Handler: mux},
		logger: log.WithComponent("debug"),
	}
}

// Start begins serving in the background
func (s *DebugServer) Start() {
	s.logger.Info().Str("addr", s.server.Addr).Msg("debug listener starting")
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("debug listener failed")
		}
	}()
}

// Stop closes the listener
func (s *DebugServer) Stop() {
	_ = s.server.Close()
}

// HealthzHandler returns a liveness check handler (always 200 while the
// process is running)
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
			"uptime": time.Since(startTime).String(),
		})
	}
}

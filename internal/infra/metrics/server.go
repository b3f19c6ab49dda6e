package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server exposes /metrics on a local port while a run is in flight so long
// monitoring sessions can be watched from outside.
type Server struct {
	srv *http.Server
	log *zerolog.Logger
}

func NewServer(port int, reg *prometheus.Registry, logger *zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return &Server{
		srv: &http.Server{Addr: fmt.Sprintf("127.0.0.1:%d", port), Handler: r},
		log: logger,
	}
}

// Start serves in the background; the listener is best-effort and never
// fails the run.
func (s *Server) Start() {
	go func() {
		s.log.Debug().Str("addr", s.srv.Addr).Msg("metrics listener up")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Warn().Err(err).Msg("metrics listener stopped")
		}
	}()
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.srv.Shutdown(ctx)
}

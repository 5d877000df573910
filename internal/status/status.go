// Package status serves liveness, readiness and Prometheus metrics.
package status

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Server exposes /healthz, /readyz and /metrics.
type Server struct {
	srv   *http.Server
	ready atomic.Bool
	log   logr.Logger
}

// New builds a status server listening on addr. It reports not ready until
// MarkReady is called.
func New(log logr.Logger, addr string) *Server {
	s := &Server{log: log}

	mux := http.NewServeMux()
	// healthz.Handler resolves individual checks relative to its mount point.
	healthzHandler := http.StripPrefix("/healthz", &healthz.Handler{Checks: map[string]healthz.Checker{"ping": healthz.Ping}})
	readyzHandler := http.StripPrefix("/readyz", &healthz.Handler{Checks: map[string]healthz.Checker{"records": s.readyCheck}})
	mux.Handle("/healthz", healthzHandler)
	mux.Handle("/healthz/", healthzHandler)
	mux.Handle("/readyz", readyzHandler)
	mux.Handle("/readyz/", readyzHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the status mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// MarkReady flips /readyz to healthy once records are resolved.
func (s *Server) MarkReady() { s.ready.Store(true) }

func (s *Server) readyCheck(_ *http.Request) error {
	if !s.ready.Load() {
		return errors.New("records not resolved yet")
	}
	return nil
}

// Start serves in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.log.Info("starting status server", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(err, "status server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error(err, "status server shutdown failed")
		}
	}()
}

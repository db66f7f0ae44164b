package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/uptimealert/internal/httpapi/middleware"
	"github.com/hamed0406/uptimealert/internal/monitor"
	"github.com/hamed0406/uptimealert/internal/repo"
)

// SummarySource exposes the most recent cycle summary.
type SummarySource interface {
	LastSummary() (monitor.Summary, bool)
}

// StateSource exposes the process lifecycle state.
type StateSource interface {
	StateName() string
}

type Options struct {
	APIKeys []string
	RPM     int
	Burst   int
}

// Server is a read-only view of the monitor's status.
type Server struct {
	Logger  *zap.Logger
	Store   repo.StatusStore
	Summary SummarySource
	State   StateSource

	opts Options
	srv  *http.Server
}

func NewServer(l *zap.Logger, store repo.StatusStore, summary SummarySource, state StateSource, opts Options) *Server {
	return &Server{Logger: l, Store: store, Summary: summary, State: state, opts: opts}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(apimw.RateLimit(s.opts.RPM, s.opts.Burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RequireKey(s.opts.APIKeys))
		r.Get("/status", s.handleStatus)
	})
	return r
}

// Start listens on addr and serves in the background. Listen errors are
// returned directly; later serve errors are logged.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.srv = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.Logger.Info("status_listen", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("status_serve_error", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

type statusResponse struct {
	State   string              `json:"state"`
	Summary *monitor.Summary    `json:"summary"`
	Targets []repo.TargetStatus `json:"targets"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	targets, err := s.Store.Snapshot(r.Context())
	if err != nil {
		s.Logger.Warn("status_snapshot_error", zap.Error(err))
		http.Error(w, "snapshot error", http.StatusInternalServerError)
		return
	}
	resp := statusResponse{Targets: targets}
	if s.State != nil {
		resp.State = s.State.StateName()
	}
	if s.Summary != nil {
		if sum, ok := s.Summary.LastSummary(); ok {
			resp.Summary = &sum
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	logx "github.com/intelligent-rag/server/pkg/logger"
)

type Config struct {
	Addr            string `envconfig:"SERVER_ADDR" default:":8080"`
	ShutdownTimeout int    `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15"`
}

// Server is the thin HTTP surface over the agent service.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

func NewServer(cfg Config, svc AgentService) *Server {
	r := mux.NewRouter()
	h := &handlers{svc: svc}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/agent/query", h.queryAgent).Methods(http.MethodPost)
	v1.HandleFunc("/agent/analytics", h.getAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.Addr,
			Handler: r,
		},
		shutdownTimeout: time.Duration(cfg.ShutdownTimeout) * time.Second,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	logx.Info().Msg("shutting down http server")
	return s.httpServer.Shutdown(shutdownCtx)
}

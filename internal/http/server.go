package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yungbote/twingraph-backend/internal/platform/logger"
)

type Server struct {
	log             *logger.Logger
	srv             *http.Server
	shutdownTimeout time.Duration
}

func NewServer(addr string, shutdownTimeout time.Duration, log *logger.Logger, cfg RouterConfig) *Server {
	return &Server{
		log: log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to the
// shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.log.Info("HTTP server shutting down", "timeout", s.shutdownTimeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shipping-estimator/internal/config"
)

type Server struct {
	Engine *gin.Engine

	srv             *http.Server
	shutdownTimeout time.Duration
}

func NewServer(cfg config.HTTPConfig, rc RouterConfig) *Server {
	engine := NewRouter(rc)
	return &Server{
		Engine: engine,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
			IdleTimeout:       cfg.IdleTimeout.Duration,
		},
		shutdownTimeout: cfg.ShutdownTimeout.Duration,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

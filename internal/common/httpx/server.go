package httpx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"restaurant-system/internal/common/logger"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	*http.Server
	log *logger.Logger
}

func New(port int, h http.Handler, lg *logger.Logger) *Server {
	return &Server{
		Server: &http.Server{
			Addr:              net.JoinHostPort("", strconv.Itoa(port)),
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		log: lg,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe() }()
	s.log.Info("http_listening", map[string]any{"addr": s.Addr})

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			s.log.Error("http_shutdown_failed", err, nil)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/edkuperman/pairsort/internal/config"
)

// NewServer builds the HTTP server for h using the configured timeouts.
func NewServer(c config.ServerConfig, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         c.Addr,
		Handler:      h,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

// Serve accepts connections on ln until ctx is canceled, then drains
// in-flight requests for at most c.ShutdownTimeout.
func Serve(ctx context.Context, ln net.Listener, c config.ServerConfig, h http.Handler, logger *log.Logger) error {
	srv := NewServer(c, h)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pairsort API listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

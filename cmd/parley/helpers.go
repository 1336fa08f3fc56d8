package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/pkg/adapters/memory"
)

const shutdownTimeout = 5 * time.Second

// serveHTTP runs srv on ln until ctx ends, then drains it.
func serveHTTP(ctx context.Context, logger *slog.Logger, srv *http.Server, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	})
	return g.Wait()
}

func listen(port int) (net.Listener, error) {
	return net.Listen("tcp", fmt.Sprintf(":%d", port))
}

// newKnowledgeBase builds the in-process Answer Service from the stub config.
func newKnowledgeBase(cfg config.Config) *memory.KnowledgeBase {
	opts := []memory.Option{memory.WithAnswers(cfg.Stub.Answers)}
	if len(cfg.Stub.Web) > 0 {
		opts = append(opts, memory.WithWebSearcher(memory.NewStaticSearcher(cfg.Stub.Web)))
	}
	return memory.NewKnowledgeBase(opts...)
}

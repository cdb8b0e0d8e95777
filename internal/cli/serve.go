package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/config"
	httpAdapter "github.com/aretw0/turtle/pkg/adapters/http"
	"github.com/aretw0/turtle/pkg/observability"
	"github.com/aretw0/turtle/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout bounds how long outstanding requests may take once the server stops.
const ShutdownTimeout = 5 * time.Second

// newManager builds the session manager shared by the network hosts.
// Every session gets its own canvas; stores and metrics are shared.
func newManager(cfg config.Config, stores *Stores, logger *slog.Logger, hooks ...turtle.Option) *session.Manager {
	factory := func(id string) (*session.Session, error) {
		opts := append(turtleHeadless(cfg), hooks...)
		t := newTurtle(cfg, stores, logger.With("session_id", id), opts...)
		return t.Session, nil
	}

	mOpts := []session.ManagerOption{session.WithManagerLogger(logger)}
	if stores.Locker != nil {
		mOpts = append(mOpts, session.WithLocker(stores.Locker, session.DefaultLockTTL))
	}
	return session.NewManager(factory, mOpts...)
}

// newServeHandler wires the HTTP API, its metrics registry and the session manager.
func newServeHandler(cfg config.Config, stores *Stores, logger *slog.Logger) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	manager := newManager(cfg, stores, logger, turtle.WithLifecycleHooks(metrics.Hooks()))

	return httpAdapter.NewHandler(manager,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		httpAdapter.WithUnsavedPolicy(cfg.UnsavedChoice()),
	)
}

// RunServe starts the HTTP server on addr and stops it gracefully when ctx ends.
func RunServe(ctx context.Context, opts RunOptions, addr string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(cfg)

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServeHandler(cfg, stores, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("Starting Turtle Server on %s\n", srv.Addr)
		fmt.Printf("Store: %s\n", cfg.Store.Driver)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		fmt.Println("\nStart shutdown...")

		// Give outstanding requests a deadline for completion.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", ShutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		fmt.Println("Turtle Server stopped gracefully")
		return nil
	}
}

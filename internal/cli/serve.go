package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/internal/config"
	httpadapter "github.com/aretw0/storyloom/pkg/adapters/http"
	mcpadapter "github.com/aretw0/storyloom/pkg/adapters/mcp"
	"github.com/aretw0/storyloom/pkg/observability"
	"github.com/aretw0/storyloom/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Handler builds the HTTP API for a story over an opened backend, with its
// own metrics registry.
func (a *App) Handler(ctx context.Context, source string, b *config.Backend) (http.Handler, error) {
	g, loader, err := a.loadStory(ctx, source)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	gameOpts := []storyloom.Option{
		storyloom.WithMaxSlots(a.Config.MaxSlots),
		storyloom.WithLogger(a.logger()),
		storyloom.WithLifecycleHooks(observability.Chain(metrics.Hooks(), observability.LogHooks(a.logger()))),
	}
	var sessionOpts []session.Option
	if b.Locker != nil {
		gameOpts = append(gameOpts, storyloom.WithLocker(b.Locker, 0))
		sessionOpts = append(sessionOpts, session.WithLocker(b.Locker, 0))
	}
	sessionOpts = append(sessionOpts, session.WithLogger(a.logger()))
	sessions := session.NewManager(session.StoryOpener(g, b.Store, a.Config.StorageKey, gameOpts...), sessionOpts...)

	opts := []httpadapter.Option{
		httpadapter.WithLogger(a.logger()),
		httpadapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	}
	if w, ok := loader.(httpadapter.Watcher); ok {
		opts = append(opts, httpadapter.WithWatcher(w))
	}
	return httpadapter.NewHandler(g, sessions, a.persistenceFor(g, b), opts...), nil
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *App) Serve(ctx context.Context, source string) error {
	return a.withBackend(ctx, func(b *config.Backend) error {
		handler, err := a.Handler(ctx, source, b)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              a.Config.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			a.logger().Info("storyloom server listening", "addr", srv.Addr, "source", source, "backend", a.Config.Backend)
			fmt.Fprintf(a.Err, "Serving %s on %s\n", source, srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger().Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			a.logger().Info("storyloom server stopped gracefully")
			return nil
		}
	})
}

// MCP serves the analysis tools over stdio or SSE.
func (a *App) MCP(ctx context.Context, source, transport, addr string) error {
	loader, err := storyloom.LoaderFor(source, a.logger())
	if err != nil {
		return err
	}
	// Fail early on an unreadable story rather than on the first tool call.
	if _, err := loader.Load(ctx); err != nil {
		return fmt.Errorf("failed to load story from %s: %w", source, err)
	}

	srv := mcpadapter.NewServer(loader, mcpadapter.WithLogger(a.logger()))
	switch transport {
	case "stdio", "":
		a.logger().Info("starting storyloom MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, addr)
	default:
		return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
	}
}

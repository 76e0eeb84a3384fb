package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelist/internal/cache"
	"github.com/desertthunder/reelist/internal/server"
)

// newAPIHandler assembles the JSON API router over the runner's services.
//
// The returned start function launches the cache janitors and must be given the server's context.
func (r *Runner) newAPIHandler() (http.Handler, func(context.Context), error) {
	svc, err := r.open()
	if err != nil {
		return nil, nil, err
	}

	provider, err := r.provider()
	if err != nil {
		r.logger.Warn("movie search disabled", "error", err)
		provider = nil
	}

	tokens := cache.New[string](cache.Config{TTL: r.config.Session.TokenTTL, MaxSize: 10_000})

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger), server.Metrics(r.metrics))
	server.NewAPI(server.APIOpts{
		Lists:    svc,
		Movies:   provider,
		Accounts: r.accounts,
		Tokens:   server.NewTokens(tokens),
		Metrics:  r.metrics.Handler(),
		Logger:   r.logger,
	}).Register(router)

	start := func(ctx context.Context) {
		tokens.Start(ctx)
		for _, c := range r.caches {
			c.Start(ctx)
		}
	}
	return router, start, nil
}

// Serve runs the JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	handler, start, err := r.newAPIHandler()
	if err != nil {
		return err
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	start(ctx)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("serving API", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

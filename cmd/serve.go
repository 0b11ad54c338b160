package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/auxq/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the recommendation HTTP API until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}
	if port == 0 {
		port = 8080
	}

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	if token := r.config.Server.APIToken; token != "" {
		router.Use(server.AuthMiddleware(token))
	}
	router.Handler(server.NewRecommendationHandler(r.engine, r.logger))
	router.Handler(&server.HealthHandler{})

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

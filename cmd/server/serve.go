package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pandeptwidyaop/hostbridge/internal/database"
	"github.com/pandeptwidyaop/hostbridge/internal/router"
	"github.com/pandeptwidyaop/hostbridge/internal/services"
	"github.com/pandeptwidyaop/hostbridge/internal/version"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the invocation API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd)
		},
	}
}

func serve(ctx context.Context, cmd *cobra.Command) error {
	cfg := loadConfig(cmd)

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	auditService := services.NewAuditService(db)
	var opts []services.DispatcherOption
	if cfg.Audit.IsEnabled() {
		opts = append(opts, services.WithRecorder(auditService))

		retention := services.NewAuditRetention(auditService, cfg.Audit.GetRetention())
		retention.Start(ctx)
		defer retention.Stop()
	}
	dispatcher := newDispatcher(cfg, opts...)
	r := router.New(ctx, cfg, dispatcher, auditService)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Auth.Token == "" {
		log.Warn().Msg("auth.token is empty, the API is unauthenticated")
	}
	log.Info().
		Str("version", version.Version).
		Str("addr", addr).
		Str("path_prefix", cfg.Server.PathPrefix).
		Msg("hostbridge starting")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"club-ladder/internal/club"
	"club-ladder/internal/config"
	"club-ladder/internal/logger"
	"club-ladder/internal/store"
	"club-ladder/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	bootLogger := logger.New(os.Getenv("LOG_LEVEL"))
	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)

	appStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.StoreKind()).Msg("failed to open store")
	}
	defer appStore.Close()

	if cfg.SeedDemo {
		if err := store.SeedDemo(context.Background(), appStore, 42); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
		log.Info().Msg("demo data seeded")
	}

	svc := club.New(appStore, log, club.Options{})
	handler := web.NewServer(svc, log, web.ServerOptions{
		AdminPasswordHash: cfg.AdminPasswordHash,
		CORSOrigins:       cfg.CORSOrigins,
	}).Routes()

	if cfg.Lambda {
		log.Info().Msg("starting in lambda mode")
		adapter := httpadapter.New(handler)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	if err := serve(handler, cfg.Port, log); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreKind() {
	case "postgres":
		return store.NewPostgresStore(cfg.PostgresDSN, store.PostgresOptions{Logger: log})
	case "sqlite":
		return store.NewSQLiteStore(cfg.DBPath, store.SQLiteOptions{Logger: log})
	}
	return store.NewMemoryStore(), nil
}

func serve(handler http.Handler, port string, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}

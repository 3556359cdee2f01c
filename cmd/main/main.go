package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"msku-service/internal/config"
	"msku-service/internal/resolve/catalog"
	"msku-service/internal/resolve/store"
	serverhttp "msku-service/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	ctx := context.Background()
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store")
	}
	defer st.Close()

	cat, err := catalog.Open(ctx, st, logger, catalog.Options{
		SuggestThreshold: cfg.SuggestThreshold,
		SuggestLimit:     cfg.SuggestLimit,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("load catalog")
	}
	if err := seed(ctx, cfg, cat, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed catalog")
	}

	r := serverhttp.NewRouter(cfg, logger, cat)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(sctx)
	logger.Info().Msg("bye")
}

func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (store.Store, error) {
	if cfg.StoreDriver == "sqlite" {
		return store.OpenSQLite(ctx, cfg.StoreDSN, logger)
	}
	return store.NewMemory(), nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/crashgate-io/crashgate/internal/config"
	"github.com/crashgate-io/crashgate/internal/database"
	"github.com/crashgate-io/crashgate/internal/logger"
	"github.com/crashgate-io/crashgate/internal/observability"
	"github.com/crashgate-io/crashgate/internal/ratelimit"
	"github.com/crashgate-io/crashgate/internal/server"
	"github.com/crashgate-io/crashgate/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// No logger yet; config failures go straight to stderr.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.Primary.Env)

	nrApp, err := observability.NewApplication(cfg.Observability)
	if err != nil {
		log.Fatal().Err(err).Msg("observability setup")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		if err := database.RunMigrations(ctx, cfg.Database.URL); err != nil {
			log.Fatal().Err(err).Msg("migrations")
		}
		pool, err := database.NewPool(ctx, cfg.Database.URL, log, nrApp)
		if err != nil {
			log.Fatal().Err(err).Msg("database pool")
		}
		defer pool.Close()
		st = store.NewPostgres(pool)
	default:
		st = store.NewREST(cfg.Storage.Endpoint, cfg.Storage.Token, log)
	}

	srv := server.New(cfg, st, ratelimit.NewMemoryStore(), log, nrApp)
	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

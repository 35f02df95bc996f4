package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, db, dsn, err := setupDatabases(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up database")
	}
	defer pool.Close()
	defer db.Close()

	services, err := setupServices(pool, db, dsn, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up services")
	}

	if err := services.Scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := services.Relay.Start(ctx); err != nil {
			log.Error().Err(err).Msg("outbox relay exited")
		}
	}()

	log.Info().Msg("forkcast session core running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	cancel()
	if err := services.Scheduler.Stop(); err != nil {
		log.Error().Err(err).Msg("failed to stop scheduler")
	}
	<-relayDone
}

package main

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/forkcast/forkcast/go/internal/achievements"
	"github.com/forkcast/forkcast/go/internal/consumption"
	"github.com/forkcast/forkcast/go/internal/game"
	"github.com/forkcast/forkcast/go/internal/groups"
	"github.com/forkcast/forkcast/go/internal/meals"
	"github.com/forkcast/forkcast/go/internal/outbox"
	"github.com/forkcast/forkcast/go/internal/scheduler"
	"github.com/forkcast/forkcast/go/internal/voting"
)

type Services struct {
	Voting      *voting.App
	Game        *game.App
	Consumption *consumption.App
	Scheduler   *scheduler.Scheduler
	Relay       *outbox.Listener
}

// setupServices wires the dependency chain: storage layer -> repositories ->
// managers -> scheduler and outbox relay.
func setupServices(pool *pgxpool.Pool, db *sql.DB, dsn string, cfg *Config) (*Services, error) {
	clock := clockwork.NewRealClock()

	groupDir := groups.NewPostgresRepository(pool)
	mealCatalog := meals.NewPostgresRepository(pool)

	outboxRepo := outbox.NewRepository(db)
	sink := outbox.NewSink(outboxRepo)

	notifier := achievements.LogNotifier{}

	consumptionRepo := consumption.NewPostgresRepository(pool)
	consumptionApp := consumption.NewApp(consumptionRepo, consumptionRepo, consumptionRepo, mealCatalog, sink, clock)

	votingRepo := voting.NewPostgresRepository(pool)
	votingApp := voting.NewApp(votingRepo, groupDir, mealCatalog, sink, notifier, consumptionApp, clock, cfg.votingConfig())

	gameRepo := game.NewPostgresRepository(pool)
	gameApp := game.NewApp(gameRepo, groupDir, mealCatalog, sink, notifier, consumptionApp, game.UniformPicker{}, clock, cfg.gameConfig())

	sched := scheduler.New(votingApp, gameApp, consumptionApp, clock, cfg.schedulerConfig())

	publisher, err := setupPublisher(cfg)
	if err != nil {
		return nil, err
	}

	listenerCfg := outbox.DefaultListenerConfig()
	listenerCfg.DatabaseURL = dsn
	if cfg.Events.NotifyChannel != "" {
		listenerCfg.NotifyChannel = cfg.Events.NotifyChannel
	}
	relay, err := outbox.NewListener(outboxRepo, publisher, listenerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox relay: %w", err)
	}

	return &Services{
		Voting:      votingApp,
		Game:        gameApp,
		Consumption: consumptionApp,
		Scheduler:   sched,
		Relay:       relay,
	}, nil
}

func setupPublisher(cfg *Config) (outbox.Publisher, error) {
	if cfg.Events.Publisher == "mock" {
		return outbox.NewMockPublisher(), nil
	}

	jsCfg := outbox.DefaultJetStreamConfig()
	if url := getEnv("NATS_URL", cfg.Events.NatsURL); url != "" {
		jsCfg.URL = url
	}
	if cfg.Events.StreamName != "" {
		jsCfg.StreamName = cfg.Events.StreamName
	}
	if cfg.Events.SubjectPrefix != "" {
		jsCfg.SubjectPrefix = cfg.Events.SubjectPrefix
	}

	publisher, err := outbox.NewJetStreamPublisher(jsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
	}
	return publisher, nil
}

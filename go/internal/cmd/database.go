package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/forkcast/forkcast/go/internal/dbconfig"
)

// setupDatabases opens the pgx pool the repositories run on and a lib/pq
// database/sql handle for the outbox (its LISTEN/NOTIFY relay needs pq).
func setupDatabases(ctx context.Context) (*pgxpool.Pool, *sql.DB, string, error) {
	cfg := dbconfig.NewConfigFromEnv()
	dsn := cfg.DSN()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		pool.Close()
		return nil, nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		pool.Close()
		_ = db.Close()
		return nil, nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("connected to database")
	return pool, db, dsn, nil
}

// Command seed creates the schema and loads the demo catalog without
// starting the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/showtix/showtix-go/internal/config"
	"github.com/showtix/showtix-go/internal/postgres"
	postgresrepo "github.com/showtix/showtix-go/internal/repository/postgres"
	"github.com/showtix/showtix-go/internal/seed"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	ctx := context.Background()

	pool, err := postgres.New(ctx, postgres.Config{DSN: dsn})
	if err != nil {
		logger.Error("failed to initialize postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed.Run(ctx, postgresrepo.NewStore(pool), logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

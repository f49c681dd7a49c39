package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/showtix/showtix-go/internal/config"
	"github.com/showtix/showtix-go/internal/postgres"
	redisx "github.com/showtix/showtix-go/internal/redis"
	postgresrepo "github.com/showtix/showtix-go/internal/repository/postgres"
	redisrepo "github.com/showtix/showtix-go/internal/repository/redis"
	"github.com/showtix/showtix-go/internal/seed"
	"github.com/showtix/showtix-go/internal/service"
	"github.com/showtix/showtix-go/internal/service/auth"
	"github.com/showtix/showtix-go/internal/service/catalog"
	httpgin "github.com/showtix/showtix-go/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

// completeSweepInterval is how often pending bookings for shows whose
// date has passed are flipped to COMPLETED.
const completeSweepInterval = 1 * time.Minute

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	services   *service.Services
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Initialize dependencies
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.New(rdb)
	sessions := redisrepo.NewSessionStore(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "rl:login", 10, 1*time.Minute)

	if err := seed.Run(context.Background(), store, logger); err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	// Initialize services
	services := service.NewServices(
		store.Shows(),
		store.Bookings(),
		store.Ratings(),
		store.Users(),
		sessions,
		cache,
		limiter,
		service.Config{
			Auth: auth.Config{
				Secret:     cfg.Auth.Secret,
				SessionTTL: cfg.Auth.SessionTTL,
				BcryptCost: cfg.Auth.BcryptCost,
			},
			Catalog: catalog.Config{CatalogTTL: 30 * time.Second},
		},
	)

	// Initialize Gin router
	router := httpgin.NewRouter(services, logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		services: services,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Flip pending bookings for elapsed shows to COMPLETED
	g.Go(func() error {
		ticker := time.NewTicker(completeSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				n, err := a.services.Booking.CompleteElapsed(gCtx, time.Now().UTC())
				if err != nil {
					a.logger.Error("complete sweep failed", "error", err)
					continue
				}
				if n > 0 {
					a.logger.Info("completed elapsed bookings", "count", n)
				}
			}
		}
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

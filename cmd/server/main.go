package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/huntworks/geohunt/internal/config"
	"github.com/huntworks/geohunt/internal/database"
	"github.com/huntworks/geohunt/internal/game"
	"github.com/huntworks/geohunt/internal/migrations"
	"github.com/huntworks/geohunt/internal/narrative"
	"github.com/huntworks/geohunt/internal/places"
	"github.com/huntworks/geohunt/internal/server"
	"github.com/huntworks/geohunt/internal/trust"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Location history: Redis when configured, in-memory otherwise ---
	var rdb *redis.Client
	var history trust.HistoryStore = trust.NewMemoryHistory()
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		history = trust.NewRedisHistory(rdb, time.Hour)
		logger.Info("using redis location history")
	}

	// --- Narrative: generated when a key is present, templates otherwise ---
	var stories game.StoryTeller
	if cfg.AnthropicAPIKey != "" {
		stories = narrative.NewGenerator(cfg.AnthropicAPIKey, logger)
	} else {
		logger.Info("anthropic api key not set, using template narratives")
		stories = narrative.NewTemplates(time.Now().UnixNano())
	}

	store := game.NewSQLiteStore(db)
	games := game.NewService(store, places.NewClient(cfg.GoogleMapsAPIKey, logger), stories, store, logger)
	discoveries := game.NewCoordinator(store, trust.NewSpoofDetector(history), trust.NewValidator(), logger)

	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Games:       games,
		Discoveries: discoveries,
		DB:          db,
		Redis:       rdb,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

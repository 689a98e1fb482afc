// Command console runs the interactive terminal messenger against the
// configured database.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"messenger/internal/cache"
	"messenger/internal/config"
	"messenger/internal/console"
	"messenger/internal/database"
)

func main() {
	// Logs go to stderr at warn so they do not interleave with the menus.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	rdb := cache.InitRedis(cfg.RedisURL)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := console.NewServices(db, cache.New(rdb), nil)
	if err := console.New(os.Stdin, os.Stdout, svc).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Console failed: %v", err)
	}
}

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/hoanghai1803/bloglist/internal/api"
	"github.com/hoanghai1803/bloglist/internal/auth"
	"github.com/hoanghai1803/bloglist/internal/config"
	"github.com/hoanghai1803/bloglist/internal/feeds"
	"github.com/hoanghai1803/bloglist/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dbPath := flag.String("db", "", "path to SQLite database (overrides database.path)")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	})))

	db, err := storage.OpenDatabase(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	if err := storage.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := storage.NewStore(db)
	defer store.Close()
	// An empty secret is replaced with a random per-process one.
	tokens := auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL())
	hasher := auth.Hasher{Cost: cfg.Auth.BcryptCost}
	importer := feeds.NewImporter(cfg.Import.MaxItemsPerFeed, cfg.Import.AllowPrivateNetworks)

	if cfg.Admin.MigrateKey == "" {
		slog.Info("no migrate key configured, POST /api/migrate is disabled")
	}

	router := api.NewRouter(store, tokens, hasher, importer, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("starting server", "addr", "http://"+addr, "db", cfg.Database.Path)
	if err := http.ListenAndServe(addr, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// Package main runs the commander league API server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rookenthusiast/mtg-commander-league/internal/api"
	"github.com/rookenthusiast/mtg-commander-league/internal/config"
	"github.com/rookenthusiast/mtg-commander-league/internal/league"
	"github.com/rookenthusiast/mtg-commander-league/internal/pricing"
	"github.com/rookenthusiast/mtg-commander-league/internal/scryfall"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage"
	"github.com/rookenthusiast/mtg-commander-league/internal/storage/repository"
)

var (
	configPath = flag.String("config", "", "Path to config.toml")
	initConfig = flag.Bool("init-config", false, "Write the default config to -config and exit")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (overrides config)")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *initConfig {
		if *configPath == "" {
			logger.Error("-init-config requires -config")
			os.Exit(1)
		}
		if err := config.DefaultConfig().Save(*configPath); err != nil {
			logger.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		logger.Info("wrote default config", "path", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dbConfig := storage.DefaultConfig(cfg.Database.Path)
	dbConfig.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	logger.Info("database ready", "path", cfg.Database.Path)

	conn := db.Conn()
	deckRepo := repository.NewDeckRepository(conn)
	versionRepo := repository.NewDeckVersionRepository(conn, logger)
	gameRepo := repository.NewGameRepository(conn)
	seasonRepo := repository.NewSeasonRepository(conn)
	playerRepo := repository.NewPlayerRepository(conn)
	userRepo := repository.NewUserRepository(conn)

	catalog := scryfall.NewClient(logger)
	if cfg.Catalog.BaseURL != "" {
		catalog.SetBaseURL(cfg.Catalog.BaseURL)
	}
	aggregator := pricing.NewAggregator(catalog, logger)

	services := &api.Services{
		Decks:       league.NewDeckService(deckRepo, versionRepo, aggregator, logger),
		Games:       league.NewGameService(gameRepo, versionRepo, logger),
		Seasons:     league.NewSeasonService(seasonRepo, playerRepo, logger),
		Leaderboard: league.NewLeaderboardService(seasonRepo),
		Admin:       league.NewAdminService(userRepo, playerRepo, logger),
	}

	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		JWTSecret:      cfg.Auth.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, services, logger)

	if err := server.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		os.Exit(1)
	}
	logger.Info("league server running", "port", server.Port())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	timeout, err := cfg.ShutdownTimeout()
	if err != nil {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	logger.Info("league server stopped")
}

// Command chronotrade runs the time-travel trading game server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/talgya/chronotrade/internal/api"
	"github.com/talgya/chronotrade/internal/config"
	"github.com/talgya/chronotrade/internal/entropy"
	"github.com/talgya/chronotrade/internal/game"
	"github.com/talgya/chronotrade/internal/persistence"
)

func main() {
	var (
		configPath = flag.String("config", "chronotrade.yaml", "path to config file")
		seedFlag   = flag.Int64("seed", 0, "rng seed (0 = random)")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Optional .env for local development.
	if err := godotenv.Load(); err == nil {
		slog.Debug(".env loaded")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	seed := *seedFlag
	if seed == 0 {
		seed = entropy.Seed()
	}
	rng := rand.New(rand.NewSource(seed))
	slog.Info("chronotrade starting", "seed", seed, "starting_cash", cfg.StartingCash)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	db.SetMeta("last_seed", fmt.Sprintf("%d", seed))

	// ── Game + API ────────────────────────────────────────────────────
	engine := game.NewEngine(cfg, rng)

	server := &api.Server{
		Engine: engine,
		DB:     db,
		Port:   cfg.Port,
	}
	server.Start()

	fmt.Printf("\nChronoTrade is open for business with %.2f in the till.\n", cfg.StartingCash)
	fmt.Printf("API: http://localhost:%d/api/v1/summary\n", cfg.Port)
	fmt.Println("Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	// Final autosave so a restart can pick up where play stopped.
	if _, err := db.Save("autosave", engine.Export()); err != nil {
		slog.Error("final autosave failed", "error", err)
	}
	fmt.Println("Session saved. Goodbye.")
}

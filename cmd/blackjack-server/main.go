package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjackbot/internal/config"
	"github.com/lox/blackjackbot/internal/game"
	"github.com/lox/blackjackbot/internal/randutil"
	"github.com/lox/blackjackbot/internal/server"
	"github.com/lox/blackjackbot/internal/stats"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"blackjack-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Address to bind to, host or host:port (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed     int64  `long:"seed" help:"Seed for reproducible shuffles (overrides config, 0 = random)"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("blackjack-server"),
		kong.Description("Multi-table blackjack over WebSockets"))

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	if CLI.Addr != "" {
		if host, port, err := net.SplitHostPort(CLI.Addr); err == nil {
			cfg.Server.Address = host
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = p
			}
		} else {
			cfg.Server.Address = CLI.Addr
		}
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Seed != 0 {
		cfg.Game.Seed = CLI.Seed
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	// Validate has already parsed these.
	lang, _ := cfg.Language()
	idle, _ := cfg.IdleTimeout()
	sweep, _ := cfg.SweepInterval()

	clock := quartz.NewReal()
	registry := game.NewRegistry(
		game.WithClock(clock),
		game.WithRules(cfg.Rules()),
		game.WithLanguage(lang),
		game.WithSeeds(randutil.FixedSeeds(cfg.Game.Seed)),
		game.WithLogger(logger),
	)

	var (
		recorder game.OutcomeRecorder
		reader   server.StatsReader
	)
	if cfg.StatsEnabled() {
		store, err := stats.Open(cfg.Stats.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		recorder, reader = store, store
		logger.Info("Recording outcomes", "path", cfg.Stats.Path)
	}

	dispatcher := game.NewDispatcher(registry, recorder, logger)
	wsServer := server.NewServer(registry, dispatcher, reader, logger)
	reaper := game.NewReaper(registry, clock, sweep, idle, logger)

	logger.Info("Starting Blackjack Server",
		"addr", cfg.ServerAddress(),
		"decks", cfg.Game.DeckCount,
		"maxPlayers", cfg.Game.MaxPlayers,
		"hitSoft17", cfg.Rules().DealerHitsSoft17,
		"lang", lang)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return reaper.Run(ctx) })
	g.Go(func() error { return wsServer.Serve(ctx, cfg.ServerAddress()) })
	return g.Wait()
}

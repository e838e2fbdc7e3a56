package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/config"
	"github.com/mage-engine/mage/internal/console"
	"github.com/mage-engine/mage/internal/engine"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/mage.toml"
	if p := os.Getenv("MAGE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := engine.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	console.Banner("mage", "scene runtime · physics bridge")

	// 3. Build the session: transport, database, level
	console.Section("session")
	setupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	session, err := engine.NewSession(setupCtx, cfg, log)
	if err != nil {
		return err
	}
	if cfg.Database.Enabled {
		console.OK(fmt.Sprintf("database ready (%s)", cfg.Database.Driver))
	}
	console.Stat("entities", session.Spawned())

	// 4. Physics handshake
	console.Section("physics")
	if !cfg.Physics.Enabled {
		console.OK("disabled")
	} else {
		console.OK(fmt.Sprintf("%s transport, module %s", cfg.Physics.Transport, cfg.Physics.Path))
	}
	if err := session.Start(setupCtx); err != nil {
		_ = session.Close(context.Background())
		return err
	}
	console.Stat("pending commands", session.Bridge().Pending())
	fmt.Println()
	console.Ready(fmt.Sprintf("running at %s per tick", cfg.Engine.TickRate))

	// 5. Game loop until a shutdown signal arrives
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := session.Run(ctx); err != nil {
		log.Error("game loop stopped", zap.Error(err))
	}
	log.Info("shutting down")

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	return session.Close(closeCtx)
}

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
	magenet "github.com/mage-engine/mage/internal/net"
	"github.com/mage-engine/mage/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/physicsd.toml"
	if p := os.Getenv("PHYSICSD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := engine.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	console.Banner("physicsd", "remote simulation host")

	opts := worker.OptionsFrom(cfg.Physics)
	opts.Root = cfg.Server.ScriptRoot
	srv, err := magenet.NewServer(cfg.Server, opts, log)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	console.Section("server")
	console.OK(fmt.Sprintf("modules under %s", cfg.Server.ScriptRoot))
	console.Ready(fmt.Sprintf("ws://%s%s", srv.Addr(), cfg.Server.Path))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("sessions still open at shutdown", zap.Error(err))
	}
	return <-errCh
}

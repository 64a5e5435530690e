// Command vloood runs the local API proxy daemon in front of the conversion
// backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"

	"vlooo/internal/config"
	"vlooo/internal/gateway"
	"vlooo/internal/logging"
	"vlooo/internal/proxy"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// One proxy per data directory.
	lock := flock.New(filepath.Join(cfg.Paths.DataDir, "vloood.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another vloood instance is already running")
	}
	defer lock.Unlock()

	client := gateway.NewClient(cfg)
	server, err := proxy.NewServer(cfg, client, logger)
	if err != nil {
		return fmt.Errorf("create proxy: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer server.Stop()

	logger.Info("vloood started",
		logging.String("bind", server.Addr()),
		logging.String("backend", cfg.Backend.BaseURL),
	)

	<-ctx.Done()
	logger.Info("vloood shutting down")
	return nil
}

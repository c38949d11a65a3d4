// apiserver runs the docsight HTTP server without the CLI wrapper, for
// container images where flags and environment are the whole interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/docsight/docsight/internal/app"
	"github.com/docsight/docsight/internal/config"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Engine assembly failed", logging.Err(err))
		os.Exit(1)
	}
	defer a.Close()

	logger.Info("docsight API server starting", logging.Int("port", cfg.Server.Port))
	if err := a.Run(ctx); err != nil {
		logger.Error("Server failed", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("Server exited")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

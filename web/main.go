package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/df07/go-raytracer-bvh/cmd"
	"github.com/df07/go-raytracer-bvh/pkg/config"
	"github.com/df07/go-raytracer-bvh/pkg/logger"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "Port to serve on (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initialising logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	srv, err := cmd.NewServer(cfg)
	if err != nil {
		logger.Sugar.Errorf("Error building scene: %v", err)
		os.Exit(1)
	}

	logger.Sugar.Infof("Visit http://localhost:%d/api/stats to inspect the scene", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Start(ctx); err != nil {
		logger.Sugar.Errorf("Error starting server: %v", err)
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/df07/go-raytracer-bvh/pkg/config"
	"github.com/df07/go-raytracer-bvh/pkg/logger"
	"github.com/df07/go-raytracer-bvh/pkg/metrics"
	"github.com/df07/go-raytracer-bvh/pkg/scene"
	"github.com/df07/go-raytracer-bvh/web/server"
)

// Serve builds the configured scene and answers queries over HTTP until
// interrupted.
func Serve(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	srv, err := NewServer(cfg)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Start(sigCtx)
}

// NewServer assembles the scene, metrics and HTTP server described by cfg
func NewServer(cfg *config.Config) (*server.Server, error) {
	sc, err := NewScene(cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	m.ObserveSnapshot(sc.Snapshot())

	return server.NewServer(cfg.Server.Port, sc, m, logger.Named("server")), nil
}

// NewScene generates the configured scene and builds its first snapshot
func NewScene(cfg *config.Config) (*scene.Scene, error) {
	shapes, err := scene.Generate(cfg.SceneSpec())
	if err != nil {
		return nil, err
	}

	opts := cfg.SceneOptions()
	opts.Logger = logger.Named("scene")
	return scene.New(cfg.Scene.Kind, shapes, opts)
}

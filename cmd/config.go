package cmd

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/df07/go-raytracer-bvh/pkg/config"
	"github.com/df07/go-raytracer-bvh/pkg/core"
	"github.com/df07/go-raytracer-bvh/pkg/scene"
)

// sceneFlags are the config overrides shared by every command that builds
// a scene
func sceneFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Usage: "procedural scene kind (see the scenes command)",
		},
		cli.IntFlag{
			Name:  "count, n",
			Usage: "number of primitives to generate",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "scene generator seed",
		},
		cli.BoolFlag{
			Name:  "ground",
			Usage: "add an infinite ground plane",
		},
		cli.StringFlag{
			Name:  "split",
			Usage: "split method: median or sah",
		},
		cli.IntFlag{
			Name:  "leaf",
			Usage: "maximum primitives per leaf",
		},
		cli.IntFlag{
			Name:  "max-depth",
			Usage: "maximum tree depth",
		},
		cli.StringFlag{
			Name:  "accel",
			Usage: "accelerator: bvh or none",
		},
	}
}

// loadConfig returns the defaults overlaid with the config file and then
// with any flag set on the command line
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	if ctx.IsSet("scene") {
		cfg.Scene.Kind = ctx.String("scene")
	}
	if ctx.IsSet("count") {
		cfg.Scene.Count = ctx.Int("count")
	}
	if ctx.IsSet("seed") {
		cfg.Scene.Seed = ctx.Int64("seed")
	}
	if ctx.IsSet("ground") {
		cfg.Scene.GroundPlane = ctx.Bool("ground")
	}
	if ctx.IsSet("split") {
		cfg.BVH.Split = ctx.String("split")
	}
	if ctx.IsSet("leaf") {
		cfg.BVH.LeafThreshold = ctx.Int("leaf")
	}
	if ctx.IsSet("max-depth") {
		cfg.BVH.MaxDepth = ctx.Int("max-depth")
	}
	if ctx.IsSet("accel") {
		cfg.Accel = ctx.String("accel")
	}
	if ctx.IsSet("rays") {
		cfg.Tracer.Rays = ctx.Int("rays")
	}
	if ctx.IsSet("workers") {
		cfg.Tracer.Workers = ctx.Int("workers")
	}
	if ctx.IsSet("axis-aligned") {
		cfg.Tracer.AxisAligned = ctx.Bool("axis-aligned")
	}
	if ctx.IsSet("port") {
		cfg.Server.Port = ctx.Int("port")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid flags")
	}
	return cfg, nil
}

// setup loads the config and initialises logging
func setup(ctx *cli.Context) (*config.Config, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := setupLogging(ctx, cfg); err != nil {
		return nil, errors.Wrap(err, "initialising logging")
	}
	return cfg, nil
}

// generateBounded generates the configured scene and returns the shapes
// that go into a hierarchy, plus the number of unbounded shapes left out
func generateBounded(cfg *config.Config) ([]core.Primitive, int, error) {
	shapes, err := scene.Generate(cfg.SceneSpec())
	if err != nil {
		return nil, 0, err
	}

	bounded := make([]core.Primitive, 0, len(shapes))
	for _, shape := range shapes {
		box := shape.BoundingBox()
		if !box.IsFinite() && !box.IsEmpty() {
			continue
		}
		bounded = append(bounded, shape)
	}
	return bounded, len(shapes) - len(bounded), nil
}

// rayRegion returns the box ray origins are drawn from
func rayRegion(bounds core.AABB) core.AABB {
	if bounds.IsEmpty() {
		return core.NewAABB(core.Splat(-1), core.Splat(1))
	}
	return bounds
}

package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/config"
	"github.com/df07/go-raytracer-bvh/pkg/logger"
)

// Build generates the configured scene, builds a hierarchy over it and
// prints its statistics.
func Build(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	bvh, unbounded, err := buildHierarchy(cfg)
	if err != nil {
		return err
	}

	if ctx.Bool("validate") {
		if err := bvh.Validate(); err != nil {
			return errors.Wrap(err, "hierarchy failed validation")
		}
		logger.Info("hierarchy valid", zap.Int("nodes", len(bvh.Nodes())))
	}

	writeStatsTable(ctx, cfg, bvh.Stats(), unbounded)

	if out := ctx.String("out"); out != "" {
		if err := bvh.Save(out); err != nil {
			return err
		}
		logger.Info("node store written", zap.String("path", out))
		fmt.Fprintf(ctx.App.Writer, "node store written to %s\n", out)
	}
	return nil
}

// buildHierarchy builds a BVH over the bounded shapes of the configured scene
func buildHierarchy(cfg *config.Config) (*accel.BVH, int, error) {
	prims, unbounded, err := generateBounded(cfg)
	if err != nil {
		return nil, 0, err
	}

	opts := cfg.BuildOptions()
	opts.Logger = logger.Named("bvh")
	return accel.Build(prims, opts), unbounded, nil
}

// writeStatsTable prints the build statistics as a two column table
func writeStatsTable(ctx *cli.Context, cfg *config.Config, stats accel.Stats, unbounded int) {
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Scene", cfg.Scene.Kind})
	table.Append([]string{"Primitives", fmt.Sprintf("%d", stats.Primitives)})
	table.Append([]string{"Unbounded (outside tree)", fmt.Sprintf("%d", unbounded)})
	table.Append([]string{"Split", stats.Split})
	table.Append([]string{"Leaf threshold", fmt.Sprintf("%d", cfg.BVH.LeafThreshold)})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", stats.Nodes)})
	table.Append([]string{"Leaves", fmt.Sprintf("%d", stats.Leaves)})
	table.Append([]string{"Max depth", fmt.Sprintf("%d", stats.MaxDepth)})
	table.Append([]string{"Max leaf size", fmt.Sprintf("%d", stats.MaxLeafSize)})
	table.Append([]string{"Avg leaf size", fmt.Sprintf("%.2f", stats.AvgLeafSize())})
	table.SetFooter([]string{"Build time", stats.BuildTime.String()})
	table.Render()
}

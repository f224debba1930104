package cmd

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
	"github.com/df07/go-raytracer-bvh/pkg/logger"
	"github.com/df07/go-raytracer-bvh/pkg/tracer"
)

// benchRun is one accelerator's share of a benchmark
type benchRun struct {
	name      string
	buildTime time.Duration
	results   []tracer.Result
	stats     tracer.Stats
}

// Bench traces the same rays through a BVH and a linear scan and checks
// that both agree on every nearest hit.
func Bench(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	prims, _, err := generateBounded(cfg)
	if err != nil {
		return err
	}

	linear := accel.NewLinear(append([]core.Primitive(nil), prims...))

	opts := cfg.BuildOptions()
	opts.Logger = logger.Named("bvh")
	bvh := accel.Build(prims, opts)

	region := rayRegion(bvh.Bounds())
	rays := tracer.GenerateRays(cfg.Tracer.Rays, cfg.Tracer.Seed, region, cfg.Tracer.AxisAligned)

	traceOpts := tracer.Options{
		Workers: cfg.Tracer.Workers,
		Logger:  logger.Named("tracer"),
	}
	if ctx.Bool("shadows") {
		light := region.Center().Add(core.NewVec3(0, region.Size().Y, 0))
		traceOpts.Light = &light
	}

	runs := []*benchRun{
		{name: "bvh", buildTime: bvh.Stats().BuildTime},
		{name: "linear"},
	}
	for i, a := range []accel.Accelerator{bvh, linear} {
		results, stats, err := tracer.Trace(context.Background(), a, rays, traceOpts)
		if err != nil {
			return errors.Wrapf(err, "tracing %s", runs[i].name)
		}
		runs[i].results = results
		runs[i].stats = stats
		logger.Info("bench run finished",
			zap.String("accel", runs[i].name),
			zap.Int("rays", stats.Rays),
			zap.Duration("duration", stats.Duration),
		)
	}

	mismatches := compareResults(runs[0].results, runs[1].results)
	writeBenchTable(ctx, runs, mismatches)

	if mismatches > 0 {
		return errors.Errorf("%d of %d rays disagree between bvh and linear scan", mismatches, len(rays))
	}
	return nil
}

// compareResults counts rays whose nearest hit differs. Distances are
// compared rather than indices so coincident primitives do not count.
func compareResults(a, b []tracer.Result) int {
	mismatches := 0
	for i := range a {
		if a[i].Hit != b[i].Hit || a[i].Shadowed != b[i].Shadowed {
			mismatches++
			continue
		}
		if a[i].Hit && math.Abs(a[i].T-b[i].T) > 1e-9 {
			mismatches++
		}
	}
	return mismatches
}

func writeBenchTable(ctx *cli.Context, runs []*benchRun, mismatches int) {
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Accel", "Build time", "Rays", "Hits", "Shadow rays", "Trace time", "Rays/s", "Speedup"})

	base := runs[len(runs)-1].stats.Duration
	for _, run := range runs {
		speedup := "-"
		if run.stats.Duration > 0 {
			speedup = fmt.Sprintf("%.1fx", float64(base)/float64(run.stats.Duration))
		}
		table.Append([]string{
			run.name,
			run.buildTime.String(),
			fmt.Sprintf("%d", run.stats.Rays),
			fmt.Sprintf("%d", run.stats.Hits),
			fmt.Sprintf("%d", run.stats.ShadowRays),
			run.stats.Duration.String(),
			fmt.Sprintf("%.0f", run.stats.RaysPerSecond()),
			speedup,
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "", "Mismatches", fmt.Sprintf("%d", mismatches)})
	table.Render()
}

// Package tracer runs large batches of ray queries in parallel.
package tracer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// DefaultBatchSize is the number of rays handed to a worker at once
const DefaultBatchSize = 1024

// Options controls a Trace call
type Options struct {
	Workers   int        // 0 uses one worker per CPU
	BatchSize int        // 0 uses DefaultBatchSize
	Light     *core.Vec3 // When set, hits cast a shadow ray to this point
	Logger    *zap.Logger

	// Progress is called from the calling goroutine after each batch
	// completes, with the number of rays finished so far
	Progress func(done, total int)
}

// Trace runs a nearest-hit query for every ray, plus a shadow query for
// every hit when a light is set. Results are in ray order. When ctx is
// cancelled the partial stats are returned with the context error.
func Trace(ctx context.Context, a accel.Accelerator, rays []core.Ray, opts Options) ([]Result, Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	numBatches := (len(rays) + batchSize - 1) / batchSize
	results := make([]Result, len(rays))

	start := time.Now()
	pool := NewWorkerPool(a, opts.Workers, numBatches)
	pool.Start(ctx)

	for id := 0; id < numBatches; id++ {
		lo := id * batchSize
		hi := min(lo+batchSize, len(rays))
		pool.SubmitTask(Task{
			ID:     id,
			Rays:   rays[lo:hi],
			Light:  opts.Light,
			Out:    results,
			Offset: lo,
		})
	}

	var total Stats
	var firstErr error
	for i := 0; i < numBatches; i++ {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		total.Merge(result.Stats)
		if result.Error != nil && firstErr == nil {
			firstErr = errors.Wrapf(result.Error, "batch %d", result.TaskID)
		}
		if opts.Progress != nil {
			opts.Progress(total.Rays, len(rays))
		}
	}
	pool.Stop()
	total.Duration = time.Since(start)

	logger.Debug("trace finished",
		zap.Int("rays", total.Rays),
		zap.Int("hits", total.Hits),
		zap.Int("shadow_rays", total.ShadowRays),
		zap.Int("workers", pool.NumWorkers()),
		zap.Int("batches", numBatches),
		zap.Duration("duration", total.Duration),
	)

	if firstErr != nil {
		return results, total, firstErr
	}
	return results, total, nil
}

// GenerateRays returns n deterministic rays starting inside region with
// uniformly distributed directions. With axisAligned set some direction
// components are exactly zero.
func GenerateRays(n int, seed int64, region core.AABB, axisAligned bool) []core.Ray {
	sampler := core.NewSeededSampler(seed)
	rays := make([]core.Ray, n)
	for i := range rays {
		rays[i] = core.RandomRay(sampler, region, axisAligned && i%2 == 0)
	}
	return rays
}

package tracer

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
	"github.com/df07/go-raytracer-bvh/pkg/geometry"
)

func randomScene(n int) []core.Primitive {
	sampler := core.NewSeededSampler(17)
	region := core.NewAABB(core.Splat(-20), core.Splat(20))
	prims := make([]core.Primitive, n)
	for i := range prims {
		prims[i] = geometry.NewSphere(core.SamplePointInBox(region, sampler.Get3D()), 0.3+sampler.Get1D())
	}
	return prims
}

func TestTrace_MatchesSequentialQueries(t *testing.T) {
	prims := randomScene(500)
	linear := accel.NewLinear(append([]core.Primitive(nil), prims...))
	bvh := accel.Build(append([]core.Primitive(nil), prims...), accel.DefaultBuildOptions())

	rays := GenerateRays(3000, 1, linear.Bounds(), true)
	light := core.NewVec3(0, 50, 0)

	results, stats, err := Trace(context.Background(), bvh, rays, Options{Workers: 4, BatchSize: 100, Light: &light})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if len(results) != len(rays) || stats.Rays != len(rays) {
		t.Fatalf("Expected %d results, got %d (stats %d)", len(rays), len(results), stats.Rays)
	}

	hits, occluded := 0, 0
	for i, ray := range rays {
		want, ok := linear.NearestHit(ray)
		got := results[i]
		if got.Hit != ok || got.Index != want.Index {
			t.Fatalf("ray %d: expected (%t, %d), got (%t, %d)", i, ok, want.Index, got.Hit, got.Index)
		}
		if !ok {
			if !math.IsInf(got.T, 1) {
				t.Errorf("ray %d: expected T=+Inf on miss, got %f", i, got.T)
			}
			continue
		}
		hits++
		from := want.Record.Point.Add(want.Record.Normal.Multiply(core.Epsilon))
		if shadowed := linear.Occluded(from, light); shadowed != got.Shadowed {
			t.Fatalf("ray %d: expected shadowed=%t, got %t", i, shadowed, got.Shadowed)
		}
		if got.Shadowed {
			occluded++
		}
	}

	if stats.Hits != hits || stats.ShadowRays != hits || stats.Occluded != occluded {
		t.Errorf("Unexpected stats %+v (hits %d, occluded %d)", stats, hits, occluded)
	}
	if stats.Duration <= 0 || stats.RaysPerSecond() <= 0 {
		t.Errorf("Expected positive duration and throughput, got %+v", stats)
	}
}

func TestTrace_Empty(t *testing.T) {
	bvh := accel.Build(nil, accel.DefaultBuildOptions())
	results, stats, err := Trace(context.Background(), bvh, nil, Options{})
	if err != nil || len(results) != 0 || stats.Rays != 0 {
		t.Errorf("Expected empty trace, got %d results, %+v, %v", len(results), stats, err)
	}
	if stats.HitRate() != 0 {
		t.Errorf("Expected zero hit rate, got %f", stats.HitRate())
	}
}

func TestTrace_Cancelled(t *testing.T) {
	bvh := accel.Build(randomScene(100), accel.DefaultBuildOptions())
	rays := GenerateRays(5000, 2, bvh.Bounds(), false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, stats, err := Trace(ctx, bvh, rays, Options{Workers: 2, BatchSize: 50})
	if err == nil {
		t.Fatal("Expected error from cancelled context")
	}
	if stats.Rays != 0 {
		t.Errorf("Expected no rays traced after cancellation, got %d", stats.Rays)
	}
}

func TestWorkerPool_DefaultsToCPUCount(t *testing.T) {
	pool := NewWorkerPool(accel.NewLinear(nil), 0, 1)
	if pool.NumWorkers() < 1 {
		t.Errorf("Expected at least one worker, got %d", pool.NumWorkers())
	}
	pool.Start(context.Background())
	pool.Stop()
	if _, ok := pool.GetResult(); ok {
		t.Error("Expected result queue to be closed after Stop")
	}
}

func TestGenerateRays(t *testing.T) {
	region := core.NewAABB(core.Splat(-1), core.Splat(1))
	a := GenerateRays(100, 9, region, true)
	b := GenerateRays(100, 9, region, true)

	zeroComponents := 0
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ray %d: expected same seed to give same rays", i)
		}
		if !region.Contains(core.NewAABB(a[i].Origin, a[i].Origin)) {
			t.Errorf("ray %d: origin %v outside region", i, a[i].Origin)
		}
		if math.Abs(a[i].Direction.Length()-1) > 1e-9 {
			t.Errorf("ray %d: expected unit direction, got %v", i, a[i].Direction)
		}
		d := a[i].Direction
		if d.X == 0 || d.Y == 0 || d.Z == 0 {
			zeroComponents++
		}
	}
	if zeroComponents < 50 {
		t.Errorf("Expected half the rays to be axis aligned, got %d", zeroComponents)
	}
}

func TestStats_Merge(t *testing.T) {
	s := Stats{Rays: 10, Hits: 4}
	s.Merge(Stats{Rays: 5, Hits: 1, ShadowRays: 5, Occluded: 2})
	s.Duration = time.Second

	if s.Rays != 15 || s.Hits != 5 || s.ShadowRays != 5 || s.Occluded != 2 {
		t.Errorf("Unexpected merged stats %+v", s)
	}
	if math.Abs(s.HitRate()-1.0/3.0) > 1e-12 {
		t.Errorf("Expected hit rate 1/3, got %f", s.HitRate())
	}
	if s.RaysPerSecond() != 20 {
		t.Errorf("Expected 20 rays per second, got %f", s.RaysPerSecond())
	}
}

func TestTrace_Progress(t *testing.T) {
	bvh := accel.Build(randomScene(50), accel.DefaultBuildOptions())
	rays := GenerateRays(1000, 3, bvh.Bounds(), false)

	calls, last := 0, 0
	_, _, err := Trace(context.Background(), bvh, rays, Options{
		Workers:   3,
		BatchSize: 100,
		Progress: func(done, total int) {
			calls++
			if done < last || total != len(rays) {
				t.Errorf("Unexpected progress %d/%d after %d", done, total, last)
			}
			last = done
		},
	})
	if err != nil {
		t.Fatalf("Trace failed: %v", err)
	}
	if calls != 10 || last != len(rays) {
		t.Errorf("Expected 10 progress calls ending at %d, got %d ending at %d", len(rays), calls, last)
	}
}

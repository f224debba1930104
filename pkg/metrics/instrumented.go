package metrics

import (
	"time"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// Instrumented wraps an Accelerator and records every query
type Instrumented struct {
	inner   accel.Accelerator
	metrics *Metrics
}

// Instrument returns a wrapper around a that reports to m
func (m *Metrics) Instrument(a accel.Accelerator) *Instrumented {
	return &Instrumented{inner: a, metrics: m}
}

var _ accel.Accelerator = (*Instrumented)(nil)

func (i *Instrumented) NearestHit(ray core.Ray) (accel.Hit, bool) {
	start := time.Now()
	hit, ok := i.inner.NearestHit(ray)
	i.metrics.observe(QueryNearest, ok, start)
	return hit, ok
}

func (i *Instrumented) AnyHit(ray core.Ray, maxDistance float64) bool {
	start := time.Now()
	ok := i.inner.AnyHit(ray, maxDistance)
	i.metrics.observe(QueryAny, ok, start)
	return ok
}

func (i *Instrumented) Occluded(from, to core.Vec3) bool {
	start := time.Now()
	ok := i.inner.Occluded(from, to)
	i.metrics.observe(QueryOccluded, ok, start)
	return ok
}

func (i *Instrumented) Bounds() core.AABB { return i.inner.Bounds() }

func (i *Instrumented) Len() int { return i.inner.Len() }

// Unwrap returns the wrapped accelerator
func (i *Instrumented) Unwrap() accel.Accelerator { return i.inner }

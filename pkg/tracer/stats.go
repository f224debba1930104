package tracer

import (
	"time"

	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// Stats contains statistics about a batch of queries
type Stats struct {
	Rays       int           // Primary rays traced
	Hits       int           // Primary rays that hit something
	ShadowRays int           // Shadow rays cast from hit points
	Occluded   int           // Shadow rays that were blocked
	Duration   time.Duration // Wall time, set on the merged total
}

// Merge adds the counts of other into s
func (s *Stats) Merge(other Stats) {
	s.Rays += other.Rays
	s.Hits += other.Hits
	s.ShadowRays += other.ShadowRays
	s.Occluded += other.Occluded
}

// HitRate returns the fraction of primary rays that hit
func (s Stats) HitRate() float64 {
	if s.Rays == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Rays)
}

// RaysPerSecond returns primary plus shadow rays per second of wall time
func (s Stats) RaysPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Rays+s.ShadowRays) / s.Duration.Seconds()
}

// Result is the outcome of one primary ray
type Result struct {
	Hit      bool
	Index    int     // Hit primitive, -1 on a miss
	T        float64 // +Inf on a miss
	Point    core.Vec3
	Normal   core.Vec3
	Shadowed bool // The light is blocked from the hit point
}

package scene

import (
	"time"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// Snapshot is one immutable build of a scene. Bounded shapes live in the
// accelerator; unbounded ones (planes) are tested linearly on every query.
// Hit indices refer to the scene's shape list.
type Snapshot struct {
	accel          accel.Accelerator
	boundedIndex   []int // accelerator input index -> shape index
	unbounded      []core.Primitive
	unboundedIndex []int
	shapeCount     int
	stats          *accel.Stats
	version        uint64
	builtAt        time.Time
	buildTime      time.Duration
}

var _ accel.Accelerator = (*Snapshot)(nil)

// NearestHit returns the closest hit over bounded and unbounded shapes
func (s *Snapshot) NearestHit(ray core.Ray) (accel.Hit, bool) {
	best, ok := s.accel.NearestHit(ray)
	if ok {
		best.Index = s.boundedIndex[best.Index]
	}

	for i, p := range s.unbounded {
		rec := p.Intersect(ray)
		if rec.Hit && rec.T > core.Epsilon && rec.T < best.Record.T {
			best = accel.Hit{Primitive: p, Index: s.unboundedIndex[i], Record: rec}
			ok = true
		}
	}

	return best, ok
}

// AnyHit reports whether any shape is hit with Epsilon < T < maxDistance
func (s *Snapshot) AnyHit(ray core.Ray, maxDistance float64) bool {
	for _, p := range s.unbounded {
		rec := p.Intersect(ray)
		if rec.Hit && rec.T > core.Epsilon && rec.T < maxDistance {
			return true
		}
	}
	return s.accel.AnyHit(ray, maxDistance)
}

// Occluded reports whether the segment between two points is blocked
func (s *Snapshot) Occluded(from, to core.Vec3) bool {
	ray, distance := core.NewRayTo(from, to)
	if distance <= core.Epsilon {
		return false
	}
	return s.AnyHit(ray, distance)
}

// Bounds returns the box enclosing the bounded shapes
func (s *Snapshot) Bounds() core.AABB { return s.accel.Bounds() }

// Len returns the number of shapes in the scene
func (s *Snapshot) Len() int { return s.shapeCount }

// Accelerator returns the structure holding the bounded shapes
func (s *Snapshot) Accelerator() accel.Accelerator { return s.accel }

// BVH returns the hierarchy, or nil when the scene uses linear search
func (s *Snapshot) BVH() *accel.BVH {
	bvh, _ := s.accel.(*accel.BVH)
	return bvh
}

// Stats returns the hierarchy statistics, or nil for linear search
func (s *Snapshot) Stats() *accel.Stats { return s.stats }

// Unbounded returns the number of shapes kept outside the accelerator
func (s *Snapshot) Unbounded() int { return len(s.unbounded) }

// Version increases by one on every rebuild
func (s *Snapshot) Version() uint64 { return s.version }

// BuiltAt returns when the snapshot was published
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// BuildTime returns how long assembling the snapshot took
func (s *Snapshot) BuildTime() time.Duration { return s.buildTime }

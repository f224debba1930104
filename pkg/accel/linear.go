package accel

import (
	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// Linear tests every primitive for every query. It is the reference
// result the hierarchy must reproduce, and the "accel: none" option.
type Linear struct {
	prims  []core.Primitive
	bounds core.AABB
}

// NewLinear wraps prims without reordering them
func NewLinear(prims []core.Primitive) *Linear {
	bounds := core.EmptyAABB()
	for _, p := range prims {
		bounds = bounds.Union(p.BoundingBox())
	}
	return &Linear{prims: prims, bounds: bounds}
}

// NearestHit scans all primitives and keeps the closest hit
func (l *Linear) NearestHit(ray core.Ray) (Hit, bool) {
	best := noHit()
	for i, p := range l.prims {
		rec := p.Intersect(ray)
		if rec.Hit && rec.T > core.Epsilon && rec.T < best.Record.T {
			best = Hit{Primitive: p, Index: i, Record: rec}
		}
	}
	return best, best.Record.Hit
}

// AnyHit scans primitives until one is hit within maxDistance
func (l *Linear) AnyHit(ray core.Ray, maxDistance float64) bool {
	for _, p := range l.prims {
		rec := p.Intersect(ray)
		if rec.Hit && rec.T > core.Epsilon && rec.T < maxDistance {
			return true
		}
	}
	return false
}

// Occluded reports whether the segment between two points is blocked
func (l *Linear) Occluded(from, to core.Vec3) bool {
	return occluded(l, from, to)
}

// Bounds returns the union of all primitive boxes
func (l *Linear) Bounds() core.AABB { return l.bounds }

// Len returns the number of primitives
func (l *Linear) Len() int { return len(l.prims) }

// Primitives returns the wrapped primitives in input order
func (l *Linear) Primitives() []core.Primitive { return l.prims }

package accel

import (
	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// Hit is the result of a nearest-hit query
type Hit struct {
	Primitive core.Primitive // The primitive that was hit
	Index     int            // Position of the primitive in the slice originally passed in
	Record    core.HitRecord // Intersection details
}

func noHit() Hit {
	return Hit{Index: -1, Record: core.NoHit()}
}

// Accelerator answers ray queries over a fixed set of primitives
type Accelerator interface {
	// NearestHit returns the closest hit with T > Epsilon, if any
	NearestHit(ray core.Ray) (Hit, bool)
	// AnyHit reports whether any primitive is hit with Epsilon < T < maxDistance
	AnyHit(ray core.Ray, maxDistance float64) bool
	// Occluded reports whether the segment between two points is blocked
	Occluded(from, to core.Vec3) bool
	// Bounds returns the box enclosing every primitive
	Bounds() core.AABB
	// Len returns the number of primitives
	Len() int
}

var (
	_ Accelerator = (*BVH)(nil)
	_ Accelerator = (*Linear)(nil)
)

// Primitives returns the primitives in leaf order. The slice is shared
// and must not be modified.
func (bvh *BVH) Primitives() []core.Primitive { return bvh.prims }

// Nodes returns the node store. Node 0 is the root. The slice is shared
// and must not be modified.
func (bvh *BVH) Nodes() []Node { return bvh.nodes }

// Order maps each position in Primitives back to its input index
func (bvh *BVH) Order() []int { return bvh.order }

// Stats returns build statistics
func (bvh *BVH) Stats() Stats { return bvh.stats }

// Len returns the number of primitives in the hierarchy
func (bvh *BVH) Len() int { return len(bvh.prims) }

// Bounds returns the root box, padded by BoxEpsilon
func (bvh *BVH) Bounds() core.AABB { return bvh.nodes[0].Bounds }

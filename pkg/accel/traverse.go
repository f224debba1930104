package accel

import (
	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// stackSize covers the default maximum depth without growing
const stackSize = 72

// NearestHit returns the closest primitive hit by ray, with exactly the
// result a brute-force scan over all primitives would give.
func (bvh *BVH) NearestHit(ray core.Ray) (Hit, bool) {
	best := noHit()
	if len(bvh.prims) == 0 {
		return best, false
	}

	invDir := ray.Direction.Inverse()

	var buf [stackSize]uint32
	stack := append(buf[:0], 0)

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &bvh.nodes[idx]
		tEnter, tExit := node.Bounds.Intersect(ray.Origin, invDir)
		if tEnter > tExit || tExit < 0 || tEnter >= best.Record.T {
			continue
		}

		if node.Leaf {
			end := node.Offset + node.Count
			for i := node.Offset; i < end; i++ {
				rec := bvh.prims[i].Intersect(ray)
				if rec.Hit && rec.T > core.Epsilon && rec.T < best.Record.T {
					best = Hit{Primitive: bvh.prims[i], Index: bvh.order[i], Record: rec}
				}
			}
			continue
		}

		// Visit the child on the ray's side of the split first
		near, far := node.Left(), node.Right()
		if ray.Direction.Axis(int(node.Axis)) < 0 {
			near, far = far, near
		}
		stack = append(stack, far, near)
	}

	return best, best.Record.Hit
}

// AnyHit reports whether anything lies along ray strictly between Epsilon
// and maxDistance. It stops at the first such hit.
func (bvh *BVH) AnyHit(ray core.Ray, maxDistance float64) bool {
	if len(bvh.prims) == 0 {
		return false
	}

	invDir := ray.Direction.Inverse()

	var buf [stackSize]uint32
	stack := append(buf[:0], 0)

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &bvh.nodes[idx]
		tEnter, tExit := node.Bounds.Intersect(ray.Origin, invDir)
		if tEnter > tExit || tExit < 0 || tEnter >= maxDistance {
			continue
		}

		if node.Leaf {
			end := node.Offset + node.Count
			for i := node.Offset; i < end; i++ {
				rec := bvh.prims[i].Intersect(ray)
				if rec.Hit && rec.T > core.Epsilon && rec.T < maxDistance {
					return true
				}
			}
			continue
		}

		near, far := node.Left(), node.Right()
		if ray.Direction.Axis(int(node.Axis)) < 0 {
			near, far = far, near
		}
		stack = append(stack, far, near)
	}

	return false
}

// Occluded reports whether anything blocks the segment from one point to
// another, e.g. a surface point and a light
func (bvh *BVH) Occluded(from, to core.Vec3) bool {
	return occluded(bvh, from, to)
}

func occluded(a Accelerator, from, to core.Vec3) bool {
	ray, distance := core.NewRayTo(from, to)
	if distance <= core.Epsilon {
		return false
	}
	return a.AnyHit(ray, distance)
}

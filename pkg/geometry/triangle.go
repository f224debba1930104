package geometry

import (
	"math"

	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3 // The three vertices
	normal     core.Vec3 // Cached normal vector
	bbox       core.AABB // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) *Triangle {
	t := &Triangle{
		V0: v0,
		V1: v1,
		V2: v2,
	}

	// Precompute normal and bounding box for efficiency
	t.computeNormal()
	t.computeBoundingBox()

	return t
}

// computeNormal calculates and caches the triangle's normal vector
func (t *Triangle) computeNormal() {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	t.normal = edge1.Cross(edge2).Normalize()
}

// computeBoundingBox calculates and caches the triangle's bounding box.
// Axis-aligned triangles have a flat box, so it is inflated a little.
func (t *Triangle) computeBoundingBox() {
	t.bbox = core.NewAABBFromPoints(t.V0, t.V1, t.V2).Expand(core.Epsilon)
}

// outside reports whether a barycentric coordinate lies outside [0, 1]
// by more than the tolerance
func outside(c float64) bool {
	return (c < 0 && math.Abs(c) > core.Epsilon) || (c > 1 && math.Abs(c-1) > core.Epsilon)
}

// Intersect tests the ray against the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Intersect(ray core.Ray) core.HitRecord {
	const parallelEpsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if det > -parallelEpsilon && det < parallelEpsilon {
		return core.NoHit()
	}

	invDet := 1.0 / det
	s := ray.Origin.Subtract(t.V0)
	u := invDet * s.Dot(h)
	if outside(u) {
		return core.NoHit()
	}

	q := s.Cross(edge1)
	v := invDet * ray.Direction.Dot(q)
	if outside(v) || outside(u+v) {
		return core.NoHit()
	}

	tParam := invDet * edge2.Dot(q)
	if tParam <= core.Epsilon {
		return core.NoHit()
	}

	hit := core.HitRecord{
		Hit:   true,
		T:     tParam,
		Point: ray.At(tParam),
	}
	hit.SetFaceNormal(ray, t.normal)

	return hit
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Normal returns the triangle's geometric normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

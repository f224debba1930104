package core

import "math"

// HitRecord contains information about a ray-primitive intersection
type HitRecord struct {
	Hit    bool    // Whether the ray hit anything at all
	T      float64 // Parameter t along the ray
	Point  Vec3    // Point of intersection
	Normal Vec3    // Surface normal at intersection, facing the ray
}

// NoHit returns the "nothing found" record. It is distinct from a hit at
// infinity because Hit is false.
func NoHit() HitRecord {
	return HitRecord{T: math.Inf(1)}
}

// SetFaceNormal stores outwardNormal flipped, if needed, to face against the ray
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	if ray.Direction.Dot(outwardNormal) > 0 {
		h.Normal = outwardNormal.Negate()
	} else {
		h.Normal = outwardNormal
	}
}

// Primitive is anything an acceleration structure can hold: it knows its
// own extent and how to intersect a ray. Intersect returns the nearest hit
// with T > Epsilon, or NoHit.
type Primitive interface {
	BoundingBox() AABB
	Intersect(ray Ray) HitRecord
}

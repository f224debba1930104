package core

import "math"

const (
	// Epsilon is the minimum distance along a ray at which a hit counts.
	// Anything closer is treated as the ray re-hitting the surface it left.
	Epsilon = 1e-4

	// BoxEpsilon is the margin every stored node box is padded by so that
	// primitives lying exactly on a box face are not missed due to rounding.
	BoxEpsilon = 1e-4
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the identity element for Union: an inverted box that
// contains nothing and is swallowed by the first real box folded into it.
func EmptyAABB() AABB {
	return AABB{
		Min: Splat(math.Inf(1)),
		Max: Splat(math.Inf(-1)),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return EmptyAABB()
	}

	box := AABB{Min: points[0], Max: points[0]}
	for _, point := range points[1:] {
		box.Min = box.Min.Min(point)
		box.Max = box.Max.Max(point)
	}
	return box
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		Min: aabb.Min.Min(other.Min),
		Max: aabb.Max.Max(other.Max),
	}
}

// Intersect runs the slab test against a ray given by its origin and
// component-wise inverse direction. The box is missed when
// tEnter > tExit or tExit < 0.
//
// Zero direction components arrive here as signed infinities. When the
// origin also sits exactly on a slab plane the product is 0*Inf = NaN; the
// ordered comparisons below are false for NaN, so such a term is dropped
// instead of poisoning the interval.
func (aabb AABB) Intersect(origin, invDir Vec3) (tEnter, tExit float64) {
	tEnter = math.Inf(-1)
	tExit = math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		inv := invDir.Axis(axis)
		o := origin.Axis(axis)

		t0 := (aabb.Min.Axis(axis) - o) * inv
		t1 := (aabb.Max.Axis(axis) - o) * inv
		if inv < 0 {
			t0, t1 = t1, t0
		}

		if t0 > tEnter {
			tEnter = t0
		}
		if t1 < tExit {
			tExit = t1
		}
	}

	return tEnter, tExit
}

// Hit reports whether the ray overlaps the box anywhere in [tMin, tMax]
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	tEnter, tExit := aabb.Intersect(ray.Origin, ray.Direction.Inverse())
	if tEnter > tMin {
		tMin = tEnter
	}
	if tExit < tMax {
		tMax = tExit
	}
	return tMin <= tMax
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB
func (aabb AABB) SurfaceArea() float64 {
	if aabb.IsEmpty() {
		return 0
	}
	size := aabb.Size()
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0 // X axis
	}
	if size.Y > size.Z {
		return 1 // Y axis
	}
	return 2 // Z axis
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// IsEmpty reports whether the box is inverted on any axis
func (aabb AABB) IsEmpty() bool {
	return !aabb.IsValid()
}

// IsFinite reports whether both corners are finite, i.e. the box can be
// stored in a hierarchy. Unbounded primitives such as planes fail this.
func (aabb AABB) IsFinite() bool {
	return aabb.Min.IsFinite() && aabb.Max.IsFinite()
}

// Contains reports whether other lies entirely inside this box
func (aabb AABB) Contains(other AABB) bool {
	return aabb.Min.X <= other.Min.X && aabb.Min.Y <= other.Min.Y && aabb.Min.Z <= other.Min.Z &&
		aabb.Max.X >= other.Max.X && aabb.Max.Y >= other.Max.Y && aabb.Max.Z >= other.Max.Z
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := Splat(amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}

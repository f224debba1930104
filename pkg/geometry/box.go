package geometry

import (
	"math"

	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// Box represents a solid axis-aligned box primitive
type Box struct {
	Min core.Vec3 // Minimum corner
	Max core.Vec3 // Maximum corner
}

// NewBox creates a new box spanning the two corners in any order
func NewBox(a, b core.Vec3) *Box {
	return &Box{
		Min: a.Min(b),
		Max: a.Max(b),
	}
}

// NewCenteredBox creates a box from its center and half-extents
func NewCenteredBox(center, halfSize core.Vec3) *Box {
	return NewBox(center.Subtract(halfSize), center.Add(halfSize))
}

// faceNormal is the outward normal of the face crossed on axis, given the
// sign of the inverse direction and whether the ray is entering or leaving
func faceNormal(axis int, inv float64, entering bool) core.Vec3 {
	sign := 1.0
	if (inv >= 0) == entering {
		sign = -1.0
	}
	var n core.Vec3
	switch axis {
	case 0:
		n.X = sign
	case 1:
		n.Y = sign
	default:
		n.Z = sign
	}
	return n
}

// Intersect tests the ray against the box's six faces. A ray starting
// inside the box reports the face it leaves through.
func (b *Box) Intersect(ray core.Ray) core.HitRecord {
	inv := ray.Direction.Inverse()

	tEnter, tExit := math.Inf(-1), math.Inf(1)
	enterAxis, exitAxis := -1, -1

	for axis := 0; axis < 3; axis++ {
		o := ray.Origin.Axis(axis)
		d := inv.Axis(axis)

		t0 := (b.Min.Axis(axis) - o) * d
		t1 := (b.Max.Axis(axis) - o) * d
		if d < 0 {
			t0, t1 = t1, t0
		}

		if t0 > tEnter {
			tEnter = t0
			enterAxis = axis
		}
		if t1 < tExit {
			tExit = t1
			exitAxis = axis
		}
	}

	if tEnter >= tExit || tExit <= core.Epsilon {
		return core.NoHit()
	}

	hit := core.HitRecord{Hit: true}
	if tEnter > core.Epsilon && enterAxis >= 0 {
		hit.T = tEnter
		hit.SetFaceNormal(ray, faceNormal(enterAxis, inv.Axis(enterAxis), true))
	} else {
		if exitAxis < 0 {
			return core.NoHit()
		}
		hit.T = tExit
		hit.SetFaceNormal(ray, faceNormal(exitAxis, inv.Axis(exitAxis), false))
	}
	hit.Point = ray.At(hit.T)

	return hit
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return core.NewAABB(b.Min, b.Max)
}

package geometry

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// Plane represents an infinite plane in Hessian normal form: n·p + d = 0
type Plane struct {
	Normal core.Vec3 // Unit normal vector
	D      float64   // Signed distance term
}

// NewPlane creates a plane from a normal and the Hessian distance term.
// The normal is normalized and d rescaled to match.
func NewPlane(normal core.Vec3, d float64) *Plane {
	length := normal.Length()
	return &Plane{
		Normal: normal.Multiply(1.0 / length),
		D:      d / length,
	}
}

// NewPlaneThroughPoint creates a plane through point with the given normal
func NewPlaneThroughPoint(point, normal core.Vec3) *Plane {
	n := normal.Normalize()
	return &Plane{Normal: n, D: -n.Dot(point)}
}

// NewPlaneFromPoints creates the plane through three points. The normal
// follows the winding (b-a)×(c-a).
func NewPlaneFromPoints(a, b, c core.Vec3) (*Plane, error) {
	n := b.Subtract(a).Cross(c.Subtract(a))
	if n.LengthSquared() < 1e-24 {
		return nil, errors.Errorf("degenerate plane: points %v, %v, %v are collinear", a, b, c)
	}
	return NewPlaneThroughPoint(a, n), nil
}

// Distance returns the signed distance from point to the plane
func (p *Plane) Distance(point core.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Intersect tests if a ray intersects with the plane
func (p *Plane) Intersect(ray core.Ray) core.HitRecord {
	denominator := ray.Direction.Dot(p.Normal)

	// Ray parallel to plane
	if math.Abs(denominator) < 1e-12 {
		return core.NoHit()
	}

	t := -p.Distance(ray.Origin) / denominator
	if t <= core.Epsilon {
		return core.NoHit()
	}

	hit := core.HitRecord{
		Hit:   true,
		T:     t,
		Point: ray.At(t),
	}
	hit.SetFaceNormal(ray, p.Normal)

	return hit
}

// BoundingBox returns an infinite box. Planes are never stored in a
// hierarchy; callers check IsFinite and keep them aside.
func (p *Plane) BoundingBox() core.AABB {
	return core.NewAABB(core.Splat(math.Inf(-1)), core.Splat(math.Inf(1)))
}

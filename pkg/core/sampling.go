package core

import (
	"math"
	"math/rand"
)

// Vec2 holds a pair of samples
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Sampler provides random sampling for ray generation
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic source
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	return NewVec3(x, y, z)
}

// SamplePointInBox maps a unit-cube sample into the given box
func SamplePointInBox(box AABB, sample Vec3) Vec3 {
	return box.Min.Add(box.Size().MultiplyVec(sample))
}

// RandomRay builds a ray whose origin lies inside box and whose direction is
// uniform on the unit sphere. When axisAligned is set, one or two direction
// components are zeroed so the slab test sees infinite inverse directions.
func RandomRay(sampler Sampler, box AABB, axisAligned bool) Ray {
	origin := SamplePointInBox(box, sampler.Get3D())
	direction := SampleOnUnitSphere(sampler.Get2D())

	if axisAligned {
		switch int(sampler.Get1D() * 3) {
		case 0:
			direction.X = 0
		case 1:
			direction.Y, direction.Z = 0, 0
		default:
			direction.X, direction.Z = 0, 0
		}
		if direction.LengthSquared() == 0 {
			direction.Y = 1
		}
		direction = direction.Normalize()
	}

	return NewRay(origin, direction)
}

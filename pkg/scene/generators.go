package scene

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
	"github.com/df07/go-raytracer-bvh/pkg/geometry"
)

// Scene kinds understood by Generate
const (
	KindSphereGrid        = "sphere-grid"
	KindRandomSpheres     = "random-spheres"
	KindRandomTriangles   = "random-triangles"
	KindCoincidentSpheres = "coincident-spheres"
	KindThreeSpheres      = "three-spheres"
	KindTerrain           = "terrain"
)

// Spec describes a procedural scene
type Spec struct {
	Kind        string
	Count       int     // Approximate number of primitives
	Seed        int64   // Random seed for the random kinds
	Radius      float64 // Sphere radius, or triangle size
	Extent      float64 // Edge length of the cube primitives are spread over
	GroundPlane bool    // Add an infinite ground plane below the primitives
}

type generator struct {
	description string
	generate    func(spec Spec) ([]core.Primitive, error)
}

var generators = map[string]generator{
	KindSphereGrid:        {"spheres on a regular 3D grid", sphereGrid},
	KindRandomSpheres:     {"randomly placed spheres of varying radius", randomSpheres},
	KindRandomTriangles:   {"randomly placed and oriented triangles", randomTriangles},
	KindCoincidentSpheres: {"identical spheres sharing one center", coincidentSpheres},
	KindThreeSpheres:      {"three unit spheres in a row at z = -5", threeSpheres},
	KindTerrain:           {"a random height field triangle mesh", terrain},
}

// Kinds returns the known scene kinds in sorted order
func Kinds() []string {
	kinds := make([]string, 0, len(generators))
	for kind := range generators {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// IsKnownKind reports whether Generate accepts kind
func IsKnownKind(kind string) bool {
	_, ok := generators[kind]
	return ok
}

// Describe returns a one-line description of a scene kind
func Describe(kind string) string {
	return generators[kind].description
}

// Generate creates the primitives for spec
func Generate(spec Spec) ([]core.Primitive, error) {
	gen, ok := generators[spec.Kind]
	if !ok {
		return nil, errors.Errorf("unknown scene kind %q", spec.Kind)
	}
	if spec.Count < 0 {
		return nil, errors.Errorf("negative primitive count %d", spec.Count)
	}
	if spec.Radius <= 0 || spec.Extent <= 0 {
		return nil, errors.Errorf("radius and extent must be positive, got %g and %g", spec.Radius, spec.Extent)
	}

	prims, err := gen.generate(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "generating %s", spec.Kind)
	}

	if spec.GroundPlane {
		groundY := -spec.Extent/2 - spec.Radius - 1
		prims = append(prims, geometry.NewPlaneThroughPoint(core.NewVec3(0, groundY, 0), core.NewVec3(0, 1, 0)))
	}
	return prims, nil
}

// sphereGrid fills the smallest cube of grid cells holding Count spheres
func sphereGrid(spec Spec) ([]core.Primitive, error) {
	side := int(math.Ceil(math.Cbrt(float64(spec.Count))))
	if side == 0 {
		return nil, nil
	}
	spacing := spec.Extent / float64(side)
	origin := core.Splat(-spec.Extent/2 + spacing/2)

	prims := make([]core.Primitive, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		x := i % side
		y := (i / side) % side
		z := i / (side * side)
		center := origin.Add(core.NewVec3(float64(x), float64(y), float64(z)).Multiply(spacing))
		prims = append(prims, geometry.NewSphere(center, spec.Radius))
	}
	return prims, nil
}

func randomPoint(random *rand.Rand, extent float64) core.Vec3 {
	return core.NewVec3(
		(random.Float64()-0.5)*extent,
		(random.Float64()-0.5)*extent,
		(random.Float64()-0.5)*extent,
	)
}

// randomSpheres scatters spheres with radius in [Radius/2, Radius]
func randomSpheres(spec Spec) ([]core.Primitive, error) {
	random := rand.New(rand.NewSource(spec.Seed))
	prims := make([]core.Primitive, spec.Count)
	for i := range prims {
		radius := spec.Radius * (0.5 + 0.5*random.Float64())
		prims[i] = geometry.NewSphere(randomPoint(random, spec.Extent), radius)
	}
	return prims, nil
}

// randomTriangles scatters triangles whose vertices lie within Radius of a random center
func randomTriangles(spec Spec) ([]core.Primitive, error) {
	random := rand.New(rand.NewSource(spec.Seed))
	sampler := core.NewRandomSampler(random)
	prims := make([]core.Primitive, spec.Count)
	for i := range prims {
		center := randomPoint(random, spec.Extent)
		var v [3]core.Vec3
		for j := range v {
			v[j] = center.Add(core.SampleOnUnitSphere(sampler.Get2D()).Multiply(spec.Radius))
		}
		prims[i] = geometry.NewTriangle(v[0], v[1], v[2])
	}
	return prims, nil
}

// coincidentSpheres stacks Count identical spheres at the origin
func coincidentSpheres(spec Spec) ([]core.Primitive, error) {
	prims := make([]core.Primitive, spec.Count)
	for i := range prims {
		prims[i] = geometry.NewSphere(core.NewVec3(0, 0, 0), spec.Radius)
	}
	return prims, nil
}

// threeSpheres ignores the spec sizes; it is a fixed reference layout
func threeSpheres(Spec) ([]core.Primitive, error) {
	return []core.Primitive{
		geometry.NewSphere(core.NewVec3(0, 0, -5), 1),
		geometry.NewSphere(core.NewVec3(3, 0, -5), 1),
		geometry.NewSphere(core.NewVec3(-3, 0, -5), 1),
	}, nil
}

// terrain builds a single mesh of roughly Count triangles over the XZ
// square of size Extent, with random heights up to Radius
func terrain(spec Spec) ([]core.Primitive, error) {
	cells := int(math.Sqrt(float64(spec.Count) / 2))
	if cells < 1 {
		return nil, nil
	}

	random := rand.New(rand.NewSource(spec.Seed))
	step := spec.Extent / float64(cells)
	n := cells + 1

	vertices := make([]core.Vec3, 0, n*n)
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			vertices = append(vertices, core.NewVec3(
				-spec.Extent/2+float64(x)*step,
				random.Float64()*spec.Radius,
				-spec.Extent/2+float64(z)*step,
			))
		}
	}

	// Mesh indices are 1-based
	faces := make([]int, 0, cells*cells*6)
	for z := 0; z < cells; z++ {
		for x := 0; x < cells; x++ {
			i := z*n + x + 1
			faces = append(faces, i, i+1, i+n, i+1, i+n+1, i+n)
		}
	}

	mesh, err := geometry.NewTriangleMesh(vertices, faces, accel.DefaultBuildOptions())
	if err != nil {
		return nil, err
	}
	return []core.Primitive{mesh}, nil
}

package geometry

import (
	"github.com/pkg/errors"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// TriangleMesh represents a collection of triangles with efficient ray intersection.
// It uses its own hierarchy for intersection tests, so a scene can hold the
// mesh as a single primitive.
type TriangleMesh struct {
	triangles []*Triangle // Triangles in face order
	bvh       *accel.BVH  // Hierarchy over the triangles
}

// ResolveIndex converts a mesh face index into a 0-based vertex position.
// Positive indices count from 1; negative indices count back from the end,
// so -1 is the last vertex.
func ResolveIndex(index, vertexCount int) (int, error) {
	var resolved int
	switch {
	case index > 0:
		resolved = index - 1
	case index < 0:
		resolved = vertexCount + index
	default:
		return 0, errors.New("face index 0 is invalid: indices start at 1")
	}
	if resolved < 0 || resolved >= vertexCount {
		return 0, errors.Errorf("face index %d out of range for %d vertices", index, vertexCount)
	}
	return resolved, nil
}

// NewTriangleMesh creates a new triangle mesh from vertices and face indices.
// Every group of three indices in faces forms a triangle; see ResolveIndex
// for the index convention.
func NewTriangleMesh(vertices []core.Vec3, faces []int, opts accel.BuildOptions) (*TriangleMesh, error) {
	if len(faces)%3 != 0 {
		return nil, errors.Errorf("face index count %d is not a multiple of 3", len(faces))
	}

	numTriangles := len(faces) / 3
	triangles := make([]*Triangle, numTriangles)
	prims := make([]core.Primitive, numTriangles)

	for i := 0; i < numTriangles; i++ {
		var v [3]core.Vec3
		for j := 0; j < 3; j++ {
			idx, err := ResolveIndex(faces[i*3+j], len(vertices))
			if err != nil {
				return nil, errors.Wrapf(err, "face %d", i)
			}
			v[j] = vertices[idx]
		}
		triangles[i] = NewTriangle(v[0], v[1], v[2])
		prims[i] = triangles[i]
	}

	return &TriangleMesh{
		triangles: triangles,
		bvh:       accel.Build(prims, opts),
	}, nil
}

// Intersect returns the nearest triangle hit
func (tm *TriangleMesh) Intersect(ray core.Ray) core.HitRecord {
	hit, ok := tm.bvh.NearestHit(ray)
	if !ok {
		return core.NoHit()
	}
	return hit.Record
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	if len(tm.triangles) == 0 {
		return core.EmptyAABB()
	}
	return tm.bvh.Bounds()
}

// TriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) TriangleCount() int {
	return len(tm.triangles)
}

// Triangles returns the individual triangles in face order
func (tm *TriangleMesh) Triangles() []*Triangle {
	return tm.triangles
}

// Primitives returns the triangles as primitives, for flattening a mesh
// into a scene-wide hierarchy
func (tm *TriangleMesh) Primitives() []core.Primitive {
	prims := make([]core.Primitive, len(tm.triangles))
	for i, t := range tm.triangles {
		prims[i] = t
	}
	return prims
}

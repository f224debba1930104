package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/df07/go-raytracer-bvh/pkg/core"
	"github.com/df07/go-raytracer-bvh/pkg/geometry"
	"github.com/df07/go-raytracer-bvh/pkg/scene"
)

// coordLimit bounds every coordinate accepted from a query string
const coordLimit = 1e9

// InspectResponse represents the JSON response for a nearest-hit query
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Index        int                    `json:"index"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
	Version      uint64                 `json:"version"`
}

// OccludedResponse represents the JSON response for a segment query
type OccludedResponse struct {
	Occluded bool    `json:"occluded"`
	Distance float64 `json:"distance"`
	Version  uint64  `json:"version"`
}

// StatsResponse describes the current snapshot
type StatsResponse struct {
	Scene     string          `json:"scene"`
	Version   uint64          `json:"version"`
	BuiltAt   time.Time       `json:"builtAt"`
	BuildMs   float64         `json:"buildMs"`
	Shapes    int             `json:"shapes"`
	Unbounded int             `json:"unbounded"`
	Bounds    *[2][3]float64  `json:"bounds,omitempty"` // nil when nothing bounded
	BVH       *HierarchyStats `json:"bvh,omitempty"`    // nil for the linear accelerator
}

// HierarchyStats mirrors accel.Stats for JSON
type HierarchyStats struct {
	Primitives  int     `json:"primitives"`
	Nodes       int     `json:"nodes"`
	Leaves      int     `json:"leaves"`
	MaxDepth    int     `json:"maxDepth"`
	MaxLeafSize int     `json:"maxLeafSize"`
	AvgLeafSize float64 `json:"avgLeafSize"`
	Split       string  `json:"split"`
	BuildMs     float64 `json:"buildMs"`
}

// ShapeRequest is the body of POST /api/shapes
type ShapeRequest struct {
	Type     string        `json:"type"` // sphere, box or triangle
	Center   [3]float64    `json:"center"`
	Radius   float64       `json:"radius"`
	Min      [3]float64    `json:"min"`
	Max      [3]float64    `json:"max"`
	Vertices [3][3]float64 `json:"vertices"`
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func fromArray(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}

// parseVec3Param reads prefix+"x", prefix+"y" and prefix+"z"
func parseVec3Param(values url.Values, prefix string, defaultValue core.Vec3) (core.Vec3, error) {
	x, err := parseFloatParam(values, prefix+"x", defaultValue.X, -coordLimit, coordLimit)
	if err != nil {
		return core.Vec3{}, err
	}
	y, err := parseFloatParam(values, prefix+"y", defaultValue.Y, -coordLimit, coordLimit)
	if err != nil {
		return core.Vec3{}, err
	}
	z, err := parseFloatParam(values, prefix+"z", defaultValue.Z, -coordLimit, coordLimit)
	if err != nil {
		return core.Vec3{}, err
	}
	return core.NewVec3(x, y, z), nil
}

// parseRay reads the origin (ox, oy, oz) and direction (dx, dy, dz)
func parseRay(values url.Values) (core.Ray, error) {
	origin, err := parseVec3Param(values, "o", core.Vec3{})
	if err != nil {
		return core.Ray{}, err
	}
	direction, err := parseVec3Param(values, "d", core.NewVec3(0, 0, -1))
	if err != nil {
		return core.Ray{}, err
	}
	if direction.LengthSquared() == 0 {
		return core.Ray{}, errors.New("direction must not be zero")
	}
	return core.NewRay(origin, direction), nil
}

// handleNearest casts a ray and reports the closest shape it hits
func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	ray, err := parseRay(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap := s.scene.Snapshot()
	hit, ok := s.metrics.Instrument(snap).NearestHit(ray)

	resp := InspectResponse{Hit: ok, Index: -1, Version: snap.Version()}
	if ok {
		resp.Index = hit.Index
		resp.Point = toArray(hit.Record.Point)
		resp.Normal = toArray(hit.Record.Normal)
		resp.Distance = hit.Record.T
		resp.GeometryType, resp.Properties = s.extractGeometryInfo(hit.Primitive)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleOccluded reports whether the segment from (fx, fy, fz) to
// (tx, ty, tz) is blocked
func (s *Server) handleOccluded(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	from, err := parseVec3Param(values, "f", core.Vec3{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parseVec3Param(values, "t", core.Vec3{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snap := s.scene.Snapshot()
	writeJSON(w, http.StatusOK, OccludedResponse{
		Occluded: s.metrics.Instrument(snap).Occluded(from, to),
		Distance: to.Subtract(from).Length(),
		Version:  snap.Version(),
	})
}

// extractGeometryInfo describes a primitive with type assertions
func (s *Server) extractGeometryInfo(p core.Primitive) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch g := p.(type) {
	case *geometry.Sphere:
		properties["center"] = toArray(g.Center)
		properties["radius"] = g.Radius
		return "sphere", properties

	case *geometry.Box:
		properties["min"] = toArray(g.Min)
		properties["max"] = toArray(g.Max)
		return "box", properties

	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{toArray(g.V0), toArray(g.V1), toArray(g.V2)}
		properties["normal"] = toArray(g.Normal())
		return "triangle", properties

	case *geometry.Plane:
		properties["normal"] = toArray(g.Normal)
		properties["d"] = g.D
		return "plane", properties

	case *geometry.TriangleMesh:
		box := g.BoundingBox()
		properties["triangleCount"] = g.TriangleCount()
		properties["min"] = toArray(box.Min)
		properties["max"] = toArray(box.Max)
		return "mesh", properties

	default:
		return "unknown", properties
	}
}

// handleStats describes the current snapshot and its hierarchy
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats(s.scene.Snapshot()))
}

func (s *Server) stats(snap *scene.Snapshot) StatsResponse {
	resp := StatsResponse{
		Scene:     s.scene.Name(),
		Version:   snap.Version(),
		BuiltAt:   snap.BuiltAt(),
		BuildMs:   float64(snap.BuildTime().Microseconds()) / 1000,
		Shapes:    snap.Len(),
		Unbounded: snap.Unbounded(),
	}
	if bounds := snap.Bounds(); !bounds.IsEmpty() {
		resp.Bounds = &[2][3]float64{toArray(bounds.Min), toArray(bounds.Max)}
	}
	if st := snap.Stats(); st != nil {
		resp.BVH = &HierarchyStats{
			Primitives:  st.Primitives,
			Nodes:       st.Nodes,
			Leaves:      st.Leaves,
			MaxDepth:    st.MaxDepth,
			MaxLeafSize: st.MaxLeafSize,
			AvgLeafSize: st.AvgLeafSize(),
			Split:       st.Split,
			BuildMs:     float64(st.BuildTime.Microseconds()) / 1000,
		}
	}
	return resp
}

// handleRebuild rebuilds the scene hierarchy and publishes the new snapshot
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	snap, err := s.rebuild()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stats(snap))
}

func (s *Server) rebuild() (*scene.Snapshot, error) {
	snap, err := s.scene.Rebuild()
	if err != nil {
		s.logger.Error("rebuild failed", zap.Error(err))
		return nil, err
	}
	s.metrics.ObserveSnapshot(snap)
	s.logger.Info("snapshot published",
		zap.Uint64("version", snap.Version()),
		zap.Int("shapes", snap.Len()),
		zap.Duration("build_time", snap.BuildTime()),
	)
	return snap, nil
}

// handleAddShape adds one primitive to the scene and rebuilds
func (s *Server) handleAddShape(w http.ResponseWriter, r *http.Request) {
	var req ShapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decoding shape"))
		return
	}

	shape, err := req.primitive()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.scene.Add(shape)
	snap, err := s.rebuild()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.stats(snap))
}

func (req ShapeRequest) primitive() (core.Primitive, error) {
	switch req.Type {
	case "sphere":
		if req.Radius <= 0 {
			return nil, errors.Errorf("sphere radius must be positive, got %g", req.Radius)
		}
		return geometry.NewSphere(fromArray(req.Center), req.Radius), nil
	case "box":
		return geometry.NewBox(fromArray(req.Min), fromArray(req.Max)), nil
	case "triangle":
		return geometry.NewTriangle(fromArray(req.Vertices[0]), fromArray(req.Vertices[1]), fromArray(req.Vertices[2])), nil
	default:
		return nil, errors.Errorf("unknown shape type %q", req.Type)
	}
}

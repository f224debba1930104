package scene

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
	"github.com/df07/go-raytracer-bvh/pkg/geometry"
)

// Accelerator names accepted by Options.Accel
const (
	AccelBVH  = "bvh"
	AccelNone = "none"
)

// Options controls how a scene is assembled
type Options struct {
	Accel         string             // AccelBVH (default) or AccelNone
	Build         accel.BuildOptions // Hierarchy settings when Accel is AccelBVH
	FlattenMeshes bool               // Store mesh triangles individually in the scene hierarchy
	Logger        *zap.Logger
}

// Scene holds the primitives of a scene and the acceleration structure
// built over them. Queries always run against a complete snapshot;
// Rebuild swaps in a new one without disturbing queries in flight.
type Scene struct {
	name   string
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex // serializes Add and Rebuild
	shapes   []core.Primitive
	version  uint64
	snapshot atomic.Pointer[Snapshot]
}

// New creates a scene over shapes and builds its first snapshot
func New(name string, shapes []core.Primitive, opts Options) (*Scene, error) {
	if opts.Accel == "" {
		opts.Accel = AccelBVH
	}
	if opts.Accel != AccelBVH && opts.Accel != AccelNone {
		return nil, errors.Errorf("unknown accelerator %q", opts.Accel)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Build.Logger = logger.Named("bvh")

	s := &Scene{
		name:   name,
		opts:   opts,
		logger: logger,
		shapes: append([]core.Primitive(nil), shapes...),
	}
	if _, err := s.Rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the scene name
func (s *Scene) Name() string { return s.name }

// Add appends shapes. They become visible to queries after the next Rebuild.
func (s *Scene) Add(shapes ...core.Primitive) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shapes = append(s.shapes, shapes...)
}

// Snapshot returns the current immutable snapshot
func (s *Scene) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Rebuild constructs a new snapshot from the current shapes and publishes it
func (s *Scene) Rebuild() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	var bounded []core.Primitive
	var boundedIndex []int
	var unbounded []core.Primitive
	var unboundedIndex []int

	for i, shape := range s.shapes {
		if shape == nil {
			return nil, errors.Errorf("scene %s: shape %d is nil", s.name, i)
		}
		box := shape.BoundingBox()
		if hasNaN(box) {
			return nil, errors.Errorf("scene %s: shape %d has an invalid bounding box %v", s.name, i, box)
		}

		if !box.IsFinite() && !box.IsEmpty() {
			unbounded = append(unbounded, shape)
			unboundedIndex = append(unboundedIndex, i)
			continue
		}

		if mesh, ok := shape.(*geometry.TriangleMesh); ok && s.opts.FlattenMeshes {
			for _, tri := range mesh.Primitives() {
				bounded = append(bounded, tri)
				boundedIndex = append(boundedIndex, i)
			}
			continue
		}

		bounded = append(bounded, shape)
		boundedIndex = append(boundedIndex, i)
	}

	var a accel.Accelerator
	var stats *accel.Stats
	switch s.opts.Accel {
	case AccelNone:
		a = accel.NewLinear(bounded)
	default:
		bvh := accel.Build(bounded, s.opts.Build)
		st := bvh.Stats()
		stats = &st
		a = bvh
	}

	s.version++
	snap := &Snapshot{
		accel:          a,
		boundedIndex:   boundedIndex,
		unbounded:      unbounded,
		unboundedIndex: unboundedIndex,
		shapeCount:     len(s.shapes),
		stats:          stats,
		version:        s.version,
		builtAt:        time.Now(),
		buildTime:      time.Since(start),
	}
	s.snapshot.Store(snap)

	s.logger.Info("scene rebuilt",
		zap.String("scene", s.name),
		zap.String("accel", s.opts.Accel),
		zap.Int("shapes", len(s.shapes)),
		zap.Int("bounded", len(bounded)),
		zap.Int("unbounded", len(unbounded)),
		zap.Uint64("version", s.version),
		zap.Duration("build_time", snap.buildTime),
	)

	return snap, nil
}

func hasNaN(box core.AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if math.IsNaN(box.Min.Axis(axis)) || math.IsNaN(box.Max.Axis(axis)) {
			return true
		}
	}
	return false
}

package accel

import (
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// BVH is a bounding volume hierarchy over a fixed set of primitives.
// Once built it is never mutated, so any number of goroutines may query
// it concurrently.
type BVH struct {
	nodes []Node
	prims []core.Primitive // leaf-contiguous order
	order []int            // order[i] = input index of prims[i]
	stats Stats
}

// builder holds the scratch state of a single construction
type builder struct {
	opts      BuildOptions
	boxes     []core.AABB // indexed by input position
	centroids []core.Vec3 // indexed by input position
	index     []int       // permutation being partitioned
	nodes     []Node
	stats     Stats
}

// Build constructs a hierarchy over prims. The slice is reordered in place
// so that every leaf covers a contiguous range; the BVH keeps it, and the
// caller must not modify it afterwards. Order reports where each primitive
// came from.
func Build(prims []core.Primitive, opts BuildOptions) *BVH {
	opts = opts.normalized()
	start := time.Now()

	n := len(prims)
	b := &builder{
		opts:      opts,
		boxes:     make([]core.AABB, n),
		centroids: make([]core.Vec3, n),
		index:     make([]int, n),
		nodes:     make([]Node, 1, max(1, 2*n-1)),
	}
	for i, p := range prims {
		box := p.BoundingBox()
		b.boxes[i] = box
		b.centroids[i] = box.Center()
		b.index[i] = i
	}

	if n == 0 {
		b.nodes[0] = makeLeaf(core.EmptyAABB(), 0, 0)
		b.stats.Nodes = 1
		b.stats.Leaves = 1
	} else {
		b.buildRecursive(0, 0, n, 0)
	}

	// Apply the permutation to the caller's slice
	reordered := make([]core.Primitive, n)
	for i, src := range b.index {
		reordered[i] = prims[src]
	}
	copy(prims, reordered)

	b.stats.Primitives = n
	b.stats.Split = opts.Split.String()
	b.stats.BuildTime = time.Since(start)

	opts.Logger.Debug("bvh built",
		zap.Int("primitives", n),
		zap.Int("nodes", b.stats.Nodes),
		zap.Int("leaves", b.stats.Leaves),
		zap.Int("max_depth", b.stats.MaxDepth),
		zap.String("split", b.stats.Split),
		zap.Duration("build_time", b.stats.BuildTime),
	)

	return &BVH{
		nodes: b.nodes,
		prims: prims,
		order: b.index,
		stats: b.stats,
	}
}

// rangeBounds returns the padded union of the primitive boxes in [lo, hi)
func (b *builder) rangeBounds(lo, hi int) core.AABB {
	bounds := core.EmptyAABB()
	for _, idx := range b.index[lo:hi] {
		bounds = bounds.Union(b.boxes[idx])
	}
	return bounds.Expand(core.BoxEpsilon)
}

// centroidBounds returns the box spanned by the centroids in [lo, hi)
func (b *builder) centroidBounds(lo, hi int) core.AABB {
	bounds := core.EmptyAABB()
	for _, idx := range b.index[lo:hi] {
		c := b.centroids[idx]
		bounds = bounds.Union(core.NewAABB(c, c))
	}
	return bounds
}

// buildRecursive fills node with the hierarchy for index[lo:hi]
func (b *builder) buildRecursive(node uint32, lo, hi, depth int) {
	bounds := b.rangeBounds(lo, hi)
	b.stats.Nodes++

	count := hi - lo
	if count <= b.opts.LeafThreshold || depth >= b.opts.MaxDepth {
		b.leaf(node, bounds, lo, count, depth)
		return
	}

	axis, mid := b.split(bounds, lo, hi)

	left := uint32(len(b.nodes))
	b.nodes = append(b.nodes, Node{}, Node{})
	b.nodes[node] = makeInternal(bounds, left, axis)

	b.buildRecursive(left, lo, mid, depth+1)
	b.buildRecursive(left+1, mid, hi, depth+1)
}

func (b *builder) leaf(node uint32, bounds core.AABB, first, count, depth int) {
	b.nodes[node] = makeLeaf(bounds, first, count)
	b.stats.Leaves++
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}
	if count > b.stats.MaxLeafSize {
		b.stats.MaxLeafSize = count
	}
}

// split partitions index[lo:hi] in place and returns the split axis and the
// first position of the right half. Both halves are always non-empty.
func (b *builder) split(bounds core.AABB, lo, hi int) (axis, mid int) {
	axis = bounds.LongestAxis()
	cb := b.centroidBounds(lo, hi)

	// Boxes can be long on an axis where all centroids coincide; try the
	// axis with the widest centroid spread before giving up on ordering.
	if cb.Max.Axis(axis)-cb.Min.Axis(axis) <= 0 {
		axis = cb.LongestAxis()
	}
	if cb.Max.Axis(axis)-cb.Min.Axis(axis) <= 0 {
		return axis, lo + (hi-lo)/2
	}

	if b.opts.Split == SplitSAH {
		if mid, ok := b.partitionSAH(axis, cb, lo, hi); ok {
			return axis, mid
		}
	}

	mid = lo + (hi-lo)/2
	selectNth(b.index[lo:hi], mid-lo, b.centroids, axis)
	return axis, mid
}

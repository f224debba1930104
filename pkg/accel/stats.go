package accel

import (
	"time"

	"github.com/pkg/errors"
)

// Stats contains statistics about a built hierarchy
type Stats struct {
	Primitives  int           // Number of primitives stored
	Nodes       int           // Total number of nodes
	Leaves      int           // Number of leaf nodes
	MaxDepth    int           // Depth of the deepest leaf (root = 0)
	MaxLeafSize int           // Largest number of primitives in one leaf
	Split       string        // Split method used
	BuildTime   time.Duration // Wall time spent in Build
}

// AvgLeafSize returns the mean number of primitives per leaf
func (s Stats) AvgLeafSize() float64 {
	if s.Leaves == 0 {
		return 0
	}
	return float64(s.Primitives) / float64(s.Leaves)
}

// Validate walks the node store and checks its structural invariants:
// every node is reachable exactly once from the root, internal boxes
// enclose their children, leaf ranges cover every primitive exactly once
// and each leaf box encloses its primitives. It returns nil for a well
// formed hierarchy.
func (bvh *BVH) Validate() error {
	if len(bvh.nodes) == 0 {
		return errors.New("node store is empty")
	}
	if len(bvh.order) != len(bvh.prims) {
		return errors.Errorf("order has %d entries for %d primitives", len(bvh.order), len(bvh.prims))
	}

	seenOrder := make([]bool, len(bvh.prims))
	for i, src := range bvh.order {
		if src < 0 || src >= len(bvh.prims) || seenOrder[src] {
			return errors.Errorf("order[%d] = %d is not part of a permutation", i, src)
		}
		seenOrder[src] = true
	}

	visited := make([]bool, len(bvh.nodes))
	covered := make([]int, len(bvh.prims))

	stack := []uint32{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[idx] {
			return errors.Errorf("node %d is reachable more than once", idx)
		}
		visited[idx] = true
		node := bvh.nodes[idx]

		if node.Leaf {
			end := int(node.Offset) + int(node.Count)
			if end > len(bvh.prims) {
				return errors.Errorf("leaf %d range [%d,%d) exceeds %d primitives", idx, node.Offset, end, len(bvh.prims))
			}
			for i := int(node.Offset); i < end; i++ {
				covered[i]++
				if box := bvh.prims[i].BoundingBox(); !node.Bounds.Contains(box) {
					return errors.Errorf("leaf %d bounds %v do not enclose primitive %d box %v", idx, node.Bounds, i, box)
				}
			}
			continue
		}

		if node.Axis > 2 {
			return errors.Errorf("internal node %d has split axis %d", idx, node.Axis)
		}
		left, right := node.Left(), node.Right()
		if left <= idx || int(right) >= len(bvh.nodes) {
			return errors.Errorf("internal node %d has children (%d, %d) out of range", idx, left, right)
		}
		for _, child := range []uint32{left, right} {
			if !node.Bounds.Contains(bvh.nodes[child].Bounds) {
				return errors.Errorf("node %d bounds %v do not enclose child %d bounds %v", idx, node.Bounds, child, bvh.nodes[child].Bounds)
			}
		}
		stack = append(stack, right, left)
	}

	for i, ok := range visited {
		if !ok {
			return errors.Errorf("node %d is not reachable from the root", i)
		}
	}
	for i, n := range covered {
		if n != 1 {
			return errors.Errorf("primitive %d is covered by %d leaves", i, n)
		}
	}

	return nil
}

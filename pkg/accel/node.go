package accel

import "github.com/df07/go-raytracer-bvh/pkg/core"

// Node is one entry of the flat node store. Children of an internal node
// are always stored as an adjacent pair, so only the left index is kept.
//
//	leaf:     Offset = first primitive, Count = number of primitives
//	internal: Offset = left child, right child = Offset+1, Axis = split axis
type Node struct {
	Bounds core.AABB
	Offset uint32
	Count  uint32
	Axis   uint8
	Leaf   bool
}

func makeLeaf(bounds core.AABB, first, count int) Node {
	return Node{
		Bounds: bounds,
		Offset: uint32(first),
		Count:  uint32(count),
		Leaf:   true,
	}
}

func makeInternal(bounds core.AABB, left uint32, axis int) Node {
	return Node{
		Bounds: bounds,
		Offset: left,
		Axis:   uint8(axis),
	}
}

// Left returns the index of the left child of an internal node
func (n Node) Left() uint32 { return n.Offset }

// Right returns the index of the right child of an internal node
func (n Node) Right() uint32 { return n.Offset + 1 }

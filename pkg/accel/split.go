package accel

import (
	"math"

	"github.com/df07/go-raytracer-bvh/pkg/core"
)

const (
	sahBins          = 12
	sahTraversalCost = 1.0
	sahIntersectCost = 1.0
)

// selectNth reorders idx so that the element at k has the centroid it
// would have in sorted order, everything before it is <= and everything
// after it is >= on the given axis. Three-way partitioning keeps runs of
// equal keys from degrading to quadratic time; the pivot is the median of
// three fixed positions, so the result only depends on the input.
func selectNth(idx []int, k int, centroids []core.Vec3, axis int) {
	key := func(i int) float64 { return centroids[idx[i]].Axis(axis) }

	lo, hi := 0, len(idx)-1
	for lo < hi {
		pivot := medianOf3(key(lo), key(lo+(hi-lo)/2), key(hi))

		lt, i, gt := lo, lo, hi
		for i <= gt {
			v := key(i)
			switch {
			case v < pivot:
				idx[lt], idx[i] = idx[i], idx[lt]
				lt++
				i++
			case v > pivot:
				idx[i], idx[gt] = idx[gt], idx[i]
				gt--
			default:
				i++
			}
		}

		// [lo,lt) < pivot, [lt,gt] == pivot, (gt,hi] > pivot
		switch {
		case k < lt:
			hi = lt - 1
		case k > gt:
			lo = gt + 1
		default:
			return
		}
	}
}

func medianOf3(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		return a
	}
	return b
}

type sahBin struct {
	bounds core.AABB
	count  int
}

// partitionSAH bins the centroids of index[lo:hi] along axis and
// partitions at the cheapest bin boundary. It reports false when every
// boundary leaves one side empty.
func (b *builder) partitionSAH(axis int, cb core.AABB, lo, hi int) (int, bool) {
	minC := cb.Min.Axis(axis)
	extent := cb.Max.Axis(axis) - minC
	scale := float64(sahBins) / extent

	binOf := func(idx int) int {
		bin := int((b.centroids[idx].Axis(axis) - minC) * scale)
		if bin >= sahBins {
			bin = sahBins - 1
		}
		if bin < 0 {
			bin = 0
		}
		return bin
	}

	var bins [sahBins]sahBin
	for i := range bins {
		bins[i].bounds = core.EmptyAABB()
	}
	for _, idx := range b.index[lo:hi] {
		bin := binOf(idx)
		bins[bin].count++
		bins[bin].bounds = bins[bin].bounds.Union(b.boxes[idx])
	}

	// Sweep from the right so rightArea[i] covers bins [i+1, sahBins)
	var rightArea [sahBins - 1]float64
	var rightCount [sahBins - 1]int
	acc := core.EmptyAABB()
	n := 0
	for i := sahBins - 1; i > 0; i-- {
		acc = acc.Union(bins[i].bounds)
		n += bins[i].count
		rightArea[i-1] = acc.SurfaceArea()
		rightCount[i-1] = n
	}

	bestCost := math.Inf(1)
	bestSplit := -1
	acc = core.EmptyAABB()
	n = 0
	for i := 0; i < sahBins-1; i++ {
		acc = acc.Union(bins[i].bounds)
		n += bins[i].count
		if n == 0 || rightCount[i] == 0 {
			continue
		}
		cost := sahTraversalCost + sahIntersectCost*(acc.SurfaceArea()*float64(n)+rightArea[i]*float64(rightCount[i]))
		if cost < bestCost {
			bestCost = cost
			bestSplit = i
		}
	}
	if bestSplit < 0 {
		return 0, false
	}

	// Bins up to bestSplit go left
	mid := lo
	for i := lo; i < hi; i++ {
		if binOf(b.index[i]) <= bestSplit {
			b.index[i], b.index[mid] = b.index[mid], b.index[i]
			mid++
		}
	}
	if mid == lo || mid == hi {
		return 0, false
	}
	return mid, true
}

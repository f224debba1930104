package accel

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SplitMethod selects how an internal node partitions its primitives
type SplitMethod int

const (
	// SplitMedian puts half of the primitives, ordered by centroid, on each side
	SplitMedian SplitMethod = iota
	// SplitSAH picks the binned surface-area-heuristic plane
	SplitSAH
)

func (s SplitMethod) String() string {
	switch s {
	case SplitSAH:
		return "sah"
	default:
		return "median"
	}
}

// ParseSplitMethod converts a config value ("median" or "sah") into a SplitMethod
func ParseSplitMethod(name string) (SplitMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "median":
		return SplitMedian, nil
	case "sah":
		return SplitSAH, nil
	default:
		return SplitMedian, errors.Errorf("unknown split method %q (want median or sah)", name)
	}
}

// BuildOptions controls hierarchy construction
type BuildOptions struct {
	LeafThreshold int         // Ranges of this many primitives or fewer become leaves
	MaxDepth      int         // Nodes at this depth become leaves regardless of size
	Split         SplitMethod // Partition strategy for internal nodes
	Logger        *zap.Logger // Receives build statistics at debug level; nil is silent
}

// DefaultBuildOptions returns the standard build settings
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		LeafThreshold: 2,
		MaxDepth:      64,
		Split:         SplitMedian,
	}
}

// normalized fills zero values with defaults
func (o BuildOptions) normalized() BuildOptions {
	def := DefaultBuildOptions()
	if o.LeafThreshold < 1 {
		o.LeafThreshold = def.LeafThreshold
	}
	if o.MaxDepth < 1 {
		o.MaxDepth = def.MaxDepth
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

package quadtree

import (
	"math"

	"github.com/paulmach/orb"
)

// ViewRegion is the part of the world the camera can currently see.
type ViewRegion interface {
	IntersectsBox(b Box) bool
}

// RectRegion is a ground rectangle extruded along Z.
//
// Overlap on X and Y is strict: boxes that only share an edge with the
// rectangle do not intersect it. Z bounds are inclusive.
type RectRegion struct {
	Bound      orb.Bound
	MinZ, MaxZ float64
}

// NewRectRegion returns a region over b unbounded in Z.
func NewRectRegion(b orb.Bound) RectRegion {
	return RectRegion{Bound: b, MinZ: math.Inf(-1), MaxZ: math.Inf(1)}
}

// IntersectsBox implements ViewRegion.
func (r RectRegion) IntersectsBox(b Box) bool {
	return b.Min[0] < r.Bound.Max[0] && b.Max[0] > r.Bound.Min[0] &&
		b.Min[1] < r.Bound.Max[1] && b.Max[1] > r.Bound.Min[1] &&
		b.Min[2] <= r.MaxZ && b.Max[2] >= r.MinZ
}

// FindVisible appends to out the tiles under t that should be drawn for a
// view at targetZoom, where t sits at depth level, and returns the extended
// slice.
//
// Subtrees outside view are pruned. A tile is selected once level reaches
// targetZoom, or when it cannot be split any further; in that case the tile
// itself is shown at its coarser resolution. Splits are memoized on the
// tiles, so repeated calls only pay for new refinement.
func FindVisible(t *Tile, targetZoom, level int, view ViewRegion, policy SplitPolicy, out []*Tile) []*Tile {
	if !view.IntersectsBox(t.Box) {
		return out
	}
	if level >= targetZoom {
		return append(out, t)
	}

	if !t.split {
		t.Split(policy)
	}
	if len(t.children) == 0 {
		return append(out, t)
	}
	for _, c := range t.children {
		out = FindVisible(c, targetZoom, level+1, view, policy, out)
	}
	return out
}

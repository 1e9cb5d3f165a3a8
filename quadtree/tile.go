package quadtree

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/gogpu/terrain/scene"
	"github.com/gogpu/terrain/tiling"
)

// Box is an axis-aligned 3D box: a tile extent lifted off the ground.
type Box struct {
	Min, Max [3]float64
}

// Tile is a quadtree node.
type Tile struct {
	Key    maptile.Tile
	Zoom   int
	Extent orb.Bound
	Center orb.Point
	Box    Box

	// Renderable is built lazily by the active map builder.
	Renderable *scene.Mesh

	gen      uint64
	relief   float64
	split    bool
	children []*Tile
	parent   *Tile // debug navigation only
	visible  bool
}

// NewRoot creates the zoom-0 tile covering world for epoch gen. relief is
// the maximum height a builder may displace the surface to; it sizes the 3D
// box used for view intersection.
func NewRoot(world orb.Bound, gen uint64, relief float64) *Tile {
	return newTile(tiling.RootKey(), world, gen, relief, nil)
}

func newTile(key maptile.Tile, extent orb.Bound, gen uint64, relief float64, parent *Tile) *Tile {
	return &Tile{
		Key:    key,
		Zoom:   int(key.Z),
		Extent: extent,
		Center: extent.Center(),
		Box: Box{
			Min: [3]float64{extent.Min[0], extent.Min[1], math.Min(0, relief)},
			Max: [3]float64{extent.Max[0], extent.Max[1], math.Max(0, relief)},
		},
		gen:    gen,
		relief: relief,
		parent: parent,
	}
}

// Generation returns the epoch the tile was created in.
func (t *Tile) Generation() uint64 { return t.gen }

// Live reports whether the tile belongs to the current epoch of g.
func (t *Tile) Live(g *Generation) bool { return t.gen == g.Current() }

// Parent returns the parent tile, nil for a root.
func (t *Tile) Parent() *Tile { return t.parent }

// IsSplit reports whether a split was attempted.
func (t *Tile) IsSplit() bool { return t.split }

// IsTerminal reports whether the tile was split into nothing, i.e. it cannot
// be refined any further.
func (t *Tile) IsTerminal() bool { return t.split && len(t.children) == 0 }

// Children returns the four quadrants in order top-left, top-right,
// bottom-right, bottom-left. It is nil before the first split and empty for
// a terminal tile.
func (t *Tile) Children() []*Tile { return t.children }

// Visible reports the display flag.
func (t *Tile) Visible() bool { return t.visible }

// SetVisible sets the display flag and mirrors it on the renderable.
func (t *Tile) SetVisible(v bool) {
	t.visible = v
	if t.Renderable != nil {
		t.Renderable.Visible = v
	}
}

// Split materializes the four children of t, or marks t terminal when policy
// forbids refining it. Splitting an already split tile is a no-op.
func (t *Tile) Split(policy SplitPolicy) {
	if t.split {
		return
	}
	t.split = true

	if !policy.CanSplit(t) {
		t.children = []*Tile{}
		return
	}

	minX, minY := t.Extent.Min[0], t.Extent.Min[1]
	maxX, maxY := t.Extent.Max[0], t.Extent.Max[1]
	midX, midY := (minX+maxX)/2, (minY+maxY)/2
	x, y, z := 2*t.Key.X, 2*t.Key.Y, t.Key.Z+1

	t.children = []*Tile{
		newTile(maptile.New(x, y, z), orb.Bound{Min: orb.Point{minX, midY}, Max: orb.Point{midX, maxY}}, t.gen, t.relief, t),
		newTile(maptile.New(x+1, y, z), orb.Bound{Min: orb.Point{midX, midY}, Max: orb.Point{maxX, maxY}}, t.gen, t.relief, t),
		newTile(maptile.New(x+1, y+1, z), orb.Bound{Min: orb.Point{midX, minY}, Max: orb.Point{maxX, midY}}, t.gen, t.relief, t),
		newTile(maptile.New(x, y+1, z), orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{midX, midY}}, t.gen, t.relief, t),
	}
}

// Walk visits t and every materialized descendant depth-first. Returning
// false from fn skips the subtree below the visited tile.
func (t *Tile) Walk(fn func(*Tile) bool) {
	if !fn(t) {
		return
	}
	for _, c := range t.children {
		c.Walk(fn)
	}
}

// SplitPolicy decides when a tile may no longer be refined.
type SplitPolicy struct {
	// MaxZoom is the deepest zoom children may have.
	MaxZoom int
	// MinTileSize is the smallest side length (world units) a child may have.
	// Zero disables the size check.
	MinTileSize float64
}

// CanSplit reports whether t may be divided into four children.
func (p SplitPolicy) CanSplit(t *Tile) bool {
	if t.Zoom >= p.MaxZoom {
		return false
	}
	side := math.Min(t.Extent.Max[0]-t.Extent.Min[0], t.Extent.Max[1]-t.Extent.Min[1])
	return side/2 >= p.MinTileSize
}

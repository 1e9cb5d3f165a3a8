package quadtree

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/gogpu/terrain/tiling"
)

var testWorld = tiling.WorldBound(1024, 1024)

func TestSplitQuadrisects(t *testing.T) {
	root := NewRoot(testWorld, 1, 0)
	root.Split(SplitPolicy{MaxZoom: 4})

	children := root.Children()
	if len(children) != 4 {
		t.Fatalf("len(Children) = %d, want 4", len(children))
	}

	var area float64
	for i, c := range children {
		if c.Zoom != root.Zoom+1 {
			t.Errorf("child %d zoom = %d, want %d", i, c.Zoom, root.Zoom+1)
		}
		if c.Parent() != root {
			t.Errorf("child %d parent not set", i)
		}
		want := tiling.TileExtent(testWorld, c.Key)
		if !c.Extent.Equal(want) {
			t.Errorf("child %d (%v) extent = %v, want %v", i, c.Key, c.Extent, want)
		}
		if c.Center != c.Extent.Center() {
			t.Errorf("child %d center = %v, want %v", i, c.Center, c.Extent.Center())
		}
		area += width(c.Extent) * height(c.Extent)

		for j, o := range children {
			if i != j && overlapArea(c.Extent, o.Extent) > 0 {
				t.Errorf("children %d and %d overlap", i, j)
			}
		}
	}
	if area != width(root.Extent)*height(root.Extent) {
		t.Errorf("children area = %v, want %v", area, width(root.Extent)*height(root.Extent))
	}

	// Top-left child sits at the min-X / max-Y corner.
	tl := children[0]
	if tl.Extent.Min[0] != testWorld.Min[0] || tl.Extent.Max[1] != testWorld.Max[1] {
		t.Errorf("top-left extent = %v", tl.Extent)
	}
}

func TestSplitOnce(t *testing.T) {
	root := NewRoot(testWorld, 1, 0)
	policy := SplitPolicy{MaxZoom: 4}
	root.Split(policy)
	first := root.Children()
	root.Split(policy)
	for i, c := range root.Children() {
		if c != first[i] {
			t.Fatalf("second split replaced child %d", i)
		}
	}
}

func TestSplitTerminal(t *testing.T) {
	tests := []struct {
		name   string
		policy SplitPolicy
	}{
		{"max zoom", SplitPolicy{MaxZoom: 0}},
		{"min tile size", SplitPolicy{MaxZoom: 10, MinTileSize: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRoot(testWorld, 1, 0)
			if root.IsSplit() || root.Children() != nil {
				t.Fatal("fresh tile should be unsplit")
			}
			root.Split(tt.policy)
			if !root.IsSplit() || !root.IsTerminal() {
				t.Errorf("IsSplit=%v IsTerminal=%v, want true/true", root.IsSplit(), root.IsTerminal())
			}
			if root.Children() == nil || len(root.Children()) != 0 {
				t.Errorf("Children = %v, want explicit empty set", root.Children())
			}
		})
	}
}

func TestSplitPolicyMinTileSize(t *testing.T) {
	root := NewRoot(testWorld, 1, 0)
	// 1024 / 2 = 512 >= 512, so the root may split.
	policy := SplitPolicy{MaxZoom: 10, MinTileSize: 512}
	if !policy.CanSplit(root) {
		t.Fatal("root should be splittable")
	}
	root.Split(policy)
	if policy.CanSplit(root.Children()[0]) {
		t.Error("512-wide child should not split into 256-wide tiles")
	}
}

func TestTileLive(t *testing.T) {
	var g Generation
	root := NewRoot(testWorld, g.Advance(), 0)
	root.Split(SplitPolicy{MaxZoom: 2})

	if !root.Live(&g) || !root.Children()[2].Live(&g) {
		t.Fatal("tiles of the current epoch should be live")
	}
	if got := root.Children()[2].Generation(); got != root.Generation() || got != g.Current() {
		t.Errorf("child generation = %d, want %d", got, g.Current())
	}
	g.Advance()
	if root.Live(&g) || root.Children()[2].Live(&g) {
		t.Error("tiles of an old epoch should not be live")
	}
}

func TestTileBoxRelief(t *testing.T) {
	root := NewRoot(testWorld, 1, 250)
	if root.Box.Min[2] != 0 || root.Box.Max[2] != 250 {
		t.Errorf("box z = [%v, %v], want [0, 250]", root.Box.Min[2], root.Box.Max[2])
	}
	root.Split(SplitPolicy{MaxZoom: 1})
	if c := root.Children()[1]; c.Box.Max[2] != 250 {
		t.Errorf("child box max z = %v, want 250", c.Box.Max[2])
	}
}

func TestWalk(t *testing.T) {
	root := NewRoot(testWorld, 1, 0)
	policy := SplitPolicy{MaxZoom: 3}
	root.Split(policy)
	root.Children()[0].Split(policy)

	count := 0
	root.Walk(func(*Tile) bool { count++; return true })
	if count != 9 {
		t.Errorf("visited %d tiles, want 9", count)
	}

	count = 0
	root.Walk(func(*Tile) bool { count++; return false })
	if count != 1 {
		t.Errorf("pruned walk visited %d tiles, want 1", count)
	}
}

func width(b orb.Bound) float64  { return b.Max[0] - b.Min[0] }
func height(b orb.Bound) float64 { return b.Max[1] - b.Min[1] }

func overlapArea(a, b orb.Bound) float64 {
	w := min(a.Max[0], b.Max[0]) - max(a.Min[0], b.Min[0])
	h := min(a.Max[1], b.Max[1]) - max(a.Min[1], b.Min[1])
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

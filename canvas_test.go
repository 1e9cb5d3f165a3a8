package terrain

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"github.com/gogpu/terrain/builder"
	"github.com/gogpu/terrain/camera"
	"github.com/gogpu/terrain/config"
	"github.com/gogpu/terrain/loader"
	"github.com/gogpu/terrain/quadtree"
	"github.com/gogpu/terrain/scene"
	"github.com/gogpu/terrain/tiling"
)

// fakeControls looks straight down at target from radius; with testLens
// the ground view is the square of half size radius around target.
type fakeControls struct {
	zoom      int
	target    orb.Point
	radius    float64
	maxPolar  float64
	listeners []func()
}

func (c *fakeControls) ZoomLevel() int               { return c.zoom }
func (c *fakeControls) Target() orb.Point            { return c.target }
func (c *fakeControls) PSphere() camera.Spherical    { return camera.Spherical{Radius: c.radius} }
func (c *fakeControls) SetMaxPolarAngle(rad float64) { c.maxPolar = rad }
func (c *fakeControls) OnChange(fn func())           { c.listeners = append(c.listeners, fn) }

func (c *fakeControls) change() {
	for _, fn := range c.listeners {
		fn()
	}
}

var testLens = camera.Lens{FOV: math.Pi / 2, Aspect: 1, Far: 1e6}

type satRequest struct {
	key  maptile.Tile
	ok   func(*scene.Texture)
	fail func(error)
}

// queueLoader records requests and completes them all on Dispatch when
// autoComplete is set.
type queueLoader struct {
	sat          []satRequest
	autoComplete bool
	dispatches   int
}

func (l *queueLoader) LoadSat(key maptile.Tile, ok func(*scene.Texture), fail func(error)) {
	l.sat = append(l.sat, satRequest{key, ok, fail})
}

func (l *queueLoader) LoadHeight(maptile.Tile, func(*loader.HeightMap), func(error)) {}

func (l *queueLoader) Dispatch() int {
	l.dispatches++
	if !l.autoComplete {
		return 0
	}
	pending := l.sat
	l.sat = nil
	for _, r := range pending {
		r.ok(scene.NewTexture(scene.DefaultTexture().Image))
	}
	return len(pending)
}

// spyBuilder counts Switch calls on a wrapped builder.
type spyBuilder struct {
	builder.MapBuilder
	switches int
	err      error
}

func (s *spyBuilder) Switch() error {
	s.switches++
	if s.err != nil {
		return s.err
	}
	return s.MapBuilder.Switch()
}

func spyRegistry(spies map[string]*spyBuilder, keys ...string) *builder.Registry {
	r := builder.NewRegistry()
	for i, key := range keys {
		r.Register(key, len(keys)-i, func(deps builder.Deps) builder.MapBuilder {
			s := &spyBuilder{MapBuilder: builder.NewFlat(deps)}
			if prev, ok := spies[key]; ok {
				s.err = prev.err
			}
			spies[key] = s
			return s
		})
	}
	return r
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.MaxZoom = 2
	cfg.SceneWidth = 64
	cfg.SceneHeight = 64
	cfg.Builder = builder.Key2D
	return cfg
}

func newTestCanvas(t *testing.T, controls *fakeControls, opts ...Option) (*Canvas, *scene.Group) {
	t.Helper()
	group := scene.NewGroup()
	opts = append([]Option{WithConfig(testConfig()), WithLens(testLens), WithScene(group)}, opts...)
	c, err := NewCanvas(controls, opts...)
	if err != nil {
		t.Fatalf("NewCanvas() = %v", err)
	}
	return c, group
}

func wholeWorld(zoom int) *fakeControls {
	return &fakeControls{zoom: zoom, radius: 1000}
}

func countRenderables(root *quadtree.Tile) int {
	n := 0
	root.Walk(func(t *quadtree.Tile) bool {
		if t.Renderable != nil {
			n++
		}
		return true
	})
	return n
}

func TestNewCanvasErrors(t *testing.T) {
	bad := testConfig()
	bad.MaxZoom = -1
	if _, err := NewCanvas(wholeWorld(0), WithConfig(bad)); !errors.Is(err, tiling.ErrInvalidZoom) {
		t.Errorf("invalid zoom: err = %v, want ErrInvalidZoom", err)
	}

	var nf *builder.NotFoundError
	if _, err := NewCanvas(wholeWorld(0), WithBuilderKey("voxel")); !errors.As(err, &nf) {
		t.Errorf("unknown builder: err = %v, want NotFoundError", err)
	}

	if _, err := NewCanvas(nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("nil controls: err = %v, want ErrInvalidConfig", err)
	}
}

func TestRenderBeforeBuild(t *testing.T) {
	c, _ := newTestCanvas(t, wholeWorld(0))
	c.TriggerRender()
	if c.Render() {
		t.Error("Render() before Build should report false")
	}
	if err := c.SwitchMapBuilder(builder.Key3DMesh); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("SwitchMapBuilder before Build = %v, want ErrNotBuilt", err)
	}
}

func TestBuildAndRender(t *testing.T) {
	controls := wholeWorld(2)
	c, group := newTestCanvas(t, controls)

	if err := c.Build(); err != nil {
		t.Fatal(err)
	}
	if c.Root() == nil {
		t.Fatal("Root() = nil after Build")
	}
	if n := countRenderables(c.Root()); n != 0 {
		t.Errorf("%d renderables built before Render, want 0", n)
	}
	if n := len(c.ActiveTiles()); n != 16 {
		t.Fatalf("active tiles = %d, want 16", n)
	}
	if controls.maxPolar != 0 {
		t.Errorf("2d builder should force a top-down camera, max polar = %v", controls.maxPolar)
	}

	if !c.Render() {
		t.Fatal("first Render() should report a redraw")
	}
	if group.Len() != 16 || len(group.Visible()) != 16 {
		t.Errorf("scene has %d meshes (%d visible), want 16", group.Len(), len(group.Visible()))
	}
	for _, tile := range c.ActiveTiles() {
		if tile.Zoom != 2 || !tile.Visible() || tile.Renderable == nil {
			t.Errorf("tile %v: zoom %d visible %v built %v", tile.Key, tile.Zoom, tile.Visible(), tile.Renderable != nil)
		}
	}

	if c.Render() {
		t.Error("Render() without changes should report false")
	}
}

func TestControlsChangeTriggersRender(t *testing.T) {
	controls := wholeWorld(1)
	c, group := newTestCanvas(t, controls)
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}
	c.Render()
	if group.Len() != 4 {
		t.Fatalf("scene has %d meshes, want 4", group.Len())
	}

	controls.zoom = 2
	controls.change()
	if !c.Render() {
		t.Fatal("Render() after a camera change should report a redraw")
	}
	if n := len(c.Meshes()); n != 16 {
		t.Errorf("Meshes() = %d, want 16", n)
	}
	// Zoom-1 meshes stay built but hidden.
	if group.Len() != 20 || len(group.Visible()) != 16 {
		t.Errorf("scene has %d meshes (%d visible), want 20 (16)", group.Len(), len(group.Visible()))
	}

	controls.zoom = 1
	controls.change()
	c.Render()
	if group.Len() != 20 || len(group.Visible()) != 4 {
		t.Errorf("zooming out: %d meshes (%d visible), want 20 (4)", group.Len(), len(group.Visible()))
	}
}

func TestTargetZoomClamped(t *testing.T) {
	tests := []struct {
		zoom      int
		wantTiles int
		wantZoom  int
	}{
		{-3, 1, 0},
		{10, 16, 2},
	}
	for _, tt := range tests {
		c, _ := newTestCanvas(t, wholeWorld(tt.zoom))
		if err := c.Build(); err != nil {
			t.Fatal(err)
		}
		tiles := c.ActiveTiles()
		if len(tiles) != tt.wantTiles || tiles[0].Zoom != tt.wantZoom {
			t.Errorf("zoom %d: %d tiles at zoom %d, want %d at %d", tt.zoom, len(tiles), tiles[0].Zoom, tt.wantTiles, tt.wantZoom)
		}
	}
}

func TestTopLeftQuadrant(t *testing.T) {
	controls := &fakeControls{zoom: 1, target: orb.Point{-16, 16}, radius: 15}
	c, _ := newTestCanvas(t, controls)
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}

	tiles := c.ActiveTiles()
	if len(tiles) != 1 {
		t.Fatalf("active tiles = %d, want 1", len(tiles))
	}
	if tiles[0].Key != maptile.New(0, 0, 1) {
		t.Errorf("active tile = %v, want top-left zoom-1 tile", tiles[0].Key)
	}
}

func TestSwitchMapBuilder(t *testing.T) {
	spies := map[string]*spyBuilder{}
	reg := spyRegistry(spies, "a", "b")
	c, group := newTestCanvas(t, wholeWorld(2), WithRegistry(reg), WithBuilderKey("a"))

	if err := c.Build(); err != nil {
		t.Fatal(err)
	}
	c.Render()
	oldRoot := c.Root()

	if err := c.SwitchMapBuilder("b"); err != nil {
		t.Fatal(err)
	}
	if spies["b"].switches != 1 {
		t.Errorf("b.Switch called %d times, want 1", spies["b"].switches)
	}
	if spies["a"].switches != 1 {
		t.Errorf("a.Switch called %d times, want 1", spies["a"].switches)
	}
	if c.MapBuilderKey() != "b" {
		t.Errorf("MapBuilderKey() = %q, want b", c.MapBuilderKey())
	}
	if c.Root() == oldRoot {
		t.Fatal("switch should grow a fresh root")
	}
	if c.Root().Renderable != nil || countRenderables(c.Root()) != 0 {
		t.Error("fresh tree has built renderables before Render")
	}
	if group.Len() != 0 {
		t.Errorf("scene still holds %d meshes of the discarded tree", group.Len())
	}

	if !c.Render() {
		t.Fatal("Render() after a switch should report a redraw")
	}
	if group.Len() != 16 {
		t.Errorf("scene has %d meshes, want 16", group.Len())
	}
	if got := c.MapBuilderKeys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("MapBuilderKeys() = %v", got)
	}
}

func TestSwitchMapBuilderFailures(t *testing.T) {
	spies := map[string]*spyBuilder{"broken": {err: errors.New("no gpu")}}
	reg := spyRegistry(spies, "a", "broken")
	c, _ := newTestCanvas(t, wholeWorld(1), WithRegistry(reg), WithBuilderKey("a"))
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}
	root := c.Root()

	var nf *builder.NotFoundError
	if err := c.SwitchMapBuilder("voxel"); !errors.As(err, &nf) {
		t.Errorf("unknown key: err = %v, want NotFoundError", err)
	}
	if err := c.SwitchMapBuilder("broken"); err == nil {
		t.Error("failing Switch should be reported")
	}
	if c.MapBuilderKey() != "a" || c.Root() != root {
		t.Error("failed switches changed the canvas")
	}
}

func TestStaleLoadAfterSwitch(t *testing.T) {
	ld := &queueLoader{}
	c, _ := newTestCanvas(t, wholeWorld(1), WithLoader(ld))
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}
	c.Render()

	oldMesh := c.Meshes()[0]
	stale := ld.sat
	ld.sat = nil
	if len(stale) != 4 {
		t.Fatalf("sat requests = %d, want 4", len(stale))
	}

	if err := c.SwitchMapBuilder(builder.Key3DMesh); err != nil {
		t.Fatal(err)
	}
	c.Render()
	version := oldMesh.Material.Version()

	for _, r := range stale {
		r.ok(scene.NewTexture(scene.DefaultTexture().Image))
	}
	if oldMesh.Material.Version() != version {
		t.Error("stale load mutated a discarded material")
	}
	for _, m := range c.Meshes() {
		if !m.Material.Texture().Placeholder {
			t.Error("stale load reached a live mesh")
		}
	}
	if c.Render() {
		t.Error("stale load should not trigger a redraw")
	}
}

func TestRenderDispatchesLoads(t *testing.T) {
	ld := &queueLoader{autoComplete: true}
	c, _ := newTestCanvas(t, wholeWorld(1), WithLoader(ld))
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}

	if !c.Render() {
		t.Fatal("first Render() should report a redraw")
	}
	for _, m := range c.Meshes() {
		if !m.Material.Texture().Placeholder {
			t.Fatal("texture applied before the next Render")
		}
	}

	if !c.Render() {
		t.Fatal("completed loads should owe a redraw")
	}
	for _, m := range c.Meshes() {
		if m.Material.Texture().Placeholder {
			t.Error("loaded texture not applied")
		}
	}
	if ld.dispatches != 2 {
		t.Errorf("Dispatch called %d times, want 2", ld.dispatches)
	}
	if c.Render() {
		t.Error("Render() with nothing pending should report false")
	}
}

func TestSetShowTileBorders(t *testing.T) {
	c, _ := newTestCanvas(t, wholeWorld(1))
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}
	c.Render()

	c.SetShowTileBorders(false)
	if c.Render() {
		t.Error("setting the current value should not trigger a redraw")
	}

	c.SetShowTileBorders(true)
	if !c.ShowTileBorders() {
		t.Error("ShowTileBorders() = false")
	}
	if !c.Render() {
		t.Fatal("toggling borders should trigger a redraw")
	}
	for _, m := range c.Meshes() {
		if !m.ShowBorder {
			t.Errorf("mesh %v does not show its border", m.Key)
		}
	}
}

func TestTriggerRenderIdempotent(t *testing.T) {
	c, _ := newTestCanvas(t, wholeWorld(0))
	if err := c.Build(); err != nil {
		t.Fatal(err)
	}
	c.Render()

	c.TriggerRender()
	c.TriggerRender()
	if !c.Render() {
		t.Error("Render() after TriggerRender should report true")
	}
	if c.Render() {
		t.Error("repeated triggers should owe a single redraw")
	}
}

package terrain

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gogpu/terrain/builder"
	"github.com/gogpu/terrain/camera"
	"github.com/gogpu/terrain/config"
	"github.com/gogpu/terrain/loader"
	"github.com/gogpu/terrain/quadtree"
	"github.com/gogpu/terrain/scene"
	"github.com/gogpu/terrain/tiling"
)

// ErrNotBuilt is returned by operations that need a tree before Build.
var ErrNotBuilt = errors.New("terrain: canvas not built")

var (
	activeTilesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terrain_canvas_active_tiles",
		Help: "Tiles in the active set after the last render.",
	})
	rendersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrain_canvas_renders_total",
		Help: "Renders that owed the host a redraw.",
	})
	switchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrain_canvas_builder_switches_total",
		Help: "Map builder switches.",
	})
)

// Scene is the host container built meshes are added to.
type Scene interface {
	Add(m *scene.Mesh)
	Remove(m *scene.Mesh)
}

// Canvas orchestrates the active map builder, its quadtree and the render
// trigger.
//
// Canvas is not safe for concurrent use, except for TriggerRender.
type Canvas struct {
	cfg      config.Config
	controls camera.Controls
	loader   loader.Loader
	scene    Scene
	registry *builder.Registry
	lens     camera.Lens
	compiler scene.Compiler

	gen      quadtree.Generation
	builders map[string]builder.MapBuilder
	key      string
	active   builder.MapBuilder
	root     *quadtree.Tile
	tiles    []*quadtree.Tile
	shown    map[*quadtree.Tile]struct{}

	showBorders bool
	dirty       atomic.Bool
}

// NewCanvas validates the configuration and returns an unbuilt canvas
// subscribed to controls.
func NewCanvas(controls camera.Controls, opts ...Option) (*Canvas, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if controls == nil {
		return nil, fmt.Errorf("%w: nil controls", config.ErrInvalidConfig)
	}
	if err := o.config.Validate(); err != nil {
		return nil, err
	}

	key := o.config.Builder
	if o.builderKey != "" {
		key = o.builderKey
	}
	if key == "" {
		if keys := o.registry.Keys(); len(keys) > 0 {
			key = keys[0]
		}
	}
	if _, ok := o.registry.Get(key); !ok {
		return nil, &builder.NotFoundError{Name: key}
	}

	if o.scene == nil {
		o.scene = scene.NewGroup()
	}
	lens := camera.Lens{
		FOV:    o.config.FOV,
		Aspect: 1,
		Far:    2 * math.Max(o.config.SceneWidth, o.config.SceneHeight),
	}
	if o.lens != nil {
		lens = *o.lens
	}

	c := &Canvas{
		cfg:         o.config,
		controls:    controls,
		loader:      o.loader,
		scene:       o.scene,
		registry:    o.registry,
		lens:        lens,
		compiler:    o.compiler,
		builders:    make(map[string]builder.MapBuilder),
		key:         key,
		shown:       make(map[*quadtree.Tile]struct{}),
		showBorders: o.config.ShowTileBorders,
	}
	controls.OnChange(c.TriggerRender)
	return c, nil
}

// Build switches to the configured builder, creates its root tile and runs
// the first LOD selection. Meshes are built by the next Render.
// Calling Build again rebuilds the tree of the active builder.
func (c *Canvas) Build() error {
	if c.active == nil {
		b, err := c.builder(c.key)
		if err != nil {
			return err
		}
		if err := b.Switch(); err != nil {
			return fmt.Errorf("terrain: switch to %s: %w", c.key, err)
		}
		c.active = b
	}

	c.resetTree()
	Logger().Info("terrain: canvas built", "builder", c.key, "active_tiles", len(c.tiles))
	return nil
}

// SwitchMapBuilder makes key the active builder. The current tree is
// discarded, its in-flight loads become no-ops, and a fresh tree is grown
// for the new builder. Switching to an unknown key or a builder whose
// Switch fails leaves the canvas unchanged.
func (c *Canvas) SwitchMapBuilder(key string) error {
	if c.active == nil {
		return ErrNotBuilt
	}

	b, err := c.builder(key)
	if err != nil {
		return err
	}
	if err := b.Switch(); err != nil {
		return fmt.Errorf("terrain: switch to %s: %w", key, err)
	}

	prev := c.key
	c.active = b
	c.key = key
	c.resetTree()
	switchesTotal.Inc()
	Logger().Info("terrain: builder switched", "from", prev, "to", key, "active_tiles", len(c.tiles))
	return nil
}

// TriggerRender marks the canvas dirty. It is idempotent and safe to call
// from any goroutine.
func (c *Canvas) TriggerRender() {
	c.dirty.Store(true)
}

// Render delivers pending loader callbacks and, if the canvas is dirty,
// clears the latch, reselects the active tiles for the current camera and
// updates which meshes are shown. It reports whether the host owes a
// redraw.
func (c *Canvas) Render() bool {
	if c.active == nil {
		return false
	}
	if d, ok := c.loader.(loader.Dispatcher); ok {
		d.Dispatch()
	}
	if !c.dirty.CompareAndSwap(true, false) {
		return false
	}

	c.selectTiles()

	next := make(map[*quadtree.Tile]struct{}, len(c.tiles))
	for _, t := range c.tiles {
		next[t] = struct{}{}
	}
	for t := range c.shown {
		if _, ok := next[t]; !ok {
			t.SetVisible(false)
		}
	}
	for _, t := range c.tiles {
		if t.Renderable == nil {
			t.Renderable = c.active.BuildMesh(t)
			c.scene.Add(t.Renderable)
		}
		t.Renderable.ShowBorder = c.showBorders
		t.SetVisible(true)
	}
	c.shown = next

	activeTilesGauge.Set(float64(len(c.tiles)))
	rendersTotal.Inc()
	Logger().Debug("terrain: rendered", "builder", c.key, "active_tiles", len(c.tiles))
	return true
}

// MapBuilderKeys returns the registered builder keys in priority order.
func (c *Canvas) MapBuilderKeys() []string {
	return c.registry.Keys()
}

// MapBuilderKey returns the key of the active (or configured) builder.
func (c *Canvas) MapBuilderKey() string {
	return c.key
}

// ActiveTiles returns the tiles selected by the last LOD pass.
func (c *Canvas) ActiveTiles() []*quadtree.Tile {
	out := make([]*quadtree.Tile, len(c.tiles))
	copy(out, c.tiles)
	return out
}

// Root returns the root of the live tree, nil before Build.
func (c *Canvas) Root() *quadtree.Tile {
	return c.root
}

// Scene returns the host container meshes are added to.
func (c *Canvas) Scene() Scene {
	return c.scene
}

// ShowTileBorders reports whether tile borders are drawn.
func (c *Canvas) ShowTileBorders() bool {
	return c.showBorders
}

// SetShowTileBorders toggles the tile border overlay.
func (c *Canvas) SetShowTileBorders(show bool) {
	if c.showBorders == show {
		return
	}
	c.showBorders = show
	c.TriggerRender()
}

// Meshes returns the meshes of the active tiles that have been built.
func (c *Canvas) Meshes() []*scene.Mesh {
	out := make([]*scene.Mesh, 0, len(c.tiles))
	for _, t := range c.tiles {
		if t.Renderable != nil {
			out = append(out, t.Renderable)
		}
	}
	return out
}

// builder returns the cached builder for key, creating it on first use.
func (c *Canvas) builder(key string) (builder.MapBuilder, error) {
	if b, ok := c.builders[key]; ok {
		return b, nil
	}
	b, err := c.registry.New(key, builder.Deps{
		Config:     c.cfg,
		Controls:   c.controls,
		Loader:     c.loader,
		Trigger:    builder.TriggerFunc(c.TriggerRender),
		Generation: &c.gen,
		Compiler:   c.compiler,
	})
	if err != nil {
		return nil, err
	}
	c.builders[key] = b
	return b, nil
}

// resetTree drops every mesh of the current tree, starts a new epoch and
// grows a fresh root for the active builder.
func (c *Canvas) resetTree() {
	if c.root != nil {
		c.root.Walk(func(t *quadtree.Tile) bool {
			if t.Renderable != nil {
				c.scene.Remove(t.Renderable)
			}
			return true
		})
	}

	world := tiling.WorldBound(c.cfg.SceneWidth, c.cfg.SceneHeight)
	c.root = quadtree.NewRoot(world, c.gen.Advance(), c.active.Relief())
	c.tiles = nil
	c.shown = make(map[*quadtree.Tile]struct{})
	c.selectTiles()
	c.TriggerRender()
}

// selectTiles runs the LOD selection for the current camera.
func (c *Canvas) selectTiles() {
	zoom := min(max(c.controls.ZoomLevel(), 0), c.cfg.MaxZoom)
	view := quadtree.NewRectRegion(camera.ViewRect(c.controls, c.lens))
	c.tiles = c.active.FindVisible(c.root, zoom, view, nil)
}

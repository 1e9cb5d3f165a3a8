// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package builder

import (
	"github.com/gogpu/terrain/internal/logging"
	"github.com/gogpu/terrain/loader"
	"github.com/gogpu/terrain/quadtree"
	"github.com/gogpu/terrain/scene"
	"github.com/gogpu/terrain/tiling"
)

// Base carries what every builder shares: its dependencies, the per-zoom
// template geometry cache and the stale callback guard.
// Variants embed it and override what differs.
type Base struct {
	Deps

	key       string
	segments  int
	templates map[int]*scene.Geometry
}

// NewBase returns a base for key whose templates have segments x segments
// cells.
func NewBase(key string, deps Deps, segments int) *Base {
	if deps.Loader == nil {
		deps.Loader = loader.Nop{}
	}
	if deps.Trigger == nil {
		deps.Trigger = TriggerFunc(func() {})
	}
	if deps.Generation == nil {
		deps.Generation = &quadtree.Generation{}
	}
	return &Base{Deps: deps, key: key, segments: max(segments, 1)}
}

func (b *Base) Key() string { return b.key }

// Relief is 0 for builders that do not displace.
func (b *Base) Relief() float64 { return 0 }

// Switch prepares the template cache. Templates survive later switches
// back to the same builder.
func (b *Base) Switch() error {
	if b.templates == nil {
		b.templates = make(map[int]*scene.Geometry)
	}
	return nil
}

// Policy returns the split policy derived from the configuration.
func (b *Base) Policy() quadtree.SplitPolicy {
	return quadtree.SplitPolicy{MaxZoom: b.Config.MaxZoom, MinTileSize: b.Config.MinTileSize}
}

func (b *Base) FindVisible(root *quadtree.Tile, targetZoom int, view quadtree.ViewRegion, out []*quadtree.Tile) []*quadtree.Tile {
	return quadtree.FindVisible(root, targetZoom, 0, view, b.Policy(), out)
}

// Template returns the shared plane geometry of zoom, building it on first
// use. The returned geometry must not be modified.
func (b *Base) Template(zoom int) *scene.Geometry {
	if b.templates == nil {
		b.templates = make(map[int]*scene.Geometry)
	}
	if g, ok := b.templates[zoom]; ok {
		return g
	}
	w, h := tiling.TileSize(tiling.WorldBound(b.Config.SceneWidth, b.Config.SceneHeight), zoom)
	g := scene.NewPlaneGeometry(w, h, b.segments, b.segments)
	b.templates[zoom] = g
	logging.Logger().Debug("builder: template", "builder", b.key, "zoom", zoom, "segments", b.segments)
	return g
}

// TemplateCount returns how many zoom templates have been built.
func (b *Base) TemplateCount() int { return len(b.templates) }

// NewMesh places geometry and material at the center of t, hidden.
func (b *Base) NewMesh(t *quadtree.Tile, g *scene.Geometry, m scene.Material) *scene.Mesh {
	return &scene.Mesh{
		Key:        t.Key,
		Geometry:   g,
		Material:   m,
		Position:   [3]float64{t.Center[0], t.Center[1], 0},
		ShowBorder: b.Config.ShowTileBorders,
	}
}

// SatMaterial returns an unlit material showing the satellite imagery of
// t once it arrives.
func (b *Base) SatMaterial(t *quadtree.Tile) *scene.BasicMaterial {
	m := scene.NewBasicMaterial(scene.DefaultTexture())
	b.Loader.LoadSat(t.Key,
		Guard(b, t, "sat", m.SetMap),
		b.OnError(t, "sat"))
	return m
}

// Guard wraps apply so that it only runs for tiles of the live tree, and
// requests a redraw afterwards.
func Guard[T any](b *Base, t *quadtree.Tile, what string, apply func(T)) func(T) {
	return func(v T) {
		if !t.Live(b.Generation) {
			logging.Logger().Debug("builder: stale load dropped", "builder", b.key, "what", what, "tile", t.Key,
				"tile_generation", t.Generation(), "generation", b.Generation.Current())
			return
		}
		apply(v)
		b.Trigger.TriggerRender()
	}
}

// OnError logs a failed load; the material keeps its placeholder.
func (b *Base) OnError(t *quadtree.Tile, what string) func(error) {
	return func(err error) {
		log := logging.Logger()
		if !t.Live(b.Generation) {
			log.Debug("builder: stale load error dropped", "builder", b.key, "what", what, "tile", t.Key)
			return
		}
		log.Warn("builder: load failed", "builder", b.key, "what", what, "tile", t.Key, "err", err)
	}
}

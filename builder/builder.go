// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package builder turns quadtree tiles into renderable meshes.
//
// A MapBuilder is one visual strategy: a flat textured plane, a CPU
// displaced mesh, or a plane displaced in the vertex shader and coloured
// either by height or by satellite imagery. Builders are looked up by name
// in a Registry; the canvas owns exactly one active builder at a time.
//
// Builders never block on asset loading. Materials start with placeholder
// textures and are patched in place when the loader calls back, after which
// the builder asks the canvas for a redraw. Callbacks for tiles of a
// discarded tree are ignored.
package builder

import (
	"github.com/gogpu/terrain/camera"
	"github.com/gogpu/terrain/config"
	"github.com/gogpu/terrain/loader"
	"github.com/gogpu/terrain/quadtree"
	"github.com/gogpu/terrain/scene"
)

// Builder keys.
const (
	Key2D          = "2d"
	Key3DMesh      = "3d-mesh"
	KeyShaderColor = "3d-shader-color"
	KeyShaderSat   = "3d-shader-sat"
)

// MapBuilder is the capability set of one rendering strategy.
type MapBuilder interface {
	// Key returns the registry name of the builder.
	Key() string
	// Switch is called when the builder becomes active. It re-applies the
	// builder's camera constraints and prepares shared resources.
	Switch() error
	// Relief is the maximum height the builder displaces the surface to.
	Relief() float64
	// FindVisible appends the tiles under root to draw at targetZoom.
	FindVisible(root *quadtree.Tile, targetZoom int, view quadtree.ViewRegion, out []*quadtree.Tile) []*quadtree.Tile
	// BuildMesh returns a hidden renderable for t, positioned at its center.
	BuildMesh(t *quadtree.Tile) *scene.Mesh
	// BuildMaterial returns a placeholder material for t and starts loading
	// its real data.
	BuildMaterial(t *quadtree.Tile) scene.Material
}

// RenderTrigger receives redraw requests.
type RenderTrigger interface {
	TriggerRender()
}

// TriggerFunc adapts a function to RenderTrigger.
type TriggerFunc func()

func (f TriggerFunc) TriggerRender() { f() }

// Deps are the collaborators handed to a builder by the canvas.
type Deps struct {
	Config   config.Config
	Controls camera.Controls
	Loader   loader.Loader
	Trigger  RenderTrigger
	// Generation is the canvas epoch counter; tiles of older epochs are dead.
	Generation *quadtree.Generation
	// Compiler compiles shader programs, scene.DefaultCompiler when nil.
	Compiler scene.Compiler
}

// Factory creates a builder bound to deps.
type Factory func(deps Deps) MapBuilder

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package builder

import (
	"github.com/gogpu/terrain/quadtree"
	"github.com/gogpu/terrain/scene"
)

// Flat draws every tile as a single textured quad seen from straight above.
type Flat struct {
	*Base
}

// NewFlat returns the "2d" builder.
func NewFlat(deps Deps) MapBuilder {
	return &Flat{Base: NewBase(Key2D, deps, 1)}
}

// Switch locks the camera into a top-down view.
func (f *Flat) Switch() error {
	if f.Controls != nil {
		f.Controls.SetMaxPolarAngle(0)
	}
	return f.Base.Switch()
}

func (f *Flat) BuildMesh(t *quadtree.Tile) *scene.Mesh {
	return f.NewMesh(t, f.Template(t.Zoom), f.BuildMaterial(t))
}

func (f *Flat) BuildMaterial(t *quadtree.Tile) scene.Material {
	return f.SatMaterial(t)
}

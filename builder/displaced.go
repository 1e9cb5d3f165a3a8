// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package builder

import (
	"github.com/gogpu/terrain/loader"
	"github.com/gogpu/terrain/quadtree"
	"github.com/gogpu/terrain/scene"
)

// Displaced builds a grid mesh whose vertices are lifted on the CPU by the
// tile's elevation data, textured with satellite imagery.
type Displaced struct {
	*Base
}

// NewDisplaced returns the "3d-mesh" builder.
func NewDisplaced(deps Deps) MapBuilder {
	return &Displaced{Base: NewBase(Key3DMesh, deps, deps.Config.GridSegments)}
}

// Switch allows tilting up to the configured polar angle.
func (d *Displaced) Switch() error {
	if d.Controls != nil {
		d.Controls.SetMaxPolarAngle(d.Config.MaxPolarAngle)
	}
	return d.Base.Switch()
}

func (d *Displaced) Relief() float64 { return d.Config.BumpScale }

// BuildMesh starts flat and swaps in a displaced copy of the template when
// the height data arrives.
func (d *Displaced) BuildMesh(t *quadtree.Tile) *scene.Mesh {
	template := d.Template(t.Zoom)
	mesh := d.NewMesh(t, template, d.BuildMaterial(t))
	d.Loader.LoadHeight(t.Key,
		Guard(d.Base, t, "height", func(hm *loader.HeightMap) {
			mesh.Geometry = template.Displaced(hm.In(d.Config.HeightRange()), d.Config.BumpScale)
		}),
		d.OnError(t, "height"))
	return mesh
}

func (d *Displaced) BuildMaterial(t *quadtree.Tile) scene.Material {
	return d.SatMaterial(t)
}

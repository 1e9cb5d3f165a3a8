// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Mesh is a positioned geometry + material pair built for one tile.
type Mesh struct {
	Key      maptile.Tile
	Geometry *Geometry
	Material Material
	Position [3]float64

	// Visible is the display flag; hidden meshes stay built.
	Visible bool
	// ShowBorder asks the host to outline the tile footprint.
	ShowBorder bool
}

// Footprint returns the ground rectangle covered by the mesh.
func (m *Mesh) Footprint() orb.Bound {
	hw, hh := m.Geometry.Width/2, m.Geometry.Height/2
	return orb.Bound{
		Min: orb.Point{m.Position[0] - hw, m.Position[1] - hh},
		Max: orb.Point{m.Position[0] + hw, m.Position[1] + hh},
	}
}

// Group is an ordered set of meshes handed to a host renderer.
// It is not safe for concurrent use.
type Group struct {
	meshes []*Mesh
	index  map[*Mesh]int
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{index: make(map[*Mesh]int)}
}

// Add appends m. Adding a mesh twice is a no-op.
func (g *Group) Add(m *Mesh) {
	if _, ok := g.index[m]; ok {
		return
	}
	g.index[m] = len(g.meshes)
	g.meshes = append(g.meshes, m)
}

// Remove drops m, keeping the order of the remaining meshes.
func (g *Group) Remove(m *Mesh) {
	i, ok := g.index[m]
	if !ok {
		return
	}
	copy(g.meshes[i:], g.meshes[i+1:])
	g.meshes[len(g.meshes)-1] = nil
	g.meshes = g.meshes[:len(g.meshes)-1]
	delete(g.index, m)
	for j := i; j < len(g.meshes); j++ {
		g.index[g.meshes[j]] = j
	}
}

// Len returns the number of meshes.
func (g *Group) Len() int { return len(g.meshes) }

// Meshes returns the meshes in insertion order.
func (g *Group) Meshes() []*Mesh {
	out := make([]*Mesh, len(g.meshes))
	copy(out, g.meshes)
	return out
}

// Visible returns the meshes whose Visible flag is set.
func (g *Group) Visible() []*Mesh {
	var out []*Mesh
	for _, m := range g.meshes {
		if m.Visible {
			out = append(out, m)
		}
	}
	return out
}

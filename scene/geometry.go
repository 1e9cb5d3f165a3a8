// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"github.com/gogpu/gputypes"
)

// vertexStride is the interleaved size of one vertex:
// position (3 x f32) + normal (3 x f32) + uv (2 x f32).
const vertexStride = 32

// HeightSampler samples a normalized elevation in [0, 1].
// s and t are image coordinates in [0, 1] with t = 0 on the top row.
type HeightSampler interface {
	Normalized(s, t float64) float64
}

// Geometry is an indexed triangle grid lying in the XY plane, centered on
// the origin. Templates are shared by every tile of one zoom level and must
// not be mutated once built.
type Geometry struct {
	Width, Height        float64
	SegmentsX, SegmentsY int

	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	UVs       []float32 // uv per vertex, v = 1 on the top row
	Indices   []uint32
}

// NewPlaneGeometry builds a width x height plane split into segX x segY
// cells. Segment counts below 1 are raised to 1.
func NewPlaneGeometry(width, height float64, segX, segY int) *Geometry {
	segX = max(segX, 1)
	segY = max(segY, 1)

	gridX1 := segX + 1
	gridY1 := segY + 1
	n := gridX1 * gridY1

	g := &Geometry{
		Width:     width,
		Height:    height,
		SegmentsX: segX,
		SegmentsY: segY,
		Positions: make([]float32, 0, n*3),
		Normals:   make([]float32, 0, n*3),
		UVs:       make([]float32, 0, n*2),
		Indices:   make([]uint32, 0, segX*segY*6),
	}

	cellW := width / float64(segX)
	cellH := height / float64(segY)
	for iy := range gridY1 {
		y := height/2 - float64(iy)*cellH
		for ix := range gridX1 {
			x := float64(ix)*cellW - width/2
			g.Positions = append(g.Positions, float32(x), float32(y), 0)
			g.Normals = append(g.Normals, 0, 0, 1)
			g.UVs = append(g.UVs,
				float32(float64(ix)/float64(segX)),
				float32(1-float64(iy)/float64(segY)))
		}
	}

	for iy := range segY {
		for ix := range segX {
			a := uint32(ix + gridX1*iy)
			b := uint32(ix + gridX1*(iy+1))
			c := uint32(ix + 1 + gridX1*(iy+1))
			d := uint32(ix + 1 + gridX1*iy)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int { return len(g.Positions) / 3 }

// Displaced returns a copy of g whose vertices are moved along their normals
// by scale * height. g itself is left untouched.
func (g *Geometry) Displaced(height HeightSampler, scale float64) *Geometry {
	out := &Geometry{
		Width:     g.Width,
		Height:    g.Height,
		SegmentsX: g.SegmentsX,
		SegmentsY: g.SegmentsY,
		Positions: make([]float32, len(g.Positions)),
		Normals:   g.Normals,
		UVs:       g.UVs,
		Indices:   g.Indices,
	}
	copy(out.Positions, g.Positions)

	for i := range g.VertexCount() {
		u := float64(g.UVs[i*2])
		v := float64(g.UVs[i*2+1])
		amount := float32(scale * height.Normalized(u, 1-v))
		out.Positions[i*3] += g.Normals[i*3] * amount
		out.Positions[i*3+1] += g.Normals[i*3+1] * amount
		out.Positions[i*3+2] += g.Normals[i*3+2] * amount
	}
	return out
}

// Interleaved packs positions, normals and uvs into one vertex buffer laid
// out as described by VertexLayout.
func (g *Geometry) Interleaved() []float32 {
	n := g.VertexCount()
	buf := make([]float32, 0, n*vertexStride/4)
	for i := range n {
		buf = append(buf, g.Positions[i*3:i*3+3]...)
		buf = append(buf, g.Normals[i*3:i*3+3]...)
		buf = append(buf, g.UVs[i*2:i*2+2]...)
	}
	return buf
}

// VertexLayout describes the Interleaved buffer for pipeline creation.
func (g *Geometry) VertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: vertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
			{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, // normal
			{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2}, // uv
		},
	}
}

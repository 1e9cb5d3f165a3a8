// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package preview rasterizes a set of tile meshes seen from straight above.
//
// It is a debug host for the engine: it draws each visible mesh's colour
// texture into the mesh footprint and outlines tiles that ask for a border.
// Relief is not shaded.
package preview

import (
	"github.com/gogpu/gg"
	"github.com/paulmach/orb"

	"github.com/gogpu/terrain/internal/cache"
	"github.com/gogpu/terrain/scene"
)

var (
	background  = gg.RGB(0.10, 0.10, 0.12)
	missing     = gg.RGB(0.35, 0.35, 0.35)
	borderColor = gg.RGB(1, 0.2, 0.2)
)

// Renderer draws meshes, keeping converted textures across frames.
type Renderer struct {
	images *cache.Cache[uint64, *gg.ImageBuf]
}

// NewRenderer returns a renderer caching up to size converted textures.
func NewRenderer(size int) *Renderer {
	return &Renderer{images: cache.New[uint64, *gg.ImageBuf](size)}
}

// Render draws meshes into a w x h context covering view. The caller owns
// the returned context.
func Render(meshes []*scene.Mesh, view orb.Bound, w, h int) *gg.Context {
	return NewRenderer(len(meshes)).Render(meshes, view, w, h)
}

// Render draws the visible meshes into a w x h context covering view,
// north up.
func (r *Renderer) Render(meshes []*scene.Mesh, view orb.Bound, w, h int) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.ClearWithColor(background)

	sx := float64(w) / (view.Max[0] - view.Min[0])
	sy := float64(h) / (view.Max[1] - view.Min[1])
	rect := func(b orb.Bound) (x, y, rw, rh float64) {
		return (b.Min[0] - view.Min[0]) * sx, (view.Max[1] - b.Max[1]) * sy,
			(b.Max[0] - b.Min[0]) * sx, (b.Max[1] - b.Min[1]) * sy
	}

	for _, m := range meshes {
		if !m.Visible {
			continue
		}
		x, y, rw, rh := rect(m.Footprint())

		var tex *scene.Texture
		if m.Material != nil {
			tex = m.Material.Texture()
		}
		if tex == nil {
			dc.SetColor(missing.Color())
			dc.DrawRectangle(x, y, rw, rh)
			_ = dc.Fill()
			continue
		}
		dc.DrawImageEx(r.image(tex), gg.DrawImageOptions{
			X:         x,
			Y:         y,
			DstWidth:  rw,
			DstHeight: rh,
		})
	}

	dc.SetColor(borderColor.Color())
	dc.SetLineWidth(1)
	for _, m := range meshes {
		if m.Visible && m.ShowBorder {
			dc.DrawRectangle(rect(m.Footprint()))
			_ = dc.Stroke()
		}
	}
	return dc
}

func (r *Renderer) image(tex *scene.Texture) *gg.ImageBuf {
	if img, ok := r.images.Get(tex.ID); ok {
		return img
	}
	img := gg.ImageBufFromImage(tex.Image)
	r.images.Set(tex.ID, img)
	return img
}

// Stats reports the texture cache statistics.
func (r *Renderer) Stats() cache.Stats {
	return r.images.Stats()
}

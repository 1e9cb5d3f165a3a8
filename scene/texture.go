// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"
)

var nextTextureID atomic.Uint64

// Texture is decoded image data ready for upload.
// Gray images keep a single channel (R8Unorm); everything else is
// converted to RGBA (RGBA8Unorm).
type Texture struct {
	ID          uint64
	Image       image.Image
	Format      gputypes.TextureFormat
	Placeholder bool
}

// NewTexture wraps img into a texture, converting it to a GPU-friendly
// pixel layout.
func NewTexture(img image.Image) *Texture {
	t := &Texture{ID: nextTextureID.Add(1)}
	switch src := img.(type) {
	case *image.Gray:
		t.Image = src
		t.Format = gputypes.TextureFormatR8Unorm
	case *image.RGBA:
		t.Image = src
		t.Format = gputypes.TextureFormatRGBA8Unorm
	default:
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
		t.Image = dst
		t.Format = gputypes.TextureFormatRGBA8Unorm
	}
	return t
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (w, h int) {
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// DefaultTexture returns the shared checkerboard shown on tiles whose
// imagery has not arrived (or failed to load).
var DefaultTexture = sync.OnceValue(func() *Texture {
	const size, cells = 64, 8

	dc := gg.NewContext(size, size)
	dc.ClearWithColor(gg.RGB(0.82, 0.82, 0.82))
	dc.SetRGB(0.68, 0.68, 0.68)
	step := float64(size / cells)
	for y := range cells {
		for x := range cells {
			if (x+y)%2 == 0 {
				dc.DrawRectangle(float64(x)*step, float64(y)*step, step, step)
			}
		}
	}
	_ = dc.Fill()

	t := NewTexture(dc.Image())
	t.Placeholder = true
	return t
})

// NoBumpTexture returns the shared flat height map (all zeros) used until
// real elevation data arrives.
var NoBumpTexture = sync.OnceValue(func() *Texture {
	const size = 4

	dc := gg.NewContext(size, size)
	dc.ClearWithColor(gg.Black)
	gray := image.NewGray(image.Rect(0, 0, size, size))
	xdraw.Draw(gray, gray.Bounds(), dc.Image(), image.Point{}, xdraw.Src)

	t := NewTexture(gray)
	t.Placeholder = true
	return t
})

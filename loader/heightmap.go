package loader

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/terrain/scene"
)

// HeightMap is a grid of elevation samples in metres, stored row by row
// from the top (north) row.
type HeightMap struct {
	Width, Height int
	Samples       []float32
	Min, Max      float32
}

// NewHeightMap wraps samples and computes their range.
func NewHeightMap(width, height int, samples []float32) (*HeightMap, error) {
	if width < 1 || height < 1 || len(samples) != width*height {
		return nil, fmt.Errorf("loader: height map %dx%d with %d samples", width, height, len(samples))
	}
	hm := &HeightMap{
		Width:   width,
		Height:  height,
		Samples: samples,
		Min:     float32(math.Inf(1)),
		Max:     float32(math.Inf(-1)),
	}
	for _, v := range samples {
		hm.Min = min(hm.Min, v)
		hm.Max = max(hm.Max, v)
	}
	return hm, nil
}

// HeightRange is the elevation interval, in metres, mapped onto [0, 1] for
// displacement. Every tile of a tree is scaled by the same range so that
// neighbours agree along their shared edges.
type HeightRange struct {
	Min, Max float64
}

// Normalize maps v onto [0, 1], clamping values outside the range.
// An empty range maps everything to 0.
func (r HeightRange) Normalize(v float64) float64 {
	span := r.Max - r.Min
	if span <= 0 {
		return 0
	}
	return clamp01((v - r.Min) / span)
}

// At returns the sample at column x, row y.
func (hm *HeightMap) At(x, y int) float32 {
	return hm.Samples[y*hm.Width+x]
}

// Sample returns the bilinearly interpolated elevation in metres at (s, t),
// both in [0, 1] with t = 0 on the top row.
func (hm *HeightMap) Sample(s, t float64) float64 {
	x := clamp01(s) * float64(hm.Width-1)
	y := clamp01(t) * float64(hm.Height-1)
	x0, y0 := int(x), int(y)
	x1, y1 := min(x0+1, hm.Width-1), min(y0+1, hm.Height-1)
	fx, fy := x-float64(x0), y-float64(y0)

	top := lerp(float64(hm.At(x0, y0)), float64(hm.At(x1, y0)), fx)
	bottom := lerp(float64(hm.At(x0, y1)), float64(hm.At(x1, y1)), fx)
	return lerp(top, bottom, fy)
}

// In returns a sampler reading the map normalized by r.
func (hm *HeightMap) In(r HeightRange) scene.HeightSampler {
	return rangedHeights{hm: hm, r: r}
}

// Texture returns the map normalized by r as a single-channel texture for
// displacement in the vertex stage.
func (hm *HeightMap) Texture(r HeightRange) *scene.Texture {
	img := image.NewGray(image.Rect(0, 0, hm.Width, hm.Height))
	for i, v := range hm.Samples {
		img.Pix[i] = uint8(math.Round(r.Normalize(float64(v)) * 255))
	}
	return scene.NewTexture(img)
}

type rangedHeights struct {
	hm *HeightMap
	r  HeightRange
}

func (h rangedHeights) Normalized(s, t float64) float64 {
	return h.r.Normalize(h.hm.Sample(s, t))
}

func clamp01(v float64) float64 { return min(max(v, 0), 1) }

func lerp(a, b, f float64) float64 { return a + (b-a)*f }

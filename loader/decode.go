package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	// Registered imagery formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// HeightDecoder turns raw elevation data into a HeightMap.
type HeightDecoder func(data []byte) (*HeightMap, error)

// Height encodings accepted by ParseHeightFormat.
const (
	FormatTerrainRGB = "terrain-rgb"
	FormatGray       = "gray"
	FormatHGT        = "hgt"
)

// ErrUnknownFormat is returned by ParseHeightFormat.
var ErrUnknownFormat = errors.New("loader: unknown height format")

// MaxImageSide bounds either dimension of a decoded tile image.
const MaxImageSide = 8192

// ErrImageTooLarge is returned for images wider or taller than MaxImageSide.
var ErrImageTooLarge = errors.New("loader: image too large")

// hgtVoid marks a missing SRTM sample.
const hgtVoid = -32768

// ParseHeightFormat returns the decoder for a height encoding name.
func ParseHeightFormat(name string) (HeightDecoder, error) {
	switch name {
	case FormatTerrainRGB:
		return DecodeTerrainRGB, nil
	case FormatGray:
		return DecodeGray, nil
	case FormatHGT:
		return DecodeHGT, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// DecodeImage decodes png, jpeg, webp, tiff or bmp imagery. The header is
// checked against MaxImageSide before any pixel is allocated.
func DecodeImage(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loader: decode image: %w", err)
	}
	if cfg.Width > MaxImageSide || cfg.Height > MaxImageSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loader: decode image: %w", err)
	}
	return img, nil
}

// DecodeTerrainRGB decodes elevation packed into RGB channels:
// height = -10000 + (R*65536 + G*256 + B) * 0.1 metres.
func DecodeTerrainRGB(data []byte) (*HeightMap, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return sampleImage(img, func(c color.Color) float32 {
		r, g, b, _ := c.RGBA()
		v := (r>>8)<<16 | (g>>8)<<8 | b>>8
		return float32(-10000 + float64(v)*0.1)
	})
}

// DecodeGray decodes a grayscale height image; samples are gray levels in
// [0, 255], 16-bit images keep their fractional precision.
func DecodeGray(data []byte) (*HeightMap, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return sampleImage(img, func(c color.Color) float32 {
		return float32(color.Gray16Model.Convert(c).(color.Gray16).Y) / 257
	})
}

// DecodeHGT decodes an SRTM .hgt grid: a square of big-endian int16
// samples. Voids read as sea level.
func DecodeHGT(data []byte) (*HeightMap, error) {
	n := int(math.Sqrt(float64(len(data) / 2)))
	if n < 2 || n*n*2 != len(data) {
		return nil, fmt.Errorf("loader: hgt size %d is not a square int16 grid", len(data))
	}

	samples := make([]float32, n*n)
	for i := range samples {
		v := int16(binary.BigEndian.Uint16(data[i*2:]))
		if v != hgtVoid {
			samples[i] = float32(v)
		}
	}
	return NewHeightMap(n, n, samples)
}

func sampleImage(img image.Image, sample func(color.Color) float32) (*HeightMap, error) {
	b := img.Bounds()
	samples := make([]float32, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			samples = append(samples, sample(img.At(x, y)))
		}
	}
	return NewHeightMap(b.Dx(), b.Dy(), samples)
}

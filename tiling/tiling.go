// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package tiling maps zoom levels to tile counts and tile addresses to
// world-space extents.
//
// The world is a single rectangle split into TilesPerAxis(z) x TilesPerAxis(z)
// tiles at zoom z. Column 0 is the left (min X) column and row 0 is the top
// (max Y) row, the same orientation slippy-map tile addresses use.
package tiling

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxZoomLimit is the deepest zoom level the tiling supports.
// 1<<MaxZoomLimit still fits the uint32 tile coordinates of maptile.Tile.
const MaxZoomLimit = 30

// ErrInvalidZoom is returned for a zoom level that is negative or beyond the
// configured maximum.
var ErrInvalidZoom = errors.New("tiling: invalid zoom")

// TilesPerAxis returns the number of tiles along one axis at zoom.
// It fails with ErrInvalidZoom if zoom is negative or exceeds maxZoom
// (or MaxZoomLimit).
func TilesPerAxis(zoom, maxZoom int) (int, error) {
	if err := CheckZoom(zoom, maxZoom); err != nil {
		return 0, err
	}
	return 1 << zoom, nil
}

// CheckZoom validates zoom against [0, maxZoom] and the global limit.
func CheckZoom(zoom, maxZoom int) error {
	if maxZoom < 0 || maxZoom > MaxZoomLimit {
		return fmt.Errorf("%w: max zoom %d outside [0, %d]", ErrInvalidZoom, maxZoom, MaxZoomLimit)
	}
	if zoom < 0 || zoom > maxZoom {
		return fmt.Errorf("%w: zoom %d outside [0, %d]", ErrInvalidZoom, zoom, maxZoom)
	}
	return nil
}

// TileKey returns the address of tile (x, y) at zoom.
func TileKey(x, y uint32, zoom int) maptile.Tile {
	return maptile.New(x, y, maptile.Zoom(zoom))
}

// RootKey is the address of the single zoom-0 tile.
func RootKey() maptile.Tile {
	return maptile.New(0, 0, 0)
}

// TileExtent returns the world-space rectangle covered by key inside world.
func TileExtent(world orb.Bound, key maptile.Tile) orb.Bound {
	n := float64(uint64(1) << key.Z)
	w := (world.Max[0] - world.Min[0]) / n
	h := (world.Max[1] - world.Min[1]) / n

	minX := world.Min[0] + float64(key.X)*w
	maxY := world.Max[1] - float64(key.Y)*h
	return orb.Bound{
		Min: orb.Point{minX, maxY - h},
		Max: orb.Point{minX + w, maxY},
	}
}

// WorldBound returns the world rectangle of the given size centered on the
// origin.
func WorldBound(width, height float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{-width / 2, -height / 2},
		Max: orb.Point{width / 2, height / 2},
	}
}

// TileSize returns the width and height of a single tile at zoom.
func TileSize(world orb.Bound, zoom int) (w, h float64) {
	n := float64(uint64(1) << zoom)
	return (world.Max[0] - world.Min[0]) / n, (world.Max[1] - world.Min[1]) / n
}

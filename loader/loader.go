// Package loader fetches and decodes per-tile imagery and elevation data.
//
// Requests are fire-and-forget: a Load call returns immediately and exactly
// one of its callbacks runs later, at most once. Implementations that fetch
// on background goroutines also implement Dispatcher so that callbacks are
// delivered on the goroutine that drives rendering.
package loader

import (
	"errors"

	"github.com/paulmach/orb/maptile"

	"github.com/gogpu/terrain/scene"
)

// Loader is the asynchronous "load data for tile, call back with result"
// contract the map builders depend on.
type Loader interface {
	// LoadSat requests the satellite imagery of key.
	LoadSat(key maptile.Tile, onSuccess func(*scene.Texture), onError func(error))
	// LoadHeight requests the elevation data of key.
	LoadHeight(key maptile.Tile, onSuccess func(*HeightMap), onError func(error))
}

// Dispatcher is implemented by loaders that queue their completions.
// Dispatch runs every queued callback on the calling goroutine and returns
// how many ran.
type Dispatcher interface {
	Dispatch() int
}

// ErrNoSource is reported when a request kind has no configured source.
var ErrNoSource = errors.New("loader: no source configured")

// Nop never calls back, so every tile keeps its placeholder.
type Nop struct{}

func (Nop) LoadSat(maptile.Tile, func(*scene.Texture), func(error)) {}
func (Nop) LoadHeight(maptile.Tile, func(*HeightMap), func(error))  {}

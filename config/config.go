// Package config holds the settings of the terrain engine and its demo host.
package config

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/gogpu/terrain/loader"
	"github.com/gogpu/terrain/tiling"
)

// ErrInvalidConfig is wrapped by every validation failure that is not a
// zoom error.
var ErrInvalidConfig = errors.New("config: invalid")

// Config is read by the engine at build time and by cmd/terrainview for
// everything around it. Tags drive github.com/aukilabs/go-tooling/pkg/cli.
type Config struct {
	MaxZoom         int     `cli:""        env:"TERRAIN_MAX_ZOOM"          help:"Deepest zoom level of the tile quadtree."`
	SceneWidth      float64 `cli:""        env:"TERRAIN_SCENE_WIDTH"       help:"World width in scene units."`
	SceneHeight     float64 `cli:""        env:"TERRAIN_SCENE_HEIGHT"      help:"World height in scene units."`
	MinTileSize     float64 `cli:",hidden" env:"TERRAIN_MIN_TILE_SIZE"     help:"Tiles are not split below this side length."`
	ShowTileBorders bool    `cli:""        env:"TERRAIN_SHOW_TILE_BORDERS" help:"Draw tile borders."`
	GridSegments    int     `cli:",hidden" env:"TERRAIN_GRID_SEGMENTS"     help:"Grid segments per tile side of displaced templates."`
	BumpScale       float64 `cli:""        env:"TERRAIN_BUMP_SCALE"        help:"Maximum displacement in scene units."`
	MaxPolarAngle   float64 `cli:",hidden" env:"TERRAIN_MAX_POLAR_ANGLE"   help:"Camera tilt limit in radians for 3D builders."`
	Builder         string  `cli:""        env:"TERRAIN_BUILDER"           help:"Initial map builder (2d|3d-mesh|3d-shader-color|3d-shader-sat)."`

	FOV              float64 `cli:",hidden" env:"TERRAIN_FOV"               help:"Vertical field of view in radians."`
	CameraMinDist    float64 `cli:",hidden" env:"TERRAIN_CAMERA_MIN_DIST"   help:"Closest camera distance."`
	CameraMaxDist    float64 `cli:",hidden" env:"TERRAIN_CAMERA_MAX_DIST"   help:"Farthest camera distance, zoom level 0."`
	InitialElevation float64 `cli:""        env:"TERRAIN_INITIAL_ELEVATION" help:"Camera distance the demo zooms to."`

	SatSource    string  `cli:""        env:"TERRAIN_SAT_SOURCE"     help:"Satellite imagery directory or URL template."`
	HeightSource string  `cli:""        env:"TERRAIN_HEIGHT_SOURCE"  help:"Elevation directory or URL template."`
	HeightFormat string  `cli:""        env:"TERRAIN_HEIGHT_FORMAT"  help:"Elevation encoding (terrain-rgb|gray|hgt)."`
	HeightMin    float64 `cli:""        env:"TERRAIN_HEIGHT_MIN"     help:"Elevation drawn with no displacement."`
	HeightMax    float64 `cli:""        env:"TERRAIN_HEIGHT_MAX"     help:"Elevation drawn with the full bump scale, 255 for gray."`
	LoadRate     float64 `cli:",hidden" env:"TERRAIN_LOAD_RATE"      help:"Tile fetches per second, 0 for unlimited."`
	LoadBurst    int     `cli:",hidden" env:"TERRAIN_LOAD_BURST"     help:"Tile fetch burst."`
	LoadWorkers  int     `cli:",hidden" env:"TERRAIN_LOAD_WORKERS"   help:"Concurrent tile fetches."`
	CacheSize    int     `cli:",hidden" env:"TERRAIN_CACHE_SIZE"     help:"Decoded tiles kept in memory."`

	LogLevel    string `cli:"" env:"TERRAIN_LOG_LEVEL"    help:"Log level (debug|info|warn|error)."`
	LogFormat   string `cli:"" env:"TERRAIN_LOG_FORMAT"   help:"Log format (text|json)."`
	MetricsAddr string `cli:"" env:"TERRAIN_METRICS_ADDR" help:"Prometheus listening address, empty to disable."`
	Frames      int    `cli:"" env:"TERRAIN_FRAMES"       help:"Frames rendered by the demo."`
	Output      string `cli:"" env:"TERRAIN_OUTPUT"       help:"Preview PNG path."`
	Width       int    `cli:"" env:"TERRAIN_WIDTH"        help:"Preview width in pixels."`
	Height      int    `cli:"" env:"TERRAIN_HEIGHT"       help:"Preview height in pixels."`
	Help        bool   `cli:"" env:"-"                    help:"Show help."`
}

// Default returns a configuration that validates.
func Default() Config {
	return Config{
		MaxZoom:          6,
		SceneWidth:       1024,
		SceneHeight:      1024,
		MinTileSize:      1,
		GridSegments:     32,
		BumpScale:        40,
		MaxPolarAngle:    math.Pi / 3,
		Builder:          "2d",
		FOV:              math.Pi / 3,
		CameraMinDist:    4,
		CameraMaxDist:    2048,
		InitialElevation: 256,
		HeightFormat:     loader.FormatTerrainRGB,
		HeightMin:        0,
		HeightMax:        8849,
		LoadBurst:        8,
		LoadWorkers:      4,
		CacheSize:        256,
		LogLevel:         "info",
		LogFormat:        "text",
		Frames:           30,
		Output:           "terrain.png",
		Width:            800,
		Height:           800,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := tiling.CheckZoom(0, c.MaxZoom); err != nil {
		return err
	}

	switch {
	case c.SceneWidth <= 0 || c.SceneHeight <= 0:
		return fmt.Errorf("%w: scene size %vx%v", ErrInvalidConfig, c.SceneWidth, c.SceneHeight)
	case c.MinTileSize < 0:
		return fmt.Errorf("%w: min tile size %v", ErrInvalidConfig, c.MinTileSize)
	case c.GridSegments < 1:
		return fmt.Errorf("%w: grid segments %d", ErrInvalidConfig, c.GridSegments)
	case c.BumpScale < 0:
		return fmt.Errorf("%w: bump scale %v", ErrInvalidConfig, c.BumpScale)
	case c.MaxPolarAngle < 0 || c.MaxPolarAngle > math.Pi/2:
		return fmt.Errorf("%w: max polar angle %v outside [0, pi/2]", ErrInvalidConfig, c.MaxPolarAngle)
	case c.FOV <= 0 || c.FOV >= math.Pi:
		return fmt.Errorf("%w: fov %v", ErrInvalidConfig, c.FOV)
	case c.CameraMinDist <= 0 || c.CameraMaxDist < c.CameraMinDist:
		return fmt.Errorf("%w: camera distance [%v, %v]", ErrInvalidConfig, c.CameraMinDist, c.CameraMaxDist)
	case c.HeightMax <= c.HeightMin:
		return fmt.Errorf("%w: height range [%v, %v]", ErrInvalidConfig, c.HeightMin, c.HeightMax)
	case c.LoadRate < 0 || c.LoadWorkers < 0 || c.CacheSize < 0:
		return fmt.Errorf("%w: negative loader setting", ErrInvalidConfig)
	case !slices.Contains([]string{"text", "json"}, c.LogFormat):
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}

	if _, err := loader.ParseHeightFormat(c.HeightFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// HeightRange is the elevation interval every tile is normalized against.
func (c Config) HeightRange() loader.HeightRange {
	return loader.HeightRange{Min: c.HeightMin, Max: c.HeightMax}
}

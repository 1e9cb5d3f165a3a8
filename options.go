package terrain

import (
	"github.com/gogpu/terrain/builder"
	"github.com/gogpu/terrain/camera"
	"github.com/gogpu/terrain/config"
	"github.com/gogpu/terrain/loader"
	"github.com/gogpu/terrain/scene"
)

// Option configures a Canvas during creation.
//
// Example:
//
//	canvas, err := terrain.NewCanvas(controls,
//	    terrain.WithConfig(cfg),
//	    terrain.WithBuilderKey(builder.KeyShaderSat),
//	)
type Option func(*canvasOptions)

// canvasOptions holds optional configuration for Canvas creation.
type canvasOptions struct {
	config     config.Config
	loader     loader.Loader
	scene      Scene
	registry   *builder.Registry
	lens       *camera.Lens
	builderKey string
	compiler   scene.Compiler
}

// defaultOptions returns the default canvas options.
func defaultOptions() canvasOptions {
	return canvasOptions{
		config:   config.Default(),
		loader:   loader.Nop{},
		registry: builder.Default(),
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(o *canvasOptions) {
		o.config = cfg
	}
}

// WithLoader sets the resource loader. Without it tiles keep their
// placeholders.
func WithLoader(l loader.Loader) Option {
	return func(o *canvasOptions) {
		o.loader = l
	}
}

// WithScene sets the host container receiving built meshes.
// A scene.Group is used by default.
func WithScene(s Scene) Option {
	return func(o *canvasOptions) {
		o.scene = s
	}
}

// WithRegistry sets the registry builders are looked up in.
func WithRegistry(r *builder.Registry) Option {
	return func(o *canvasOptions) {
		o.registry = r
	}
}

// WithLens sets the projection used to derive the ground view rectangle.
func WithLens(l camera.Lens) Option {
	return func(o *canvasOptions) {
		o.lens = &l
	}
}

// WithBuilderKey selects the initial builder, overriding Config.Builder.
func WithBuilderKey(key string) Option {
	return func(o *canvasOptions) {
		o.builderKey = key
	}
}

// WithCompiler sets the shader compiler handed to builders.
func WithCompiler(c scene.Compiler) Option {
	return func(o *canvasOptions) {
		o.compiler = c
	}
}

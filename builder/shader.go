// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package builder

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/terrain/internal/logging"
	"github.com/gogpu/terrain/loader"
	"github.com/gogpu/terrain/quadtree"
	"github.com/gogpu/terrain/scene"
)

var (
	//go:embed shaders/height.wgsl
	heightWGSL string
	//go:embed shaders/color.wgsl
	colorWGSL string
	//go:embed shaders/sat.wgsl
	satWGSL string
)

// Shader displaces a flat grid in the vertex stage by sampling the tile's
// height texture. The fragment stage is chosen by the variant.
type Shader struct {
	*Base

	fragment string
	withSat  bool
	program  *scene.Program
}

// NewShaderColor returns the "3d-shader-color" builder, colouring the
// surface by height.
func NewShaderColor(deps Deps) MapBuilder {
	return &Shader{
		Base:     NewBase(KeyShaderColor, deps, deps.Config.GridSegments),
		fragment: colorWGSL,
	}
}

// NewShaderSat returns the "3d-shader-sat" builder, texturing the surface
// with satellite imagery.
func NewShaderSat(deps Deps) MapBuilder {
	return &Shader{
		Base:     NewBase(KeyShaderSat, deps, deps.Config.GridSegments),
		fragment: satWGSL,
		withSat:  true,
	}
}

// Source returns the WGSL module of the variant.
func (s *Shader) Source() string {
	return heightWGSL + "\n" + s.fragment
}

// Program returns the compiled program, nil before the first Switch.
func (s *Shader) Program() *scene.Program { return s.program }

// Switch compiles the program on first use and allows tilting.
func (s *Shader) Switch() error {
	if s.program == nil {
		p, err := scene.CompileProgram(s.key, s.Source(), s.Compiler)
		if err != nil {
			return fmt.Errorf("builder: %w", err)
		}
		s.program = p
		logging.Logger().Info("builder: program compiled", "builder", s.key, "words", len(p.SPIRV))
	}
	if s.Controls != nil {
		s.Controls.SetMaxPolarAngle(s.Config.MaxPolarAngle)
	}
	return s.Base.Switch()
}

func (s *Shader) Relief() float64 { return s.Config.BumpScale }

func (s *Shader) BuildMesh(t *quadtree.Tile) *scene.Mesh {
	return s.NewMesh(t, s.Template(t.Zoom), s.BuildMaterial(t))
}

// BuildMaterial binds the flat height placeholder (and the imagery
// placeholder for the satellite variant) and requests the real data.
func (s *Shader) BuildMaterial(t *quadtree.Tile) scene.Material {
	m := scene.NewShaderMaterial(s.program)
	m.SetFloat(scene.UniformBumpScale, float32(s.Config.BumpScale))
	m.SetTexture(scene.UniformBumpTexture, scene.NoBumpTexture())
	s.Loader.LoadHeight(t.Key,
		Guard(s.Base, t, "height", func(hm *loader.HeightMap) {
			m.SetTexture(scene.UniformBumpTexture, hm.Texture(s.Config.HeightRange()))
		}),
		s.OnError(t, "height"))

	if s.withSat {
		m.SetTexture(scene.UniformSatTexture, scene.DefaultTexture())
		s.Loader.LoadSat(t.Key,
			Guard(s.Base, t, "sat", func(tex *scene.Texture) {
				m.SetTexture(scene.UniformSatTexture, tex)
			}),
			s.OnError(t, "sat"))
	}
	return m
}

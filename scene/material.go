// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

// Uniform names shared by the displaced-surface shaders.
const (
	UniformBumpTexture = "bumpTexture"
	UniformBumpScale   = "bumpScale"
	UniformSatTexture  = "satTexture"
)

// Material describes how a mesh is shaded.
//
// Version increases every time the material is mutated in place, so a host
// can tell which GPU bindings need refreshing.
type Material interface {
	// Kind names the material family ("basic", "shader").
	Kind() string
	// Texture returns the texture carrying the visible colour, if any.
	Texture() *Texture
	// Version returns the mutation counter.
	Version() uint64
}

// BasicMaterial is an unlit material sampling a single colour texture.
type BasicMaterial struct {
	Map     *Texture
	version uint64
}

// NewBasicMaterial returns a material showing tex.
func NewBasicMaterial(tex *Texture) *BasicMaterial {
	return &BasicMaterial{Map: tex}
}

func (m *BasicMaterial) Kind() string      { return "basic" }
func (m *BasicMaterial) Texture() *Texture { return m.Map }
func (m *BasicMaterial) Version() uint64   { return m.version }

// SetMap swaps the colour texture.
func (m *BasicMaterial) SetMap(tex *Texture) {
	m.Map = tex
	m.version++
}

// Uniform is a single shader parameter: either a texture binding or a float.
type Uniform struct {
	Texture *Texture
	Float   float32
}

// ShaderMaterial binds a compiled Program to a set of named uniforms.
type ShaderMaterial struct {
	Program  *Program
	uniforms map[string]Uniform
	version  uint64
}

// NewShaderMaterial returns a material for p with no uniforms set.
func NewShaderMaterial(p *Program) *ShaderMaterial {
	return &ShaderMaterial{
		Program:  p,
		uniforms: make(map[string]Uniform),
	}
}

func (m *ShaderMaterial) Kind() string    { return "shader" }
func (m *ShaderMaterial) Version() uint64 { return m.version }

// Texture prefers the satellite texture and falls back to the height map.
func (m *ShaderMaterial) Texture() *Texture {
	if u, ok := m.uniforms[UniformSatTexture]; ok && u.Texture != nil {
		return u.Texture
	}
	return m.uniforms[UniformBumpTexture].Texture
}

// SetTexture binds tex to the named sampler uniform.
func (m *ShaderMaterial) SetTexture(name string, tex *Texture) {
	m.uniforms[name] = Uniform{Texture: tex}
	m.version++
}

// SetFloat sets the named scalar uniform.
func (m *ShaderMaterial) SetFloat(name string, v float32) {
	m.uniforms[name] = Uniform{Float: v}
	m.version++
}

// Uniform returns the named uniform.
func (m *ShaderMaterial) Uniform(name string) (Uniform, bool) {
	u, ok := m.uniforms[name]
	return u, ok
}

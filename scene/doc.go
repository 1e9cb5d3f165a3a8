// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scene defines the renderable objects map builders produce for
// tiles: plane geometry templates, textures, materials, compiled shader
// programs and positioned meshes.
//
// The package does not talk to a GPU. A host renderer walks the meshes it
// was handed (see Group) and uploads whatever changed; Material and Texture
// carry version numbers and formats for that purpose.
package scene

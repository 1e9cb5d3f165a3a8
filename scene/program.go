// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Compiler turns WGSL source into SPIR-V bytes.
type Compiler func(wgsl string) ([]byte, error)

// DefaultCompiler compiles with the pure Go naga shader compiler.
var DefaultCompiler Compiler = naga.Compile

// Program is a compiled WGSL module holding the vs_main and fs_main entry
// points of one material family.
type Program struct {
	Label  string
	Source string
	SPIRV  []uint32
}

// CompileProgram compiles source with compile (DefaultCompiler when nil).
func CompileProgram(label, source string, compile Compiler) (*Program, error) {
	if compile == nil {
		compile = DefaultCompiler
	}
	spirvBytes, err := compile(source)
	if err != nil {
		return nil, fmt.Errorf("scene: compile %s: %w", label, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("scene: compile %s: SPIR-V size %d is not a multiple of 4", label, len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return &Program{Label: label, Source: source, SPIRV: words}, nil
}

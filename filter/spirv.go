// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"fmt"

	"github.com/gogpu/naga"
)

// CompileSPIRV compiles WGSL source to a SPIR-V word slice for backends
// that do not accept WGSL modules directly.
func CompileSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

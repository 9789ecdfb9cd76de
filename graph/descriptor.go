// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// TargetDescriptor describes the frame target an effect operates on.
// It carries the subset of texture creation parameters a post-process
// chain needs; derived descriptors (halved levels, color-only copies)
// inherit format and dimensionality from their source.
type TargetDescriptor struct {
	// Width is the target width in pixels.
	Width uint32

	// Height is the target height in pixels.
	Height uint32

	// Format is the color pixel format.
	Format gputypes.TextureFormat

	// Dimension is the texture dimensionality (2D for frame targets).
	Dimension gputypes.TextureDimension

	// SampleCount is the multisample count of the target.
	SampleCount uint32

	// DepthFormat is the depth/stencil format of the target, or
	// TextureFormatUndefined when the target has no depth attachment.
	DepthFormat gputypes.TextureFormat
}

// NewTargetDescriptor returns a single-sample 2D color descriptor with the
// given size and format.
func NewTargetDescriptor(width, height uint32, format gputypes.TextureFormat) TargetDescriptor {
	return TargetDescriptor{
		Width:       width,
		Height:      height,
		Format:      format,
		Dimension:   gputypes.TextureDimension2D,
		SampleCount: 1,
		DepthFormat: gputypes.TextureFormatUndefined,
	}
}

// DescriptorFromProvider derives a frame descriptor from a host device
// provider, using the host's surface format as the color format.
func DescriptorFromProvider(h gpucontext.DeviceProvider, width, height uint32) TargetDescriptor {
	return NewTargetDescriptor(width, height, h.SurfaceFormat())
}

// ColorOnly returns a copy of the descriptor stripped of multisampling and
// depth/stencil. Post-process chains sample and write single-sample color.
func (d TargetDescriptor) ColorOnly() TargetDescriptor {
	d.SampleCount = 1
	d.DepthFormat = gputypes.TextureFormatUndefined
	return d
}

// Halved returns the descriptor one pyramid level down: width and height
// floor-divided by two, clamped to a 1x1 minimum so tiny targets still
// produce allocatable levels. Format and dimensionality are inherited.
func (d TargetDescriptor) Halved() TargetDescriptor {
	d.Width = max(d.Width/2, 1)
	d.Height = max(d.Height/2, 1)
	return d
}

// Level returns the descriptor after k halvings. Level(0) is d itself.
func (d TargetDescriptor) Level(k int) TargetDescriptor {
	for ; k > 0; k-- {
		d = d.Halved()
	}
	return d
}

// Valid reports whether the descriptor can back a texture allocation.
func (d TargetDescriptor) Valid() bool {
	return d.Width > 0 && d.Height > 0 && d.Format != gputypes.TextureFormatUndefined
}

// String returns a compact description for diagnostics.
func (d TargetDescriptor) String() string {
	return fmt.Sprintf("%dx%d format=%d samples=%d", d.Width, d.Height, d.Format, d.SampleCount)
}

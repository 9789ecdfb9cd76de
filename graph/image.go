// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// chainImageUsage allows an image to sit on either side of a blit pass and
// to be copied out for readback.
const chainImageUsage = gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageRenderAttachment |
	gputypes.TextureUsageCopySrc

// Image is a handle to one GPU-resident color buffer: a texture, its
// identity view, and the descriptor it was allocated from.
//
// Images are owned by their allocator. An effect that allocates chain
// images keeps them across frames and releases them on teardown; the
// graph itself only reads and writes through the handles.
type Image struct {
	tex  hal.Texture
	view hal.TextureView
	desc TargetDescriptor
}

// NewImage allocates a texture matching desc and creates its identity view.
// The texture is usable as both a render attachment and a sampled binding,
// which is what a blit chain needs on both sides of a pass.
func NewImage(device hal.Device, desc TargetDescriptor, label string) (*Image, error) {
	if !desc.Valid() {
		return nil, fmt.Errorf("graph: invalid image descriptor %s", desc)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   desc.SampleCount,
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         chainImageUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", label, err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view %q: %w", label, err)
	}

	return &Image{tex: tex, view: view, desc: desc}, nil
}

// WrapImage creates an Image handle around an externally owned texture and
// view, for example the pipeline's camera color buffer. The external owner
// remains responsible for destroying the texture; callers must not Release
// a wrapped image.
func WrapImage(tex hal.Texture, view hal.TextureView, desc TargetDescriptor) *Image {
	return &Image{tex: tex, view: view, desc: desc}
}

// Texture returns the underlying texture.
func (img *Image) Texture() hal.Texture { return img.tex }

// View returns the identity texture view.
func (img *Image) View() hal.TextureView { return img.view }

// Descriptor returns the descriptor the image was allocated from.
func (img *Image) Descriptor() TargetDescriptor { return img.desc }

// Width returns the image width in pixels.
func (img *Image) Width() uint32 { return img.desc.Width }

// Height returns the image height in pixels.
func (img *Image) Height() uint32 { return img.desc.Height }

// Release destroys the view and texture on the device. Safe to call on a
// nil image or more than once.
func (img *Image) Release(device hal.Device) {
	if img == nil {
		return
	}
	if img.view != nil {
		device.DestroyTextureView(img.view)
		img.view = nil
	}
	if img.tex != nil {
		device.DestroyTexture(img.tex)
		img.tex = nil
	}
}

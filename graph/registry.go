// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

package graph

// Registry is the per-frame resource table shared between the host pipeline
// and the effects it runs. It tracks the canonical camera color image,
// whether that image is the immutable backbuffer, and named global texture
// bindings published for later passes to sample.
//
// Registry is not safe for concurrent use; pass construction is
// single-threaded per frame by the host's scheduling.
type Registry struct {
	cameraColor *Image
	backbuffer  bool
	globals     map[string]*Image
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{globals: make(map[string]*Image)}
}

// SetCameraColor sets the pipeline's canonical scene color image.
// An effect that routes its output to camera color calls this with its
// final image, making that image the scene color for all later passes.
func (r *Registry) SetCameraColor(img *Image) { r.cameraColor = img }

// CameraColor returns the pipeline's canonical scene color image, or nil
// if the host has not provided one.
func (r *Registry) CameraColor() *Image { return r.cameraColor }

// SetBackbufferTarget marks whether the active color target is the final
// backbuffer. Effects that need a rewritable intermediate color buffer
// check this before emitting any passes.
func (r *Registry) SetBackbufferTarget(b bool) { r.backbuffer = b }

// IsBackbufferTarget reports whether the active color target is the
// immutable backbuffer.
func (r *Registry) IsBackbufferTarget() bool { return r.backbuffer }

// RegisterGlobal publishes img under name for later passes to sample.
// Re-registering a name replaces the previous binding.
func (r *Registry) RegisterGlobal(name string, img *Image) { r.globals[name] = img }

// Global returns the image registered under name.
func (r *Registry) Global(name string) (*Image, bool) {
	img, ok := r.globals[name]
	return img, ok
}

// Package dualblur implements a dual-filtering Kawase-style blur as a
// render-graph post-process effect.
//
// # Overview
//
// The effect downsamples the frame's color image through a fixed 4-level
// chain (full, half, quarter, eighth resolution) and upsamples back to full
// resolution, applying a cheap filtering kernel at every step. Three
// downsample and three upsample blits approximate a large-radius Gaussian
// at a fraction of its cost; the configured scale widens the kernel's
// sampling offsets instead of deepening the pyramid.
//
// # Quick Start
//
//	import (
//	    "github.com/pancar/dualblur"
//	    "github.com/pancar/dualblur/filter"
//	    "github.com/pancar/dualblur/graph"
//	)
//
//	material, _ := filter.NewMaterial(device, queue)
//	blur := dualblur.New(
//	    dualblur.WithMaterial(material),
//	    dualblur.WithScale(4),
//	)
//
//	// Once per frame:
//	reg := graph.NewRegistry()
//	reg.SetCameraColor(cameraColor)
//	b := graph.NewBuilder(device, reg)
//	blur.Record(b, frameDescriptor)
//	b.Execute(queue)
//
// # Architecture
//
// The library is organized into:
//   - Root package: the BlurChainPass effect (chain management, blit
//     sequencing, output publication)
//   - graph: frame-scoped pass builder, image handles, resource registry
//   - filter: the shared dual-filter material and its kernels
//
// # Output
//
// The blurred full-resolution image is published either by reassigning the
// registry's camera color (the effect's output becomes the canonical scene
// color), or as the named global texture binding [GlobalTextureName] that
// later passes sample without altering the scene color.
//
// # Failure policy
//
// Pass construction never fails the frame. A missing material skips the
// effect silently, an immutable backbuffer target aborts with a logged
// diagnostic, and both are retried naturally on the next frame. Enable
// diagnostics with [SetLogger].
package dualblur

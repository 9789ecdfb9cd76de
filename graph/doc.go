// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

// Package graph provides a small frame-scoped render graph for post-process
// effects built on gogpu/wgpu.
//
// # Overview
//
// A Builder collects passes for one frame. Each pass declares the images it
// reads and the images it writes; the declarations are the only ordering
// contract between passes. Execute verifies that every read of a
// frame-produced image is preceded by a write, then encodes all passes into
// a single command submission.
//
// # Resources
//
// Image wraps one GPU texture with its identity view and the TargetDescriptor
// it was allocated from. Images are plain handles: whoever allocates an Image
// owns its lifetime and releases it on the device. The graph never frees
// resources on its own.
//
// The Registry is the per-frame resource table shared between the host
// pipeline and effects: the canonical camera color image, the
// backbuffer-target flag, and named global texture bindings that later
// passes sample by name.
//
// # Execution model
//
// Pass construction is synchronous and single-threaded; one frame's Builder
// is filled and executed before the next frame's begins. Actual GPU work
// happens when Execute submits the encoded commands. Deferred functions
// registered with Defer run after the submission completes, which is the
// point where per-frame staging resources may be released.
package graph

// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// Builder errors.
var (
	// ErrReadBeforeWrite is returned when a pass reads an image that a
	// later pass produces, so the declared order cannot be scheduled.
	ErrReadBeforeWrite = errors.New("graph: pass reads an image before it is written")

	// ErrNilImage is returned when a pass declares a nil image.
	ErrNilImage = errors.New("graph: pass declares a nil image")
)

// fenceTimeout bounds how long Execute waits for the GPU.
const fenceTimeout = 5 * time.Second

// EncodeFunc records one pass's GPU commands into the frame's command
// encoder. A nil EncodeFunc is a declaration-only pass: it contributes its
// read/write dependencies to the schedule but performs no GPU work.
type EncodeFunc func(enc hal.CommandEncoder) error

// Pass is one node of the frame graph: a label for diagnostics, the images
// it reads and writes, and the encode callback.
//
// Declarations must be faithful: every image a pass samples belongs in
// Reads, every attachment it renders into belongs in Writes. The executor
// trusts the declared order and only verifies it is consistent.
type Pass struct {
	Label  string
	Reads  []*Image
	Writes []*Image
	Encode EncodeFunc
}

// Builder collects the passes of one frame in submission order.
//
// A Builder is frame-scoped: the host creates one per frame, effects append
// their passes, and the host calls Execute once. Builders are not safe for
// concurrent use.
type Builder struct {
	device   hal.Device
	registry *Registry
	label    string
	passes   []Pass
	deferred []func()
}

// NewBuilder creates a builder for one frame using the given device and
// per-frame registry.
func NewBuilder(device hal.Device, registry *Registry) *Builder {
	return &Builder{
		device:   device,
		registry: registry,
		label:    "frame",
	}
}

// SetLabel sets the debug label used for the frame's command encoder.
func (b *Builder) SetLabel(label string) { b.label = label }

// Device returns the device the frame's resources are allocated on.
func (b *Builder) Device() hal.Device { return b.device }

// Registry returns the frame's resource registry.
func (b *Builder) Registry() *Registry { return b.registry }

// AddPass appends a pass to the frame in submission order.
func (b *Builder) AddPass(p Pass) { b.passes = append(b.passes, p) }

// Passes returns the passes added so far, in submission order.
func (b *Builder) Passes() []Pass { return b.passes }

// Defer registers fn to run after the frame's submission has completed.
// Effects use this to reclaim per-frame staging resources once the GPU
// is done with them. Deferred functions run in registration order even
// when Execute fails.
func (b *Builder) Defer(fn func()) {
	if fn != nil {
		b.deferred = append(b.deferred, fn)
	}
}

// Validate checks that the declared order is schedulable: every read of an
// image that is written this frame must come after that image's first
// write. Images never written this frame are external inputs and may be
// read anywhere.
func (b *Builder) Validate() error {
	firstWrite := make(map[*Image]int)
	for i, p := range b.passes {
		for _, w := range p.Writes {
			if w == nil {
				return fmt.Errorf("%w: pass %q", ErrNilImage, p.Label)
			}
			if _, ok := firstWrite[w]; !ok {
				firstWrite[w] = i
			}
		}
	}
	for i, p := range b.passes {
		for _, r := range p.Reads {
			if r == nil {
				return fmt.Errorf("%w: pass %q", ErrNilImage, p.Label)
			}
			if w, ok := firstWrite[r]; ok && w >= i {
				return fmt.Errorf("%w: pass %q reads an image first written by pass %q",
					ErrReadBeforeWrite, p.Label, b.passes[w].Label)
			}
		}
	}
	return nil
}

// Execute validates the frame, encodes every pass into one command buffer,
// submits it, and blocks until the GPU signals completion. Deferred
// functions run before Execute returns, success or not.
//
// A frame with no passes validates and returns without touching the GPU.
func (b *Builder) Execute(queue hal.Queue) (err error) {
	defer func() {
		for _, fn := range b.deferred {
			fn()
		}
		b.deferred = nil
	}()

	if err := b.Validate(); err != nil {
		return err
	}
	if len(b.passes) == 0 {
		return nil
	}

	enc, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: b.label,
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(b.label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	for _, p := range b.passes {
		if p.Encode == nil {
			continue
		}
		if err := p.Encode(enc); err != nil {
			enc.DiscardEncoding()
			return fmt.Errorf("encode pass %q: %w", p.Label, err)
		}
	}

	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return fenceWaitError(b.device.Wait(fence, 1, fenceTimeout))
}

// fenceWaitError maps a fence wait result to the frame's error, separating
// a wait failure from a timeout where the fence never signaled.
func fenceWaitError(ok bool, err error) error {
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("GPU timeout after %v", fenceTimeout)
	}
	return nil
}

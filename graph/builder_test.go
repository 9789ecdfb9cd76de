// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func testImage(t *testing.T, device hal.Device, w, h uint32, label string) *Image {
	t.Helper()
	img, err := NewImage(device, NewTargetDescriptor(w, h, gputypes.TextureFormatRGBA8Unorm), label)
	if err != nil {
		t.Fatalf("NewImage(%s) failed: %v", label, err)
	}
	return img
}

func TestBuilderAccessors(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	reg := NewRegistry()
	b := NewBuilder(device, reg)
	if b.Device() != device {
		t.Error("device not stored correctly")
	}
	if b.Registry() != reg {
		t.Error("registry not stored correctly")
	}
	if len(b.Passes()) != 0 {
		t.Errorf("new builder has %d passes, want 0", len(b.Passes()))
	}
}

func TestValidateAcceptsWriteThenRead(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	a := testImage(t, device, 64, 64, "a")
	defer a.Release(device)
	c := testImage(t, device, 64, 64, "c")
	defer c.Release(device)

	b := NewBuilder(device, NewRegistry())
	b.AddPass(Pass{Label: "produce", Writes: []*Image{a}})
	b.AddPass(Pass{Label: "consume", Reads: []*Image{a}, Writes: []*Image{c}})

	if err := b.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsReadBeforeWrite(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	a := testImage(t, device, 64, 64, "a")
	defer a.Release(device)
	c := testImage(t, device, 64, 64, "c")
	defer c.Release(device)

	b := NewBuilder(device, NewRegistry())
	b.AddPass(Pass{Label: "consume", Reads: []*Image{a}, Writes: []*Image{c}})
	b.AddPass(Pass{Label: "produce", Writes: []*Image{a}})

	err := b.Validate()
	if !errors.Is(err, ErrReadBeforeWrite) {
		t.Errorf("Validate() = %v, want ErrReadBeforeWrite", err)
	}
}

func TestValidateRejectsReadInWritingPass(t *testing.T) {
	// A pass that both reads and first-writes the same image declares an
	// unsatisfiable order.
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	a := testImage(t, device, 64, 64, "a")
	defer a.Release(device)

	b := NewBuilder(device, NewRegistry())
	b.AddPass(Pass{Label: "self", Reads: []*Image{a}, Writes: []*Image{a}})

	if err := b.Validate(); !errors.Is(err, ErrReadBeforeWrite) {
		t.Errorf("Validate() = %v, want ErrReadBeforeWrite", err)
	}
}

func TestValidateAllowsExternalInputs(t *testing.T) {
	// Images never written this frame are external inputs; reading them
	// anywhere is fine.
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	ext := testImage(t, device, 64, 64, "external")
	defer ext.Release(device)
	dst := testImage(t, device, 64, 64, "dst")
	defer dst.Release(device)

	b := NewBuilder(device, NewRegistry())
	b.AddPass(Pass{Label: "sample", Reads: []*Image{ext}, Writes: []*Image{dst}})

	if err := b.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsNilImage(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	b := NewBuilder(device, NewRegistry())
	b.AddPass(Pass{Label: "bad", Reads: []*Image{nil}})

	if err := b.Validate(); !errors.Is(err, ErrNilImage) {
		t.Errorf("Validate() = %v, want ErrNilImage", err)
	}
}

func TestExecuteEmptyFrame(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	b := NewBuilder(device, NewRegistry())
	if err := b.Execute(queue); err != nil {
		t.Errorf("Execute() on empty frame = %v, want nil", err)
	}
}

func TestExecuteEncodesPassesInOrder(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	a := testImage(t, device, 32, 32, "a")
	defer a.Release(device)

	var order []string
	b := NewBuilder(device, NewRegistry())
	b.AddPass(Pass{
		Label:  "first",
		Writes: []*Image{a},
		Encode: func(enc hal.CommandEncoder) error {
			order = append(order, "first")
			return nil
		},
	})
	b.AddPass(Pass{
		Label: "second",
		Reads: []*Image{a},
		Encode: func(enc hal.CommandEncoder) error {
			order = append(order, "second")
			return nil
		},
	})
	b.AddPass(Pass{Label: "declaration-only", Reads: []*Image{a}})

	if err := b.Execute(queue); err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("encode order = %v, want [first second]", order)
	}
}

func TestExecutePropagatesEncodeError(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	wantErr := errors.New("encode boom")
	b := NewBuilder(device, NewRegistry())
	b.AddPass(Pass{
		Label:  "failing",
		Encode: func(enc hal.CommandEncoder) error { return wantErr },
	})

	if err := b.Execute(queue); !errors.Is(err, wantErr) {
		t.Errorf("Execute() = %v, want wrapped %v", err, wantErr)
	}
}

func TestFenceWaitError(t *testing.T) {
	if err := fenceWaitError(true, nil); err != nil {
		t.Errorf("signaled fence: err = %v, want nil", err)
	}

	waitErr := errors.New("device lost")
	err := fenceWaitError(false, waitErr)
	if !errors.Is(err, waitErr) {
		t.Errorf("wait failure not wrapped: %v", err)
	}

	err = fenceWaitError(false, nil)
	if err == nil {
		t.Fatal("timeout returned nil error")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("timeout error = %q, want a timeout message", err)
	}
	if strings.Contains(err.Error(), "%!w") {
		t.Errorf("timeout error carries a bad format verb: %q", err)
	}
}

func TestExecuteRunsDeferred(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	var ran []int
	b := NewBuilder(device, NewRegistry())
	b.Defer(func() { ran = append(ran, 1) })
	b.Defer(func() { ran = append(ran, 2) })
	b.Defer(nil)

	if err := b.Execute(queue); err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if len(ran) != 2 || ran[0] != 1 || ran[1] != 2 {
		t.Errorf("deferred order = %v, want [1 2]", ran)
	}
}

func TestExecuteRunsDeferredOnValidationFailure(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	a := testImage(t, device, 16, 16, "a")
	defer a.Release(device)

	ran := false
	b := NewBuilder(device, NewRegistry())
	b.Defer(func() { ran = true })
	b.AddPass(Pass{Label: "self", Reads: []*Image{a}, Writes: []*Image{a}})

	if err := b.Execute(queue); err == nil {
		t.Fatal("Execute() = nil, want validation error")
	}
	if !ran {
		t.Error("deferred function did not run on failure")
	}
}

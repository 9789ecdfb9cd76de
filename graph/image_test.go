// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package graph

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestNewImage(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	desc := NewTargetDescriptor(320, 240, gputypes.TextureFormatRGBA8Unorm)
	img, err := NewImage(device, desc, "test_image")
	if err != nil {
		t.Fatalf("NewImage failed: %v", err)
	}
	defer img.Release(device)

	if img.Texture() == nil {
		t.Error("expected non-nil texture")
	}
	if img.View() == nil {
		t.Error("expected non-nil view")
	}
	if img.Width() != 320 || img.Height() != 240 {
		t.Errorf("size = %dx%d, want 320x240", img.Width(), img.Height())
	}
	if img.Descriptor() != desc {
		t.Error("descriptor not stored")
	}
}

func TestNewImageRejectsInvalidDescriptor(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	_, err := NewImage(device, TargetDescriptor{}, "bad")
	if err == nil {
		t.Error("NewImage accepted a zero descriptor")
	}
}

func TestImageReleaseIdempotent(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	img := testImage(t, device, 16, 16, "release_me")
	img.Release(device)
	if img.Texture() != nil || img.View() != nil {
		t.Error("handles not cleared after Release")
	}
	img.Release(device)

	var nilImg *Image
	nilImg.Release(device)
}

func TestWrapImage(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	owned := testImage(t, device, 64, 64, "owned")
	defer owned.Release(device)

	desc := owned.Descriptor()
	wrapped := WrapImage(owned.Texture(), owned.View(), desc)
	if wrapped.Texture() != owned.Texture() {
		t.Error("wrapped texture differs from source")
	}
	if wrapped.Descriptor() != desc {
		t.Error("wrapped descriptor differs from source")
	}
}

package dualblur

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host rendering pipeline (e.g. a gogpu.App) implements the provider
// and hands it to integration code; dualblur RECEIVES the device, it does
// NOT create one. Hosts that work with gpucontext derive frame descriptors
// from the provider's surface format via graph.DescriptorFromProvider.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, giving the
// integration point a dualblur-specific name while staying compatible with
// the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations,
// for hosts that wire configuration before a GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}

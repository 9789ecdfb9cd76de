// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

// Package filter implements the shared dual-filter blur material: one
// shader module with a downsample and an upsample kernel, specialized into
// render pipelines per target format on demand.
package filter

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pancar/dualblur/graph"
)

//go:embed shaders/dual_filter.wgsl
var dualFilterShaderSource string

// blitUniformSize is the byte size of the per-blit uniform buffer.
// Layout: texel (vec2<f32>) + scale (f32) + padding (f32) = 16 bytes.
const blitUniformSize = 16

// pipelineCacheSize bounds how many (format, variant) pipeline
// specializations are kept alive.
const pipelineCacheSize = 8

// Material errors.
var (
	// ErrShaderEmpty is returned when the embedded shader source is
	// missing, which indicates a broken build.
	ErrShaderEmpty = errors.New("filter: dual_filter shader source is empty")

	// ErrNilImage is returned when Blit is called with a nil source or
	// destination image.
	ErrNilImage = errors.New("filter: blit source and destination must be non-nil")
)

// Variant selects which sub-technique of the material a blit uses.
type Variant int

const (
	// VariantDown is the 5-tap downsample kernel.
	VariantDown Variant = iota

	// VariantUp is the 8-tap upsample kernel.
	VariantUp
)

// String returns the entry-point style name of the variant.
func (v Variant) String() string {
	switch v {
	case VariantDown:
		return "down"
	case VariantUp:
		return "up"
	default:
		return fmt.Sprintf("unknown(%d)", int(v))
	}
}

// entryPoint returns the fragment entry point for the variant.
func (v Variant) entryPoint() string {
	if v == VariantUp {
		return "fs_up"
	}
	return "fs_down"
}

// BlitParams is the explicit per-blit parameter object. Every blit carries
// its own copy, so there is no shared mutable uniform state between blits
// or between frames.
type BlitParams struct {
	// Scale widens the kernel's half-texel sampling offsets. The
	// perceived blur radius grows with scale without adding pyramid
	// levels.
	Scale float32
}

// pipelineKey identifies one pipeline specialization of the material.
type pipelineKey struct {
	format  gputypes.TextureFormat
	variant Variant
}

// Material is the shared dual-filter resource: the compiled shader, the
// clamp-to-edge bilinear sampler required by the multi-level chain, and a
// cache of render pipelines specialized per destination format and variant.
//
// Per-blit staging resources (uniform buffers, bind groups) accumulate
// during a frame's encoding and are reclaimed by EndFrame after the frame's
// submission completes.
//
// Material is not safe for concurrent use; the host pipeline runs one
// frame's pass construction at a time.
type Material struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler

	pipelines *lru.Cache[pipelineKey, hal.RenderPipeline]

	// Frame-scoped staging resources, released by EndFrame.
	frameBuffers    []hal.Buffer
	frameBindGroups []hal.BindGroup
}

// NewMaterial compiles the dual-filter shader and creates the shared
// sampler and layouts. Pipelines are specialized lazily per target format.
func NewMaterial(device hal.Device, queue hal.Queue) (*Material, error) {
	if dualFilterShaderSource == "" {
		return nil, ErrShaderEmpty
	}

	m := &Material{device: device, queue: queue}

	shader, err := createShaderModule(device, "dual_filter_shader", dualFilterShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile dual_filter shader: %w", err)
	}
	m.shader = shader

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "dual_filter_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		m.Destroy()
		return nil, fmt.Errorf("create bind group layout: %w", err)
	}
	m.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "dual_filter_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{m.bindLayout},
	})
	if err != nil {
		m.Destroy()
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	m.pipeLayout = pipeLayout

	// Bilinear filtering with clamped addressing: the chain samples at
	// half-texel offsets across level boundaries, and clamping prevents
	// edge bleed and wrap artifacts.
	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "dual_filter_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		m.Destroy()
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	m.sampler = sampler

	pipelines, _ := lru.NewWithEvict[pipelineKey, hal.RenderPipeline](
		pipelineCacheSize,
		func(_ pipelineKey, p hal.RenderPipeline) { device.DestroyRenderPipeline(p) },
	)
	m.pipelines = pipelines

	return m, nil
}

// createShaderModule compiles WGSL on the device, falling back to a
// naga-compiled SPIR-V module for backends that reject WGSL directly.
func createShaderModule(device hal.Device, label, source string) (hal.ShaderModule, error) {
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: source},
	})
	if err == nil {
		return shader, nil
	}

	spirv, cerr := CompileSPIRV(source)
	if cerr != nil {
		return nil, fmt.Errorf("wgsl rejected (%v) and spirv fallback failed: %w", err, cerr)
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
}

// pipeline returns the render pipeline for the given destination format and
// variant, creating and caching it on first use.
func (m *Material) pipeline(format gputypes.TextureFormat, variant Variant) (hal.RenderPipeline, error) {
	key := pipelineKey{format: format, variant: variant}
	if p, ok := m.pipelines.Get(key); ok {
		return p, nil
	}

	p, err := m.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("dual_filter_%s_pipeline", variant),
		Layout: m.pipeLayout,
		Vertex: hal.VertexState{
			Module:     m.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     m.shader,
			EntryPoint: variant.entryPoint(),
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline for format %d: %w", variant, format, err)
	}
	m.pipelines.Add(key, p)
	return p, nil
}

// Blit encodes one filtered blit from src into dst using the given variant
// and per-blit parameters. The full destination is overwritten by a single
// fullscreen triangle draw, so the pass loads with clear.
//
// Staging resources created here stay alive until EndFrame.
func (m *Material) Blit(enc hal.CommandEncoder, src, dst *graph.Image, variant Variant, params BlitParams) error {
	if src == nil || dst == nil {
		return ErrNilImage
	}

	pipeline, err := m.pipeline(dst.Descriptor().Format, variant)
	if err != nil {
		return err
	}

	uniformBuf, err := m.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "dual_filter_uniform",
		Size:  blitUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	m.frameBuffers = append(m.frameBuffers, uniformBuf)
	m.queue.WriteBuffer(uniformBuf, 0, makeBlitUniform(src, params))

	bindGroup, err := m.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "dual_filter_bind",
		Layout: m.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: blitUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: src.View().NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: m.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	m.frameBindGroups = append(m.frameBindGroups, bindGroup)

	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: fmt.Sprintf("dual_filter_%s_%dx%d", variant, dst.Width(), dst.Height()),
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       dst.View(),
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.Draw(3, 1, 0, 0)
	rp.End()

	return nil
}

// makeBlitUniform packs the per-blit uniform: the source texel size and the
// kernel scale, as little-endian float32 words.
func makeBlitUniform(src *graph.Image, params BlitParams) []byte {
	buf := make([]byte, blitUniformSize)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(1.0/float32(src.Width())))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(1.0/float32(src.Height())))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(params.Scale))
	return buf
}

// EndFrame releases the staging resources of the frame just executed.
// Callers register it with the frame builder's Defer so it runs after the
// submission completes; calling it while the GPU still reads the resources
// is a use-after-free on native backends.
func (m *Material) EndFrame() {
	for _, bg := range m.frameBindGroups {
		m.device.DestroyBindGroup(bg)
	}
	m.frameBindGroups = m.frameBindGroups[:0]
	for _, buf := range m.frameBuffers {
		m.device.DestroyBuffer(buf)
	}
	m.frameBuffers = m.frameBuffers[:0]
}

// Destroy releases all GPU resources held by the material, including any
// staging resources not yet reclaimed. Safe to call more than once.
func (m *Material) Destroy() {
	m.EndFrame()
	if m.pipelines != nil {
		m.pipelines.Purge()
		m.pipelines = nil
	}
	if m.sampler != nil {
		m.device.DestroySampler(m.sampler)
		m.sampler = nil
	}
	if m.pipeLayout != nil {
		m.device.DestroyPipelineLayout(m.pipeLayout)
		m.pipeLayout = nil
	}
	if m.bindLayout != nil {
		m.device.DestroyBindGroupLayout(m.bindLayout)
		m.bindLayout = nil
	}
	if m.shader != nil {
		m.device.DestroyShaderModule(m.shader)
		m.shader = nil
	}
}

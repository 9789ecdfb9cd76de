package dualblur

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/pancar/dualblur/graph"
)

// Chain levels. The pyramid depth is fixed: widening the perceived blur
// radius is the scale parameter's job, not the chain's.
const (
	levelSource  = 0
	levelHalf    = 1
	levelQuarter = 2
	levelEighth  = 3

	chainDepth = 4
)

// imageChain is the descriptor-keyed cache of the effect's four chain
// buffers. The effect instance owns the images exclusively and reuses them
// across frames while the frame descriptor is stable; nothing outside the
// effect holds copies, so a resolution change cannot double-allocate.
type imageChain struct {
	levels [chainDepth]*graph.Image

	// desc is the level-0 descriptor the chain was last built for.
	desc graph.TargetDescriptor
}

// ensure makes the chain match desc, which must already be color-only.
// While the stored descriptor agrees this is a no-op and the existing
// handles stay valid; otherwise all four levels are released and
// reallocated. On failure the chain is left empty so downstream
// sequencing short-circuits instead of blitting into invalid handles.
func (c *imageChain) ensure(device hal.Device, desc graph.TargetDescriptor, label string) error {
	if c.levels[levelSource] != nil && c.desc == desc {
		return nil
	}
	c.release(device)

	for k := range c.levels {
		img, err := graph.NewImage(device, desc.Level(k), fmt.Sprintf("%s_level%d", label, k))
		if err != nil {
			c.release(device)
			return fmt.Errorf("allocate chain level %d: %w", k, err)
		}
		c.levels[k] = img
	}
	c.desc = desc
	return nil
}

// release frees all chain images and resets the stored descriptor.
func (c *imageChain) release(device hal.Device) {
	for k, img := range c.levels {
		img.Release(device)
		c.levels[k] = nil
	}
	c.desc = graph.TargetDescriptor{}
}

// valid reports whether all four levels are allocated.
func (c *imageChain) valid() bool {
	for _, img := range c.levels {
		if img == nil {
			return false
		}
	}
	return true
}

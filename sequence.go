package dualblur

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/pancar/dualblur/filter"
	"github.com/pancar/dualblur/graph"
)

// blitCount is the fixed length of the emitted blit sequence:
// three downsamples followed by three upsamples.
const blitCount = 6

// blit is one filtered blit pass descriptor. Params is the explicit
// per-blit parameter object; every blit of a frame carries the same scale,
// and no shared state is mutated between blits.
type blit struct {
	src, dst *graph.Image
	variant  filter.Variant
	params   filter.BlitParams
}

// sequenceBlits wires the fixed dual-filter pyramid over the validated
// chain: the frame's color input feeds the downsample arm, and the
// upsample arm lands in the chain's own full-resolution buffer.
//
//	input   -> half    (down)
//	half    -> quarter (down)
//	quarter -> eighth  (down)
//	eighth  -> quarter (up)
//	quarter -> half    (up)
//	half    -> source  (up)
//
// The order is a strict total order; each destination is fully written
// before the next blit reads it, and emitPasses declares those reads and
// writes faithfully so the graph can verify the schedule.
func sequenceBlits(chain *imageChain, input *graph.Image, scale int) [blitCount]blit {
	params := filter.BlitParams{Scale: float32(clampScale(scale))}

	return [blitCount]blit{
		{src: input, dst: chain.levels[levelHalf], variant: filter.VariantDown, params: params},
		{src: chain.levels[levelHalf], dst: chain.levels[levelQuarter], variant: filter.VariantDown, params: params},
		{src: chain.levels[levelQuarter], dst: chain.levels[levelEighth], variant: filter.VariantDown, params: params},
		{src: chain.levels[levelEighth], dst: chain.levels[levelQuarter], variant: filter.VariantUp, params: params},
		{src: chain.levels[levelQuarter], dst: chain.levels[levelHalf], variant: filter.VariantUp, params: params},
		{src: chain.levels[levelHalf], dst: chain.levels[levelSource], variant: filter.VariantUp, params: params},
	}
}

// emitPasses appends one graph pass per blit, declaring the source as a
// read and the destination as a write so the scheduler can serialize
// conflicting accesses.
func emitPasses(b *graph.Builder, material *filter.Material, blits [blitCount]blit, label string) {
	for i, bl := range blits {
		bl := bl
		b.AddPass(graph.Pass{
			Label:  fmt.Sprintf("%s_%s_%d", label, bl.variant, i),
			Reads:  []*graph.Image{bl.src},
			Writes: []*graph.Image{bl.dst},
			Encode: func(enc hal.CommandEncoder) error {
				return material.Blit(enc, bl.src, bl.dst, bl.variant, bl.params)
			},
		})
	}
}

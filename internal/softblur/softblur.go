// Copyright 2026 The dualblur Authors
// SPDX-License-Identifier: MIT

// Package softblur is a CPU rendition of the dual-filter blur chain.
// It mirrors the GPU pass structure on image.RGBA buffers so filter
// behavior can be checked without a device: three downsampling steps
// to an eighth of the input resolution, then three upsampling steps
// back to full size, each step applying the matching kernel.
//
// The GPU passes fuse kernel and resolution change into one draw and
// work in floating point throughout. Here the two are split: the kernel
// is applied as a convolution and the resolution change is a bilinear
// scale. Blur carries every intermediate stage in float planes and
// quantizes to 8-bit only once at the end, so low-energy detail
// survives the six stages the way it does on the GPU. Downsample and
// Upsample are single-stage conveniences on image.RGBA.
package softblur

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Blur runs the full dual-filter chain on src and returns a new image of
// the same dimensions. scale widens the kernel tap offsets; it never
// deepens the chain. A scale at or below zero is treated as 1.
func Blur(src *image.RGBA, scale float64) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	b := src.Bounds()
	widths := [4]int{b.Dx()}
	heights := [4]int{b.Dy()}
	for k := 1; k < 4; k++ {
		widths[k] = halve(widths[k-1])
		heights[k] = halve(heights[k-1])
	}

	f := fieldFromRGBA(src)
	for k := 1; k < 4; k++ {
		f = resizeField(convolveField(f, downTaps(scale), 8), widths[k], heights[k])
	}
	for k := 2; k >= 0; k-- {
		f = convolveField(resizeField(f, widths[k], heights[k]), upTaps(scale), 12)
	}
	return f.toRGBA()
}

// Downsample applies the 5-tap downsampling kernel to src and scales the
// result to w by h.
func Downsample(src *image.RGBA, w, h int, scale float64) *image.RGBA {
	k := convolveField(fieldFromRGBA(src), downTaps(scale), 8)
	return resize(k.toRGBA(), w, h)
}

// Upsample scales src to w by h and applies the 8-tap upsampling kernel.
func Upsample(src *image.RGBA, w, h int, scale float64) *image.RGBA {
	r := fieldFromRGBA(resize(src, w, h))
	return convolveField(r, upTaps(scale), 12).toRGBA()
}

func halve(n int) int {
	if n < 2 {
		return 1
	}
	return n / 2
}

func resize(src *image.RGBA, w, h int) *image.RGBA {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

type tap struct {
	dx, dy float64
	weight float64
}

// downTaps averages the center (quadruple weight) with the four diagonal
// neighbors at half-scale offsets. Weights sum to the norm of 8.
func downTaps(scale float64) []tap {
	o := 0.5 * scale
	return []tap{
		{0, 0, 4},
		{-o, -o, 1}, {o, -o, 1},
		{-o, o, 1}, {o, o, 1},
	}
}

// upTaps combines four axis-aligned taps at double offset with four
// diagonal taps at double weight. Weights sum to the norm of 12.
func upTaps(scale float64) []tap {
	o := 0.5 * scale
	return []tap{
		{-2 * o, 0, 1}, {2 * o, 0, 1},
		{0, -2 * o, 1}, {0, 2 * o, 1},
		{-o, -o, 2}, {o, -o, 2},
		{-o, o, 2}, {o, o, 2},
	}
}

// field is a float RGBA plane. Intermediate chain stages stay in fields;
// 8-bit quantization happens only at the package boundary.
type field struct {
	w, h int
	pix  []float64
}

func newField(w, h int) *field {
	return &field{w: w, h: h, pix: make([]float64, w*h*4)}
}

func fieldFromRGBA(src *image.RGBA) *field {
	b := src.Bounds()
	f := newField(b.Dx(), b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			o := src.PixOffset(x, y)
			f.pix[i+0] = float64(src.Pix[o+0])
			f.pix[i+1] = float64(src.Pix[o+1])
			f.pix[i+2] = float64(src.Pix[o+2])
			f.pix[i+3] = float64(src.Pix[o+3])
			i += 4
		}
	}
	return f
}

func (f *field) toRGBA() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, f.w, f.h))
	for i := 0; i < len(f.pix); i++ {
		dst.Pix[i] = clamp8(f.pix[i])
	}
	return dst
}

// texel fetches one pixel with clamp-to-edge addressing, matching the GPU
// sampler configuration.
func (f *field) texel(x, y int) (r, g, b, a float64) {
	x = clampInt(x, 0, f.w-1)
	y = clampInt(y, 0, f.h-1)
	i := (y*f.w + x) * 4
	return f.pix[i], f.pix[i+1], f.pix[i+2], f.pix[i+3]
}

// sample fetches at fractional pixel coordinates with bilinear blending.
func (f *field) sample(fx, fy float64) (r, g, b, a float64) {
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	tx := fx - x0
	ty := fy - y0

	r00, g00, b00, a00 := f.texel(int(x0), int(y0))
	r10, g10, b10, a10 := f.texel(int(x0)+1, int(y0))
	r01, g01, b01, a01 := f.texel(int(x0), int(y0)+1)
	r11, g11, b11, a11 := f.texel(int(x0)+1, int(y0)+1)

	r = lerp(lerp(r00, r10, tx), lerp(r01, r11, tx), ty)
	g = lerp(lerp(g00, g10, tx), lerp(g01, g11, tx), ty)
	b = lerp(lerp(b00, b10, tx), lerp(b01, b11, tx), ty)
	a = lerp(lerp(a00, a10, tx), lerp(a01, a11, tx), ty)
	return r, g, b, a
}

func convolveField(src *field, taps []tap, norm float64) *field {
	dst := newField(src.w, src.h)
	i := 0
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			var r, g, b, a float64
			for _, t := range taps {
				sr, sg, sb, sa := src.sample(float64(x)+t.dx, float64(y)+t.dy)
				r += sr * t.weight
				g += sg * t.weight
				b += sb * t.weight
				a += sa * t.weight
			}
			dst.pix[i+0] = r / norm
			dst.pix[i+1] = g / norm
			dst.pix[i+2] = b / norm
			dst.pix[i+3] = a / norm
			i += 4
		}
	}
	return dst
}

// resizeField scales src to w by h with bilinear sampling, pixel centers
// mapped center-to-center.
func resizeField(src *field, w, h int) *field {
	if src.w == w && src.h == h {
		return src
	}
	dst := newField(w, h)
	sx := float64(src.w) / float64(w)
	sy := float64(src.h) / float64(h)
	i := 0
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			r, g, b, a := src.sample(fx, fy)
			dst.pix[i+0] = r
			dst.pix[i+1] = g
			dst.pix[i+2] = b
			dst.pix[i+3] = a
			i += 4
		}
	}
	return dst
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

package dualblur

import "github.com/pancar/dualblur/filter"

// Scale bounds. Scale widens the kernel's sampling offsets; values outside
// the range are clamped rather than rejected.
const (
	// MinScale is the smallest accepted blur scale.
	MinScale = 1

	// MaxScale is the largest accepted blur scale.
	MaxScale = 25

	// DefaultScale is the scale used when none is configured.
	DefaultScale = 2
)

// Option configures a BlurChainPass during creation.
// Options are set once outside the per-frame hot path.
//
// Example:
//
//	blur := dualblur.New(
//	    dualblur.WithMaterial(material),
//	    dualblur.WithScale(4),
//	    dualblur.WithRouteToCameraColor(true),
//	)
type Option func(*passOptions)

// passOptions holds the configuration of a BlurChainPass.
type passOptions struct {
	scale              int
	material           *filter.Material
	routeToCameraColor bool
	label              string
}

// defaultOptions returns the default pass configuration.
func defaultOptions() passOptions {
	return passOptions{
		scale: DefaultScale,
		label: "dual_blur",
	}
}

// WithScale sets the blur scale, clamped to [MinScale, MaxScale]. The
// scale multiplies the per-sample spread inside the filter kernel; the
// pyramid depth never changes.
func WithScale(scale int) Option {
	return func(o *passOptions) {
		o.scale = clampScale(scale)
	}
}

// WithMaterial sets the shared dual-filter material the blit passes use.
// Without a material the effect skips every frame.
func WithMaterial(m *filter.Material) Option {
	return func(o *passOptions) {
		o.material = m
	}
}

// WithRouteToCameraColor controls where the blurred image goes. When true,
// the registry's camera color is reassigned to the effect's output, making
// it the canonical scene color for subsequent passes. When false (the
// default), the output is published as the global texture binding
// [GlobalTextureName] and the scene color is left untouched.
func WithRouteToCameraColor(route bool) Option {
	return func(o *passOptions) {
		o.routeToCameraColor = route
	}
}

// WithLabel sets the debug label prefix used for the chain's GPU resources
// and emitted passes.
func WithLabel(label string) Option {
	return func(o *passOptions) {
		if label != "" {
			o.label = label
		}
	}
}

// clampScale clamps scale into [MinScale, MaxScale].
func clampScale(scale int) int {
	if scale < MinScale {
		return MinScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}

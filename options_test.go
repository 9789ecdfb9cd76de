package dualblur

import "testing"

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.scale != DefaultScale {
		t.Errorf("default scale = %d, want %d", o.scale, DefaultScale)
	}
	if o.material != nil {
		t.Error("default options carry a material")
	}
	if o.routeToCameraColor {
		t.Error("default options route to camera color")
	}
	if o.label != "dual_blur" {
		t.Errorf("default label = %q, want dual_blur", o.label)
	}
}

func TestWithScaleClamps(t *testing.T) {
	tests := []struct {
		name  string
		scale int
		want  int
	}{
		{"in range", 4, 4},
		{"min", MinScale, MinScale},
		{"max", MaxScale, MaxScale},
		{"below min", 0, MinScale},
		{"negative", -7, MinScale},
		{"above max", 100, MaxScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			WithScale(tt.scale)(&o)
			if o.scale != tt.want {
				t.Errorf("WithScale(%d) = %d, want %d", tt.scale, o.scale, tt.want)
			}
		})
	}
}

func TestWithRouteToCameraColor(t *testing.T) {
	o := defaultOptions()
	WithRouteToCameraColor(true)(&o)
	if !o.routeToCameraColor {
		t.Error("WithRouteToCameraColor(true) did not set routing")
	}
	WithRouteToCameraColor(false)(&o)
	if o.routeToCameraColor {
		t.Error("WithRouteToCameraColor(false) did not clear routing")
	}
}

func TestWithLabelIgnoresEmpty(t *testing.T) {
	o := defaultOptions()
	WithLabel("")(&o)
	if o.label != "dual_blur" {
		t.Errorf("empty label overwrote default, got %q", o.label)
	}
	WithLabel("bloom_blur")(&o)
	if o.label != "bloom_blur" {
		t.Errorf("label = %q, want bloom_blur", o.label)
	}
}

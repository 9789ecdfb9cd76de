package dualblur

import "errors"

// Failure classes of per-frame pass construction. None of these propagate
// to the host pipeline as a failed frame: Record logs them, emits no
// passes, and the next frame retries the same checks independently.
var (
	// ErrNoMaterial means the filter material has not been configured.
	// The effect is skipped silently until one is supplied.
	ErrNoMaterial = errors.New("dualblur: filter material not configured")

	// ErrBackbufferTarget means the active color target is the immutable
	// final backbuffer, so there is no rewritable color buffer to publish
	// into.
	ErrBackbufferTarget = errors.New("dualblur: active color target is the backbuffer")

	// ErrNoCameraColor means the frame registry carries no camera color
	// image to read from.
	ErrNoCameraColor = errors.New("dualblur: no camera color image in registry")
)

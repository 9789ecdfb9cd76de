package dualblur

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/pancar/dualblur/graph"
)

// GlobalTextureName is the name the blurred image is registered under when
// the effect does not route its output to camera color. Later passes
// sample it through the registry by this name.
const GlobalTextureName = "BlurredTex"

// Phase is the per-frame state of the effect's pass construction.
//
// Each Record call walks Uninitialized -> ResourcesReady -> Sequenced ->
// Published in order. PhaseAborted is the only alternate terminal state,
// taken when the backbuffer precondition fails before any resources are
// touched.
type Phase int

const (
	// PhaseUninitialized means Record has not progressed this frame.
	PhaseUninitialized Phase = iota

	// PhaseResourcesReady means the chain buffers exist and match the
	// frame descriptor.
	PhaseResourcesReady

	// PhaseSequenced means the six blit passes have been emitted.
	PhaseSequenced

	// PhasePublished means the output has been routed or registered.
	PhasePublished

	// PhaseAborted means the frame was abandoned before any pass was
	// emitted.
	PhaseAborted
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseResourcesReady:
		return "ResourcesReady"
	case PhaseSequenced:
		return "Sequenced"
	case PhasePublished:
		return "Published"
	case PhaseAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// BlurChainPass is the dual-filter blur effect. One instance serves one
// host pipeline and is invoked at most once per frame; the instance owns
// the four chain buffers exclusively and reuses them across frames while
// the target resolution is stable.
//
// BlurChainPass is not safe for concurrent use. The host pipeline's
// per-frame scheduling runs one frame's pass construction to completion
// before the next begins, which is also what keeps the per-blit parameter
// objects race-free.
type BlurChainPass struct {
	opts  passOptions
	chain imageChain
	phase Phase
}

// New creates a blur effect with the given configuration.
func New(opts ...Option) *BlurChainPass {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &BlurChainPass{opts: o}
}

// SetScale updates the blur scale outside the per-frame hot path,
// clamped to [MinScale, MaxScale].
func (p *BlurChainPass) SetScale(scale int) { p.opts.scale = clampScale(scale) }

// Scale returns the configured blur scale.
func (p *BlurChainPass) Scale() int { return p.opts.scale }

// Phase returns the state the previous Record call ended in.
func (p *BlurChainPass) Phase() Phase { return p.phase }

// Output returns the full-resolution chain buffer the blurred result lands
// in, or nil before the first successful Record.
func (p *BlurChainPass) Output() *graph.Image { return p.chain.levels[levelSource] }

// Record builds the effect's passes for one frame: it validates the
// frame's preconditions, (re)allocates the chain for the frame descriptor,
// emits the six filtered blits with their read/write declarations, and
// publishes the result.
//
// Failures never propagate as a failed frame. Record logs a diagnostic,
// emits nothing, and leaves the next frame to retry the same checks:
//   - no material configured: skipped silently (debug log)
//   - backbuffer target or no camera color in the registry: aborted with
//     a warning, per-frame state PhaseAborted
//   - chain allocation failure: logged as an error, nothing emitted, the
//     phase stays PhaseUninitialized
func (p *BlurChainPass) Record(b *graph.Builder, target graph.TargetDescriptor) {
	p.phase = PhaseUninitialized

	if p.opts.material == nil {
		Logger().Debug("skipping blur pass", "reason", ErrNoMaterial)
		return
	}

	// Publishing requires a rewritable color target; check before any
	// allocation or sequencing so an aborted frame touches nothing.
	if b.Registry().IsBackbufferTarget() {
		Logger().Warn("aborting blur pass", "reason", ErrBackbufferTarget)
		p.phase = PhaseAborted
		return
	}

	input := b.Registry().CameraColor()
	if input == nil {
		Logger().Warn("aborting blur pass", "reason", ErrNoCameraColor)
		p.phase = PhaseAborted
		return
	}

	// The blur operates on single-sample color only.
	desc := target.ColorOnly()
	if err := p.chain.ensure(b.Device(), desc, p.opts.label); err != nil {
		Logger().Error("blur chain allocation failed", "error", err, "target", desc.String())
		return
	}
	p.phase = PhaseResourcesReady

	blits := sequenceBlits(&p.chain, input, p.opts.scale)
	emitPasses(b, p.opts.material, blits, p.opts.label)
	b.Defer(p.opts.material.EndFrame)
	p.phase = PhaseSequenced

	p.publish(b)
	p.phase = PhasePublished
}

// publish makes the blurred full-resolution image visible to the rest of
// the pipeline, either as the new canonical scene color or as the named
// global binding.
func (p *BlurChainPass) publish(b *graph.Builder) {
	final := p.chain.levels[levelSource]

	if p.opts.routeToCameraColor {
		b.Registry().SetCameraColor(final)
		return
	}

	b.Registry().RegisterGlobal(GlobalTextureName, final)

	// Declaration-only pass scoped after the blits: it performs no GPU
	// work, it only anchors the binding's availability behind the final
	// upsample in the declared schedule.
	b.AddPass(graph.Pass{
		Label: p.opts.label + "_publish",
		Reads: []*graph.Image{final},
	})
}

// Destroy releases the chain buffers on the device. The host calls this on
// teardown; per-frame staging resources belong to the material and are
// reclaimed by its EndFrame.
func (p *BlurChainPass) Destroy(device hal.Device) {
	p.chain.release(device)
	p.phase = PhaseUninitialized
}

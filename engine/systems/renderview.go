package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

/**
 * @brief The view system holds the fixed table of views and the default
 * output surface. Configuration is sticky across frames; only Reset clears it.
 */
type ViewSystem struct {
	views      [metadata.MaxViews]metadata.View
	backbuffer metadata.Canvas
}

func NewViewSystem() (*ViewSystem, error) {
	vs := &ViewSystem{}
	vs.backbuffer.Name = "backbuffer"
	return vs, nil
}

// ViewOption changes one aspect of a view's configuration.
type ViewOption func(*metadata.View)

// WithClearColor clears the target to a 0xRRGGBBAA colour before the view's draws.
func WithClearColor(color uint32) ViewOption {
	return func(v *metadata.View) {
		v.Flags |= metadata.ViewClearColor
		v.ClearColor = color
	}
}

// WithClearDepth clears the target depth to depth before the view's draws.
func WithClearDepth(depth float32) ViewOption {
	return func(v *metadata.View) {
		v.Flags |= metadata.ViewClearDepth
		v.ClearDepth = depth
	}
}

func WithDepthTest(mode metadata.DepthTest) ViewOption {
	return func(v *metadata.View) {
		v.Flags &^= metadata.ViewDepthTestMask
		switch mode {
		case metadata.DepthTestNone:
		case metadata.DepthTestLT:
			v.Flags |= metadata.ViewDepthTestLT
		case metadata.DepthTestGT:
			v.Flags |= metadata.ViewDepthTestGT
		case metadata.DepthTestEQ:
			v.Flags |= metadata.ViewDepthTestEQ
		default:
			core.Assert(false, "unknown depth test mode %d", mode)
		}
	}
}

// WithScissor restricts every draw of the view to the rectangle, top-left origin.
func WithScissor(x, y, w, h uint16) ViewOption {
	return func(v *metadata.View) {
		v.Flags |= metadata.ViewScissor
		v.Scissor = metadata.Rect{X: x, Y: y, W: w, H: h}
	}
}

// WithCanvas renders the view into canvas. layer selects the face of a cube canvas.
func WithCanvas(canvas *metadata.Canvas, layer int) ViewOption {
	return func(v *metadata.View) {
		core.Assert(canvas != nil, "view canvas must not be nil")
		core.Assert(layer >= 0 && layer < 6, "canvas layer %d out of range", layer)
		v.Canvas = canvas
		v.CanvasLayer = layer
	}
}

// WithTransform stores camera matrices on the view for the caller's use.
func WithTransform(view, projLeft, projRight mgl32.Mat4) ViewOption {
	return func(v *metadata.View) {
		v.View = view
		v.ProjLeft = projLeft
		v.ProjRight = projRight
	}
}

// WithName labels the view's debug group.
func WithName(name string) ViewOption {
	return func(v *metadata.View) {
		v.Name = name
	}
}

// Configure applies opts to view id. Unset aspects keep their value.
func (vs *ViewSystem) Configure(id uint8, opts ...ViewOption) {
	v := &vs.views[id]
	for _, o := range opts {
		o(v)
	}
}

// Get returns view id.
func (vs *ViewSystem) Get(id uint8) *metadata.View {
	return &vs.views[id]
}

// Target returns the canvas view id renders into.
func (vs *ViewSystem) Target(id uint8) *metadata.Canvas {
	return vs.target(&vs.views[id])
}

func (vs *ViewSystem) target(v *metadata.View) *metadata.Canvas {
	if v.Canvas != nil {
		return v.Canvas
	}
	return &vs.backbuffer
}

func (vs *ViewSystem) Width(id uint8) uint16 {
	return vs.Target(id).Width
}

func (vs *ViewSystem) Height(id uint8) uint16 {
	return vs.Target(id).Height
}

func (vs *ViewSystem) Dimensions(id uint8) (uint16, uint16) {
	c := vs.Target(id)
	return c.Width, c.Height
}

/**
 * @brief Blit queues a copy of view src's target into view dst's target,
 * executed right after dst's clears. Both views must render to different targets.
 */
func (vs *ViewSystem) Blit(dst, src uint8, x, y, w, h uint16) {
	source := vs.Target(src)
	core.Assert(source != vs.Target(dst), "blit source and destination views %d and %d share a target", src, dst)
	v := &vs.views[dst]
	v.Blits = append(v.Blits, metadata.BlitOp{
		Source: source,
		Rect:   metadata.Rect{X: x, Y: y, W: w, H: h},
	})
}

// Backbuffer returns the default output surface.
func (vs *ViewSystem) Backbuffer() *metadata.Canvas {
	return &vs.backbuffer
}

// resize describes the default output surface. It is always usable.
func (vs *ViewSystem) resize(width, height uint16) {
	vs.backbuffer = metadata.Canvas{
		Name:      "backbuffer",
		Width:     width,
		Height:    height,
		Allocated: 1,
	}
}

// reset zeroes every view, configuration included.
func (vs *ViewSystem) reset() {
	for i := range vs.views {
		vs.views[i] = metadata.View{}
	}
}

// clearQueues empties every view's queues, keeping their configuration.
func (vs *ViewSystem) clearQueues() {
	for i := range vs.views {
		vs.views[i].ClearQueues()
	}
}

func (vs *ViewSystem) Shutdown() error {
	vs.reset()
	return nil
}

package metadata

import "github.com/go-gl/mathgl/mgl32"

/** @brief Per-view configuration bits. */
type ViewFlags uint32

const (
	ViewClearColor  ViewFlags = 1 << 0
	ViewClearDepth  ViewFlags = 1 << 1
	ViewDepthTestLT ViewFlags = 1 << 2
	ViewDepthTestGT ViewFlags = 1 << 3
	ViewDepthTestEQ ViewFlags = 1 << 4
	ViewScissor     ViewFlags = 1 << 5

	ViewClearMask     = ViewClearColor | ViewClearDepth
	ViewDepthTestMask = ViewDepthTestLT | ViewDepthTestGT | ViewDepthTestEQ
)

/** @brief Depth comparison used by a view. */
type DepthTest int

const (
	DepthTestNone DepthTest = iota
	/** @brief Less-or-equal. */
	DepthTestLT
	/** @brief Greater-or-equal. */
	DepthTestGT
	DepthTestEQ
)

/**
 * @brief A view is one render pass. Its configuration survives frames;
 * its queues are drained by every frame.
 */
type View struct {
	Flags ViewFlags
	/** @brief Debug group label. Empty means "View <id>". */
	Name string

	/** @brief Target canvas, nil for the default surface. */
	Canvas *Canvas
	/** @brief Cube face rendered to when Canvas is a cube canvas. */
	CanvasLayer int

	ClearColor uint32
	ClearDepth float32
	Scissor    Rect

	Draws []Draw
	Jobs  []Draw
	Blits []BlitOp

	/** @brief Camera matrices. Stored for the caller, unused by execution. */
	View      mgl32.Mat4
	ProjLeft  mgl32.Mat4
	ProjRight mgl32.Mat4
}

// Empty reports whether the view has no work for the frame.
func (v *View) Empty() bool {
	return len(v.Draws) == 0 && len(v.Jobs) == 0
}

// ClearQueues drops queued commands while keeping capacity and configuration.
func (v *View) ClearQueues() {
	for i := range v.Draws {
		v.Draws[i] = Draw{}
	}
	v.Draws = v.Draws[:0]
	for i := range v.Jobs {
		v.Jobs[i] = Draw{}
	}
	v.Jobs = v.Jobs[:0]
	v.Blits = v.Blits[:0]
}

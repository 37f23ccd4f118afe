package systems

import (
	"fmt"

	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/math"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

// scissorState is the scissor configuration last sent to the device.
type scissorState struct {
	known   bool
	enabled bool
	rect    [4]int32
}

// frameState is what the executor tracks while walking the views.
type frameState struct {
	stats   metadata.Stats
	debugID uint32

	program     metadata.Program
	lastAttribs uint32
	scissor     scissorState
	lastCanvas  *metadata.Canvas
}

/**
 * @brief Frame executes every queued command against the device, view by
 * view in index order, then drains the queues and the per-frame arenas.
 * Not reentrant: draw callbacks must not call Frame.
 * @return Statistics of the executed frame.
 */
func (rc *RenderContext) Frame() metadata.Stats {
	core.Assert(rc.stage != StageExecuting, "Frame called while a frame is executing")
	core.Assert(rc.stage == StageReady, "Frame called before Reset")
	rc.stage = StageExecuting

	fs := &frameState{}
	dev := rc.device

	rc.ShaderSystem.releaseCompiler()
	if rc.caps.DebugOutput {
		dev.Enable(metadata.CapDebugOutput)
	}
	if rc.caps.SeamlessCubemap {
		dev.Enable(metadata.CapSeamlessCubemap)
	}

	var vao uint32
	if rc.ext.VertexArrays != nil {
		vao = rc.ext.VertexArrays.CreateVertexArray()
		rc.ext.VertexArrays.BindVertexArray(vao)
	} else {
		// without a fresh vertex array the arrays of the last frame are still enabled
		fs.lastAttribs = rc.enabledAttribs
	}

	rc.ext.PushGroup(fs.next(), "Update Resources")
	rc.BufferSystem.flush(rc.ext)
	rc.TextureSystem.uploadPending()
	rc.ext.PopGroup()

	for id := 0; id < metadata.MaxViews; id++ {
		rc.executeView(fs, uint8(id))
	}
	rc.TextureSystem.generateMips(fs.lastCanvas)

	rc.CommandSystem.reset()
	rc.BufferSystem.resetTransient()
	rc.UniformSystem.resetFrame()

	dev.Disable(metadata.CapScissorTest)
	dev.ColorMask(true, true, true, true)

	if rc.ext.VertexArrays != nil {
		rc.ext.VertexArrays.DeleteVertexArray(vao)
	} else {
		rc.enabledAttribs = fs.lastAttribs
	}
	rc.ext.Check()

	rc.stage = StageReady
	return fs.stats
}

func (fs *frameState) next() uint32 {
	id := fs.debugID
	fs.debugID++
	return id
}

func (rc *RenderContext) executeView(fs *frameState, id uint8) {
	view := rc.ViewSystem.Get(id)
	defer view.ClearQueues()
	if view.Empty() {
		return
	}

	label := fmt.Sprintf("View %d", id)
	if view.Name != "" {
		label = fmt.Sprintf("%s (%d)", view.Name, id)
	}
	rc.ext.PushGroup(fs.next(), label)
	defer rc.ext.PopGroup()
	defer rc.ext.Check()

	if len(view.Jobs) > 0 && rc.caps.Compute {
		rc.ext.PushGroup(fs.next(), "Compute")
		for i := range view.Jobs {
			rc.executeJob(fs, &view.Jobs[i])
		}
		rc.ext.PopGroup()
	}

	if len(view.Draws) == 0 {
		return
	}

	// counted even when the target turns out unusable
	fs.stats.Draws += uint32(len(view.Draws))
	fs.stats.Blits += uint32(len(view.Blits))

	canvas := rc.ViewSystem.target(view)
	// only happens when the canvas could not be created
	if canvas.Allocated == 0 {
		return
	}

	dev := rc.device
	dev.BindFramebuffer(canvas.FBO)
	dev.Viewport(0, 0, int32(canvas.Width), int32(canvas.Height))

	if canvas.Cube {
		face := metadata.CubeFace(view.CanvasLayer)
		dev.FramebufferTexture2D(metadata.AttachmentColor0, face, canvas.Images[0], 0)
		dev.FramebufferTexture2D(metadata.AttachmentDepth, face, canvas.Images[1], 0)
	}

	if fs.lastCanvas != nil && fs.lastCanvas != canvas && fs.lastCanvas.FBO != canvas.FBO {
		rc.TextureSystem.generateMips(fs.lastCanvas)
	}
	fs.lastCanvas = canvas

	viewScissor := view.Flags&metadata.ViewScissor != 0
	rc.applyScissor(fs, viewScissor, view.Scissor, canvas)

	// clears honour the write masks
	dev.ColorMask(true, true, true, true)
	dev.DepthMask(true)

	var mask metadata.ClearMask
	if view.Flags&metadata.ViewClearColor != 0 {
		mask |= metadata.ClearColor
		dev.ClearColor(math.UnpackRGBA(view.ClearColor))
	}
	if view.Flags&metadata.ViewClearDepth != 0 {
		mask |= metadata.ClearDepth
		dev.ClearDepth(view.ClearDepth)
	}
	if mask != 0 {
		dev.Clear(mask)
	}

	if rc.ext.Blitter != nil {
		for _, b := range view.Blits {
			rc.executeBlit(b, canvas)
		}
	}

	switch {
	case view.Flags&metadata.ViewDepthTestLT != 0:
		dev.Enable(metadata.CapDepthTest)
		dev.DepthFunc(metadata.DepthFuncLEqual)
	case view.Flags&metadata.ViewDepthTestGT != 0:
		dev.Enable(metadata.CapDepthTest)
		dev.DepthFunc(metadata.DepthFuncGEqual)
	case view.Flags&metadata.ViewDepthTestEQ != 0:
		dev.Enable(metadata.CapDepthTest)
		dev.DepthFunc(metadata.DepthFuncEqual)
	default:
		dev.Disable(metadata.CapDepthTest)
	}

	var last metadata.State
	for i := range view.Draws {
		d := &view.Draws[i]
		if i == 0 {
			// force every group on the first draw of a view
			last = ^d.Flags
		}
		rc.applyState(d.Flags, d.Flags^last)
		last = d.Flags

		if d.UseScissor {
			rc.applyScissor(fs, true, d.Scissor, canvas)
		} else {
			rc.applyScissor(fs, viewScissor, view.Scissor, canvas)
		}
		rc.executeDraw(fs, d)
	}
}

func (rc *RenderContext) bindProgram(fs *frameState, program metadata.Program) {
	if program != fs.program {
		rc.device.UseProgram(uint32(program))
		fs.program = program
	}
}

func (rc *RenderContext) uploadUniforms(program metadata.Program, uniforms []metadata.Uniform) {
	for i := range uniforms {
		u := &uniforms[i]
		loc := rc.UniformSystem.Location(program, u.Name)
		if loc < 0 {
			continue
		}
		rc.device.Uniform(loc, u.Type, int32(u.LastCount), u.Data)
	}
}

/**
 * @brief bindStorage binds the storage buffers of d. A dirty buffer gets a
 * barrier before it is bound again, and a written one is marked dirty.
 * Empty slots are unbound only when unbindEmpty is set, so draws keep the
 * bindings of earlier jobs.
 */
func (rc *RenderContext) bindStorage(d *metadata.Draw, unbindEmpty bool) {
	dev := rc.device
	for slot := 0; slot < metadata.MaxSlots; slot++ {
		buf := d.Buffers[slot]
		if buf == nil {
			if unbindEmpty {
				dev.BindBufferBase(metadata.BufferTargetShaderStorage, uint32(slot), 0)
			}
			continue
		}
		if buf.Dirty {
			dev.MemoryBarrier(metadata.BarrierShaderStorage)
			buf.Dirty = false
		}
		if d.BufferWrite[slot] {
			buf.Dirty = true
		}
		dev.BindBufferBase(metadata.BufferTargetShaderStorage, uint32(slot), buf.ID)
	}
}

// executeJob runs one compute job.
func (rc *RenderContext) executeJob(fs *frameState, job *metadata.Draw) {
	dev := rc.device
	rc.bindProgram(fs, job.Program)
	rc.uploadUniforms(job.Program, job.Uniforms)

	rc.bindStorage(job, true)
	dev.DispatchCompute(job.ThreadsX, job.ThreadsY, job.ThreadsZ)
	fs.stats.Dispatches++
}

// applyState issues the device calls of every state group present in diff.
func (rc *RenderContext) applyState(flags, diff metadata.State) {
	dev := rc.device
	if diff&metadata.StateDepthWrite != 0 {
		dev.DepthMask(flags&metadata.StateDepthWrite != 0)
	}
	if diff&metadata.StateMSAA != 0 && rc.caps.Multisample {
		if flags&metadata.StateMSAA != 0 {
			dev.Enable(metadata.CapMultisample)
		} else {
			dev.Disable(metadata.CapMultisample)
		}
	}
	if diff&metadata.StateCullMask != 0 {
		switch {
		case flags&metadata.StateCullCW != 0:
			dev.Enable(metadata.CapCullFace)
			dev.FrontFace(metadata.WindingCW)
		case flags&metadata.StateCullCCW != 0:
			dev.Enable(metadata.CapCullFace)
			dev.FrontFace(metadata.WindingCCW)
		default:
			dev.Disable(metadata.CapCullFace)
		}
	}
	if diff&metadata.StateBlendMask != 0 {
		if flags&metadata.StateBlendMask != 0 {
			dev.Enable(metadata.CapBlend)
			dev.BlendFunc(metadata.BlendOne, metadata.BlendOneMinusSrcAlpha)
		} else {
			dev.Disable(metadata.CapBlend)
		}
	}
	if diff&(metadata.StateRGBWrite|metadata.StateAlphaWrite) != 0 {
		rgb := flags&metadata.StateRGBWrite != 0
		dev.ColorMask(rgb, rgb, rgb, flags&metadata.StateAlphaWrite != 0)
	}
}

// applyScissor sends the scissor only when it differs from the device's.
func (rc *RenderContext) applyScissor(fs *frameState, enabled bool, r metadata.Rect, canvas *metadata.Canvas) {
	s := &fs.scissor
	if !enabled {
		if !s.known || s.enabled {
			rc.device.Disable(metadata.CapScissorTest)
		}
		s.known, s.enabled = true, false
		return
	}
	rect := [4]int32{
		int32(r.X),
		math.FlipY(int32(r.Y), int32(r.H), int32(canvas.Height)),
		int32(r.W),
		int32(r.H),
	}
	if !s.known || !s.enabled {
		rc.device.Enable(metadata.CapScissorTest)
	}
	if !s.known || !s.enabled || s.rect != rect {
		rc.device.Scissor(rect[0], rect[1], rect[2], rect[3])
	}
	s.known, s.enabled, s.rect = true, true, rect
}

func (rc *RenderContext) executeBlit(b metadata.BlitOp, dst *metadata.Canvas) {
	src := b.Source
	if src == nil || src.Allocated == 0 {
		return
	}
	x0, w, h := int32(b.Rect.X), int32(b.Rect.W), int32(b.Rect.H)
	srcY := math.FlipY(int32(b.Rect.Y), h, int32(src.Height))
	dstY := math.FlipY(int32(b.Rect.Y), h, int32(dst.Height))
	mask := metadata.ClearColor
	if src.Format.HasDepth() && dst.Format.HasDepth() {
		mask |= metadata.ClearDepth
	}
	rc.ext.Blitter.BlitFramebuffer(src.FBO, dst.FBO,
		[4]int32{x0, srcY, x0 + w, srcY + h},
		[4]int32{x0, dstY, x0 + w, dstY + h},
		mask)
}

func (rc *RenderContext) executeDraw(fs *frameState, d *metadata.Draw) {
	dev := rc.device
	rc.bindProgram(fs, d.Program)
	rc.uploadUniforms(d.Program, d.Uniforms)

	for slot, t := range d.Textures {
		if t.Image == 0 {
			continue
		}
		target := metadata.TextureTarget2D
		if t.Cube {
			target = metadata.TextureTargetCubeMap
		}
		dev.ActiveTexture(uint32(slot))
		dev.BindTexture(target, t.Image)
	}
	rc.bindStorage(d, false)

	if d.Callback != nil {
		d.Callback()
	}
	if !d.UseVBO {
		return
	}

	vbo := d.VBO
	core.Assert(vbo != nil && vbo.ID != 0, "draw without a live vertex buffer")
	mode := metadata.PrimitiveFor(d.Flags)

	if vbo.Dirty {
		dev.MemoryBarrier(metadata.BarrierVertexAttribArray)
		vbo.Dirty = false
	}

	format := &vbo.Format
	var base uint32
	if d.UseTVB {
		format = &d.TVBFormat
		base = d.Offset
	}
	core.Assert(format.Stride > 0, "draw with an unfinalized vertex format")

	dev.BindBuffer(metadata.BufferTargetArray, vbo.ID)

	var real uint32
	for slot := 0; slot < format.Count; slot++ {
		if format.Mask&(1<<slot) == 0 {
			continue
		}
		c := format.Components[slot]
		if c.Type == metadata.ComponentSkip {
			continue
		}
		dev.EnableVertexAttribArray(real)
		dev.VertexAttribPointer(real, int32(c.Size), c.Type, c.Normalized, int32(format.Stride), int(c.Offset+base))
		real++
	}
	for i := real; i < fs.lastAttribs; i++ {
		dev.DisableVertexAttribArray(i)
	}
	fs.lastAttribs = real

	if d.UseIBO {
		ibo := d.IBO
		core.Assert(ibo != nil && ibo.ID != 0, "draw without a live index buffer")
		if ibo.Dirty {
			dev.MemoryBarrier(metadata.BarrierElementArray)
			ibo.Dirty = false
		}
		offset := 0
		if !d.UseTVB {
			offset = int(d.Offset)
		}
		dev.BindBuffer(metadata.BufferTargetElementArray, ibo.ID)
		dev.DrawElementsInstanced(mode, int32(d.Indices), offset, 1)
		return
	}
	dev.DrawArraysInstanced(mode, 0, int32(d.Indices), 1)
}

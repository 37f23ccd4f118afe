package systems

import (
	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

/**
 * @brief The command system records one pending command through its Set
 * calls. Submit and Dispatch copy it into a view, resolving the uniforms
 * set so far, and (unless retained) start over from the defaults.
 */
type CommandSystem struct {
	pending metadata.Draw

	views    *ViewSystem
	uniforms *UniformSystem
	buffers  *BufferSystem
}

func NewCommandSystem(vs *ViewSystem, us *UniformSystem, bs *BufferSystem) (*CommandSystem, error) {
	cs := &CommandSystem{
		views:    vs,
		uniforms: us,
		buffers:  bs,
	}
	cs.reset()
	return cs, nil
}

func (cs *CommandSystem) reset() {
	cs.pending = metadata.Draw{Flags: metadata.StateDefault}
}

// Pending returns the command being recorded.
func (cs *CommandSystem) Pending() *metadata.Draw {
	return &cs.pending
}

// SetCallback runs cb right before the command's vertex setup. cb must
// restore any scissor, program or render state it changes.
func (cs *CommandSystem) SetCallback(cb metadata.DrawCallback) {
	cs.pending.Callback = cb
}

func (cs *CommandSystem) SetState(flags metadata.State) {
	cs.pending.Flags = flags
}

// SetScissor overrides the view's scissor for this command only.
func (cs *CommandSystem) SetScissor(x, y, w, h uint16) {
	cs.pending.UseScissor = true
	cs.pending.Scissor = metadata.Rect{X: x, Y: y, W: w, H: h}
}

// SetUniform records float data for u, visible to every later submit of the frame.
func (cs *CommandSystem) SetUniform(u *metadata.Uniform, data []float32, count int) {
	cs.uniforms.SetFloats(u, data, count)
}

// SetUniformInt records integer data for u, visible to every later submit of the frame.
func (cs *CommandSystem) SetUniformInt(u *metadata.Uniform, data []int32, count int) {
	cs.uniforms.SetInts(u, data, count)
}

/**
 * @brief SetTexture binds tex to slot and points the sampler uniform at it.
 * The image sampled is the one active at submit time.
 */
func (cs *CommandSystem) SetTexture(sampler *metadata.Uniform, tex *metadata.Texture, slot uint8) {
	core.Assert(int(slot) < metadata.MaxSlots, "texture slot %d out of range", slot)
	core.Assert(tex != nil && tex.Image() > 0, "texture must be a live texture")
	cs.uniforms.SetSampler(sampler, slot)
	cs.pending.Textures[slot] = metadata.TextureBinding{
		Texture: tex,
		Image:   tex.Image(),
		Cube:    tex.Flags.Has(metadata.TextureCube),
	}
}

// SetBuffer binds buf as shader storage to slot. write marks it dirty for later readers.
func (cs *CommandSystem) SetBuffer(buf *metadata.Buffer, slot uint8, write bool) {
	core.Assert(int(slot) < metadata.MaxSlots, "buffer slot %d out of range", slot)
	core.Assert(buf != nil, "buffer must not be nil")
	cs.pending.Buffers[slot] = buf
	cs.pending.BufferWrite[slot] = write
}

// SetTransientBuffer draws tb's vertices.
func (cs *CommandSystem) SetTransientBuffer(tb metadata.TransientBuffer) {
	core.Assert(tb.HasFormat, "transient buffer has no vertex format")
	cs.pending.VBO = cs.buffers.Transient()
	cs.pending.UseVBO = true
	cs.pending.UseTVB = true
	cs.pending.TVBFormat = tb.Format
	cs.pending.Offset = tb.Offset
	cs.pending.Indices = tb.Num
}

// SetVertices draws count vertices of vbo, unless indices were set.
func (cs *CommandSystem) SetVertices(vbo *metadata.Buffer, count uint32) {
	core.Assert(vbo != nil, "vertex buffer must not be nil")
	core.Assert(vbo.HasFormat && vbo.Format.Finalized(), "vertex buffer has no finalized format")
	cs.pending.VBO = vbo
	cs.pending.UseVBO = true
	cs.pending.UseTVB = false
	if !cs.pending.UseIBO {
		cs.pending.Indices = count
	}
}

// SetIndices draws count indices of ibo.
func (cs *CommandSystem) SetIndices(ibo *metadata.Buffer, count uint32) {
	core.Assert(ibo != nil, "index buffer must not be nil")
	cs.pending.IBO = ibo
	cs.pending.UseIBO = true
	cs.pending.Indices = count
}

// snapshot copies the pending command and attaches its resolved uniforms.
func (cs *CommandSystem) snapshot(program metadata.Program) metadata.Draw {
	cs.pending.Program = program
	d := cs.pending
	d.Uniforms = nil
	cs.uniforms.Resolve(program, &d)
	return d
}

/**
 * @brief Submit queues the pending command as a draw on view id.
 * @param retain Keep the pending command for the next submit.
 */
func (cs *CommandSystem) Submit(id uint8, program metadata.Program, retain bool) {
	core.Assert(program != 0, "submit to view %d without a program", id)
	v := cs.views.Get(id)
	v.Draws = append(v.Draws, cs.snapshot(program))
	if !retain {
		cs.reset()
	}
}

// SubmitOrdered is Submit with a sort depth recorded on the draw. Draws are not reordered.
func (cs *CommandSystem) SubmitOrdered(id uint8, program metadata.Program, depth uint32, retain bool) {
	cs.pending.Depth = depth
	cs.Submit(id, program, retain)
}

// Dispatch queues the pending command as a compute job on view id.
func (cs *CommandSystem) Dispatch(id uint8, program metadata.Program, x, y, z uint32) {
	core.Assert(program != 0, "dispatch to view %d without a program", id)
	core.Assert(x+y+z > 0, "dispatch to view %d without threads", id)
	v := cs.views.Get(id)
	job := cs.snapshot(program)
	job.ThreadsX, job.ThreadsY, job.ThreadsZ = x, y, z
	v.Jobs = append(v.Jobs, job)
	cs.reset()
}

// Touch makes view id execute this frame even without draws. The pending command is discarded.
func (cs *CommandSystem) Touch(id uint8) {
	cs.reset()
	v := cs.views.Get(id)
	v.Draws = append(v.Draws, cs.pending)
}

func (cs *CommandSystem) Shutdown() error {
	cs.reset()
	return nil
}

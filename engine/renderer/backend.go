package renderer

import "github.com/spaghettifunk/tinyfx/engine/renderer/metadata"

// Device is the binding table the renderer drives. It mirrors an
// immediate-mode graphics API: every call takes effect on the device's
// current state. Handles are device object names, 0 meaning "none".
type Device interface {
	Info() metadata.DeviceInfo
	Extensions() []string
	// MaxAnisotropy returns the largest anisotropy the device accepts.
	MaxAnisotropy() float32
	// ShaderCompilerPresent reports whether the device has an online compiler that can be released.
	ShaderCompilerPresent() bool
	ReleaseShaderCompiler()

	// fixed function state
	Enable(cap metadata.Capability)
	Disable(cap metadata.Capability)
	DepthMask(write bool)
	DepthFunc(fn metadata.DepthFunc)
	ColorMask(r, g, b, a bool)
	FrontFace(winding metadata.Winding)
	BlendFunc(src, dst metadata.BlendFactor)
	Viewport(x, y, w, h int32)
	Scissor(x, y, w, h int32)
	ClearColor(r, g, b, a float32)
	ClearDepth(depth float32)
	Clear(mask metadata.ClearMask)

	// buffers
	CreateBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target metadata.BufferTarget, id uint32)
	BufferData(target metadata.BufferTarget, size int, data []byte, usage metadata.Usage)
	BufferSubData(target metadata.BufferTarget, offset int, data []byte)
	BindBufferBase(target metadata.BufferTarget, index uint32, id uint32)

	// textures
	CreateTexture() uint32
	DeleteTexture(id uint32)
	ActiveTexture(unit uint32)
	BindTexture(target metadata.TextureTarget, id uint32)
	TexParameteri(target metadata.TextureTarget, param metadata.TextureParam, value metadata.FilterMode)
	TexParameterf(target metadata.TextureTarget, param metadata.TextureParam, value float32)
	TexImage2D(target metadata.TextureTarget, level int32, internal metadata.PixelFormat, w, h int32, format metadata.PixelFormat, typ metadata.PixelType, pixels []byte)
	TexSubImage2D(target metadata.TextureTarget, level int32, x, y, w, h int32, format metadata.PixelFormat, typ metadata.PixelType, pixels []byte)
	GenerateMipmap(target metadata.TextureTarget)
	UnpackAlignment(n int32)

	// render targets
	CreateFramebuffer() uint32
	DeleteFramebuffer(id uint32)
	BindFramebuffer(id uint32)
	FramebufferTexture(attachment metadata.Attachment, texture uint32, level int32)
	FramebufferTexture2D(attachment metadata.Attachment, target metadata.TextureTarget, texture uint32, level int32)
	CreateRenderbuffer() uint32
	DeleteRenderbuffer(id uint32)
	RenderbufferStorage(id uint32, format metadata.PixelFormat, w, h int32)
	FramebufferRenderbuffer(attachment metadata.Attachment, renderbuffer uint32)
	DrawBuffer(attachment metadata.Attachment)
	ReadBuffer(attachment metadata.Attachment)
	FramebufferComplete() bool

	// programs
	CreateShader(stage metadata.ShaderStage) uint32
	// CompileShader returns false and the device log on failure.
	CompileShader(shader uint32, source string) (bool, string)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	BindAttribLocation(program uint32, index uint32, name string)
	// LinkProgram returns false and the device log on failure.
	LinkProgram(program uint32) (bool, string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	// UniformLocation returns a negative location for names the program does not use.
	UniformLocation(program uint32, name string) int32
	// Uniform uploads count elements of typ. Float types carry IEEE-754 bits.
	Uniform(location int32, typ metadata.UniformType, count int32, data []uint32)

	// compute
	MemoryBarrier(bits metadata.BarrierBits)
	DispatchCompute(x, y, z uint32)

	// vertex input and draws
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, typ metadata.ComponentType, normalized bool, stride int32, offset int)
	DrawArraysInstanced(mode metadata.PrimitiveMode, first, count, instances int32)
	DrawElementsInstanced(mode metadata.PrimitiveMode, count int32, offset int, instances int32)
}

// Optional entry points. Devices that lack them get a fallback.

// DebugGrouper annotates captures with nested groups.
type DebugGrouper interface {
	PushDebugGroup(id uint32, label string)
	PopDebugGroup()
}

// BufferMapper maps a buffer range for writing. Without it updates go
// through Device.BufferSubData.
type BufferMapper interface {
	// MapBufferRange returns nil when the mapping fails.
	MapBufferRange(target metadata.BufferTarget, offset, size int) []byte
	UnmapBuffer(target metadata.BufferTarget) bool
}

// VertexArrayer owns vertex array objects, required by core profiles.
type VertexArrayer interface {
	CreateVertexArray() uint32
	BindVertexArray(id uint32)
	DeleteVertexArray(id uint32)
}

// Blitter copies between framebuffers. Without it blits are counted but skipped.
type Blitter interface {
	BlitFramebuffer(src, dst uint32, srcRect, dstRect [4]int32, mask metadata.ClearMask)
}

// MemoryReporter exposes the total video memory in KiB.
type MemoryReporter interface {
	TotalAvailableMemoryKB() int32
}

// ErrorReporter drains the device error queue.
type ErrorReporter interface {
	// DeviceErrors returns every pending error code and clears the queue.
	DeviceErrors() []uint32
}

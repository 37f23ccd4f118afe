// Package rendertest provides a recording renderer.Device for tests.
package rendertest

import (
	"fmt"

	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// Device records every call. Object names are handed out from a single
// counter starting at 1, so they never collide across object kinds.
type Device struct {
	Calls []Call

	Exts        []string
	Anisotropy  float32
	HasCompiler bool

	// Locations maps uniform names to locations for every program.
	// Names absent from the map resolve to -1.
	Locations map[string]int32
	// ProgramLocations overrides Locations per program.
	ProgramLocations map[uint32]map[string]int32

	// FailCompile makes CompileShader fail for the given stages.
	FailCompile map[metadata.ShaderStage]bool
	FailLink    bool
	// Incomplete makes FramebufferComplete report false.
	Incomplete bool

	// Sources keeps every compiled shader source by shader name.
	Sources map[uint32]string

	nextID uint32
}

// NewDevice returns a device that reports a GL 4.3 style feature set.
func NewDevice() *Device {
	return &Device{
		Anisotropy:  16,
		HasCompiler: true,
		Locations:   make(map[string]int32),
		FailCompile: make(map[metadata.ShaderStage]bool),
		Sources:     make(map[uint32]string),
	}
}

func (d *Device) record(name string, args ...any) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

func (d *Device) gen() uint32 {
	d.nextID++
	return d.nextID
}

// Mark returns the current position in the call log.
func (d *Device) Mark() int {
	return len(d.Calls)
}

// Since returns the calls recorded after mark.
func (d *Device) Since(mark int) []Call {
	return d.Calls[mark:]
}

// Count returns how many calls named name were recorded.
func (d *Device) Count(name string) int {
	return CountIn(d.Calls, name)
}

// Find returns every call named name.
func (d *Device) Find(name string) []Call {
	var out []Call
	for _, c := range d.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Index returns the position of the first call named name at or after from, or -1.
func (d *Device) Index(name string, from int) int {
	for i := from; i < len(d.Calls); i++ {
		if d.Calls[i].Name == name {
			return i
		}
	}
	return -1
}

// ResetCalls forgets the recorded calls.
func (d *Device) ResetCalls() {
	d.Calls = d.Calls[:0]
}

// CountIn counts the calls named name in calls.
func CountIn(calls []Call, name string) int {
	n := 0
	for _, c := range calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

func (d *Device) Info() metadata.DeviceInfo {
	return metadata.DeviceInfo{Vendor: "rendertest", Renderer: "recorder", Version: "4.3", GLSL: "4.30"}
}

func (d *Device) Extensions() []string   { return d.Exts }
func (d *Device) MaxAnisotropy() float32 { return d.Anisotropy }
func (d *Device) ShaderCompilerPresent() bool {
	return d.HasCompiler
}
func (d *Device) ReleaseShaderCompiler() { d.record("ReleaseShaderCompiler") }

func (d *Device) Enable(cap metadata.Capability)  { d.record("Enable", cap) }
func (d *Device) Disable(cap metadata.Capability) { d.record("Disable", cap) }
func (d *Device) DepthMask(write bool)            { d.record("DepthMask", write) }
func (d *Device) DepthFunc(fn metadata.DepthFunc) { d.record("DepthFunc", fn) }
func (d *Device) ColorMask(r, g, b, a bool)       { d.record("ColorMask", r, g, b, a) }
func (d *Device) FrontFace(w metadata.Winding)    { d.record("FrontFace", w) }
func (d *Device) BlendFunc(src, dst metadata.BlendFactor) {
	d.record("BlendFunc", src, dst)
}
func (d *Device) Viewport(x, y, w, h int32)     { d.record("Viewport", x, y, w, h) }
func (d *Device) Scissor(x, y, w, h int32)      { d.record("Scissor", x, y, w, h) }
func (d *Device) ClearColor(r, g, b, a float32) { d.record("ClearColor", r, g, b, a) }
func (d *Device) ClearDepth(depth float32)      { d.record("ClearDepth", depth) }
func (d *Device) Clear(mask metadata.ClearMask) { d.record("Clear", mask) }

func (d *Device) CreateBuffer() uint32 {
	id := d.gen()
	d.record("CreateBuffer", id)
	return id
}
func (d *Device) DeleteBuffer(id uint32) { d.record("DeleteBuffer", id) }
func (d *Device) BindBuffer(target metadata.BufferTarget, id uint32) {
	d.record("BindBuffer", target, id)
}
func (d *Device) BufferData(target metadata.BufferTarget, size int, data []byte, usage metadata.Usage) {
	d.record("BufferData", target, size, usage)
}
func (d *Device) BufferSubData(target metadata.BufferTarget, offset int, data []byte) {
	d.record("BufferSubData", target, offset, append([]byte(nil), data...))
}
func (d *Device) BindBufferBase(target metadata.BufferTarget, index uint32, id uint32) {
	d.record("BindBufferBase", target, index, id)
}

func (d *Device) CreateTexture() uint32 {
	id := d.gen()
	d.record("CreateTexture", id)
	return id
}
func (d *Device) DeleteTexture(id uint32) { d.record("DeleteTexture", id) }
func (d *Device) ActiveTexture(unit uint32) {
	d.record("ActiveTexture", unit)
}
func (d *Device) BindTexture(target metadata.TextureTarget, id uint32) {
	d.record("BindTexture", target, id)
}
func (d *Device) TexParameteri(target metadata.TextureTarget, param metadata.TextureParam, value metadata.FilterMode) {
	d.record("TexParameteri", target, param, value)
}
func (d *Device) TexParameterf(target metadata.TextureTarget, param metadata.TextureParam, value float32) {
	d.record("TexParameterf", target, param, value)
}
func (d *Device) TexImage2D(target metadata.TextureTarget, level int32, internal metadata.PixelFormat, w, h int32, format metadata.PixelFormat, typ metadata.PixelType, pixels []byte) {
	d.record("TexImage2D", target, level, internal, w, h, format, typ, len(pixels))
}
func (d *Device) TexSubImage2D(target metadata.TextureTarget, level int32, x, y, w, h int32, format metadata.PixelFormat, typ metadata.PixelType, pixels []byte) {
	d.record("TexSubImage2D", target, level, x, y, w, h, format, typ, append([]byte(nil), pixels...))
}
func (d *Device) GenerateMipmap(target metadata.TextureTarget) {
	d.record("GenerateMipmap", target)
}
func (d *Device) UnpackAlignment(n int32) { d.record("UnpackAlignment", n) }

func (d *Device) CreateFramebuffer() uint32 {
	id := d.gen()
	d.record("CreateFramebuffer", id)
	return id
}
func (d *Device) DeleteFramebuffer(id uint32) { d.record("DeleteFramebuffer", id) }
func (d *Device) BindFramebuffer(id uint32)   { d.record("BindFramebuffer", id) }
func (d *Device) FramebufferTexture(attachment metadata.Attachment, texture uint32, level int32) {
	d.record("FramebufferTexture", attachment, texture, level)
}
func (d *Device) FramebufferTexture2D(attachment metadata.Attachment, target metadata.TextureTarget, texture uint32, level int32) {
	d.record("FramebufferTexture2D", attachment, target, texture, level)
}
func (d *Device) CreateRenderbuffer() uint32 {
	id := d.gen()
	d.record("CreateRenderbuffer", id)
	return id
}
func (d *Device) DeleteRenderbuffer(id uint32) { d.record("DeleteRenderbuffer", id) }
func (d *Device) RenderbufferStorage(id uint32, format metadata.PixelFormat, w, h int32) {
	d.record("RenderbufferStorage", id, format, w, h)
}
func (d *Device) FramebufferRenderbuffer(attachment metadata.Attachment, renderbuffer uint32) {
	d.record("FramebufferRenderbuffer", attachment, renderbuffer)
}
func (d *Device) DrawBuffer(attachment metadata.Attachment) { d.record("DrawBuffer", attachment) }
func (d *Device) ReadBuffer(attachment metadata.Attachment) { d.record("ReadBuffer", attachment) }
func (d *Device) FramebufferComplete() bool {
	d.record("FramebufferComplete")
	return !d.Incomplete
}

func (d *Device) CreateShader(stage metadata.ShaderStage) uint32 {
	id := d.gen()
	d.record("CreateShader", stage, id)
	return id
}

func (d *Device) stageOf(shader uint32) metadata.ShaderStage {
	for _, c := range d.Calls {
		if c.Name == "CreateShader" && c.Args[1].(uint32) == shader {
			return c.Args[0].(metadata.ShaderStage)
		}
	}
	return -1
}

func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	d.record("CompileShader", shader)
	d.Sources[shader] = source
	if d.FailCompile[d.stageOf(shader)] {
		return false, "0:1(1): error: syntax error"
	}
	return true, ""
}
func (d *Device) DeleteShader(shader uint32) { d.record("DeleteShader", shader) }
func (d *Device) CreateProgram() uint32 {
	id := d.gen()
	d.record("CreateProgram", id)
	return id
}
func (d *Device) AttachShader(program, shader uint32) {
	d.record("AttachShader", program, shader)
}
func (d *Device) BindAttribLocation(program uint32, index uint32, name string) {
	d.record("BindAttribLocation", program, index, name)
}
func (d *Device) LinkProgram(program uint32) (bool, string) {
	d.record("LinkProgram", program)
	if d.FailLink {
		return false, "error: linking failed"
	}
	return true, ""
}
func (d *Device) DeleteProgram(program uint32) { d.record("DeleteProgram", program) }
func (d *Device) UseProgram(program uint32)    { d.record("UseProgram", program) }
func (d *Device) UniformLocation(program uint32, name string) int32 {
	d.record("UniformLocation", program, name)
	if locs, ok := d.ProgramLocations[program]; ok {
		if loc, ok := locs[name]; ok {
			return loc
		}
		return -1
	}
	if loc, ok := d.Locations[name]; ok {
		return loc
	}
	return -1
}
func (d *Device) Uniform(location int32, typ metadata.UniformType, count int32, data []uint32) {
	d.record("Uniform", location, typ, count, append([]uint32(nil), data...))
}

func (d *Device) MemoryBarrier(bits metadata.BarrierBits) { d.record("MemoryBarrier", bits) }
func (d *Device) DispatchCompute(x, y, z uint32)          { d.record("DispatchCompute", x, y, z) }

func (d *Device) EnableVertexAttribArray(index uint32) {
	d.record("EnableVertexAttribArray", index)
}
func (d *Device) DisableVertexAttribArray(index uint32) {
	d.record("DisableVertexAttribArray", index)
}
func (d *Device) VertexAttribPointer(index uint32, size int32, typ metadata.ComponentType, normalized bool, stride int32, offset int) {
	d.record("VertexAttribPointer", index, size, typ, normalized, stride, offset)
}
func (d *Device) DrawArraysInstanced(mode metadata.PrimitiveMode, first, count, instances int32) {
	d.record("DrawArraysInstanced", mode, first, count, instances)
}
func (d *Device) DrawElementsInstanced(mode metadata.PrimitiveMode, count int32, offset int, instances int32) {
	d.record("DrawElementsInstanced", mode, count, offset, instances)
}

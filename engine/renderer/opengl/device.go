// Package opengl drives the renderer through an OpenGL 4.3 core context.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

// Compile time checks for every entry point the executor may discover.
var (
	_ renderer.Device         = (*Device)(nil)
	_ renderer.DebugGrouper   = (*Device)(nil)
	_ renderer.BufferMapper   = (*Device)(nil)
	_ renderer.VertexArrayer  = (*Device)(nil)
	_ renderer.Blitter        = (*Device)(nil)
	_ renderer.MemoryReporter = (*Device)(nil)
	_ renderer.ErrorReporter  = (*Device)(nil)
)

/**
 * @brief Init loads the GL entry points through getProcAddress, which is
 * usually glfw.GetProcAddress. The context must be current on the calling
 * goroutine, and that goroutine must stay locked to its OS thread.
 */
func Init(getProcAddress func(name string) unsafe.Pointer) error {
	if getProcAddress == nil {
		err := fmt.Errorf("func Init - getProcAddress is nil: %w", core.ErrNotInitialized)
		core.LogError(err.Error())
		return err
	}
	if err := gl.InitWithProcAddrFunc(getProcAddress); err != nil {
		err = fmt.Errorf("func Init - failed to load OpenGL: %w", err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

/**
 * @brief Device implements renderer.Device and every optional entry point
 * on the current GL context. It holds no state besides cached queries.
 */
type Device struct {
	info       metadata.DeviceInfo
	extensions []string
	anisotropy float32
	memoryInfo bool
}

// NewDevice queries the current context. Init must have succeeded.
func NewDevice() *Device {
	d := &Device{
		info: metadata.DeviceInfo{
			Vendor:   goString(gl.VENDOR),
			Renderer: goString(gl.RENDERER),
			Version:  goString(gl.VERSION),
			GLSL:     goString(gl.SHADING_LANGUAGE_VERSION),
		},
	}

	var n int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &n)
	d.extensions = make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		if p := gl.GetStringi(gl.EXTENSIONS, uint32(i)); p != nil {
			d.extensions = append(d.extensions, gl.GoStr(p))
		}
	}

	for _, e := range d.extensions {
		switch e {
		case "GL_EXT_texture_filter_anisotropic", "GL_ARB_texture_filter_anisotropic":
			gl.GetFloatv(maxTextureMaxAnisotropy, &d.anisotropy)
		case "GL_NVX_gpu_memory_info":
			d.memoryInfo = true
		}
	}

	core.LogInfo("OpenGL %s on %s (%s)", d.info.Version, d.info.Renderer, d.info.Vendor)
	return d
}

func (d *Device) Info() metadata.DeviceInfo { return d.info }

func (d *Device) Extensions() []string { return d.extensions }

func (d *Device) MaxAnisotropy() float32 { return d.anisotropy }

func (d *Device) ShaderCompilerPresent() bool {
	var present bool
	gl.GetBooleanv(gl.SHADER_COMPILER, &present)
	return present
}

func (d *Device) ReleaseShaderCompiler() { gl.ReleaseShaderCompiler() }

// fixed function state

func (d *Device) Enable(c metadata.Capability)  { gl.Enable(capability(c)) }
func (d *Device) Disable(c metadata.Capability) { gl.Disable(capability(c)) }
func (d *Device) DepthMask(write bool)          { gl.DepthMask(write) }
func (d *Device) DepthFunc(fn metadata.DepthFunc) {
	gl.DepthFunc(depthFunc(fn))
}
func (d *Device) ColorMask(r, g, b, a bool)    { gl.ColorMask(r, g, b, a) }
func (d *Device) FrontFace(w metadata.Winding) { gl.FrontFace(winding(w)) }
func (d *Device) BlendFunc(src, dst metadata.BlendFactor) {
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}
func (d *Device) Viewport(x, y, w, h int32)     { gl.Viewport(x, y, w, h) }
func (d *Device) Scissor(x, y, w, h int32)      { gl.Scissor(x, y, w, h) }
func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (d *Device) ClearDepth(depth float32)      { gl.ClearDepth(float64(depth)) }
func (d *Device) Clear(mask metadata.ClearMask) { gl.Clear(clearMask(mask)) }

// compute

func (d *Device) MemoryBarrier(bits metadata.BarrierBits) { gl.MemoryBarrier(barrierBits(bits)) }
func (d *Device) DispatchCompute(x, y, z uint32)          { gl.DispatchCompute(x, y, z) }

// vertex input and draws

func (d *Device) EnableVertexAttribArray(index uint32)  { gl.EnableVertexAttribArray(index) }
func (d *Device) DisableVertexAttribArray(index uint32) { gl.DisableVertexAttribArray(index) }

func (d *Device) VertexAttribPointer(index uint32, size int32, typ metadata.ComponentType, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, componentType(typ), normalized, stride, uintptr(offset))
}

func (d *Device) DrawArraysInstanced(mode metadata.PrimitiveMode, first, count, instances int32) {
	gl.DrawArraysInstanced(primitiveMode(mode), first, count, instances)
}

func (d *Device) DrawElementsInstanced(mode metadata.PrimitiveMode, count int32, offset int, instances int32) {
	gl.DrawElementsInstanced(primitiveMode(mode), count, indexType, gl.PtrOffset(offset), instances)
}

package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

// maxDrainedErrors bounds DeviceErrors when the context is lost and glGetError never clears.
const maxDrainedErrors = 32

func (d *Device) PushDebugGroup(id uint32, label string) {
	gl.PushDebugGroup(gl.DEBUG_SOURCE_APPLICATION, id, int32(len(label)), gl.Str(cString(label)))
}

func (d *Device) PopDebugGroup() { gl.PopDebugGroup() }

func (d *Device) MapBufferRange(target metadata.BufferTarget, offset, size int) []byte {
	p := gl.MapBufferRange(bufferTarget(target), offset, size, gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_RANGE_BIT)
	if p == nil {
		return nil
	}
	return unsafe.Slice((*byte)(p), size)
}

func (d *Device) UnmapBuffer(target metadata.BufferTarget) bool {
	return gl.UnmapBuffer(bufferTarget(target))
}

func (d *Device) CreateVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (d *Device) BindVertexArray(id uint32)   { gl.BindVertexArray(id) }
func (d *Device) DeleteVertexArray(id uint32) { gl.DeleteVertexArrays(1, &id) }

// BlitFramebuffer leaves dst bound as the framebuffer, as the executor expects.
func (d *Device) BlitFramebuffer(src, dst uint32, srcRect, dstRect [4]int32, mask metadata.ClearMask) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst)
	gl.BlitFramebuffer(
		srcRect[0], srcRect[1], srcRect[2], srcRect[3],
		dstRect[0], dstRect[1], dstRect[2], dstRect[3],
		clearMask(mask), gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, dst)
}

// TotalAvailableMemoryKB returns 0 without GL_NVX_gpu_memory_info.
func (d *Device) TotalAvailableMemoryKB() int32 {
	if !d.memoryInfo {
		return 0
	}
	var kb int32
	gl.GetIntegerv(gpuMemoryTotalAvailableNVX, &kb)
	return kb
}

func (d *Device) DeviceErrors() []uint32 {
	var errs []uint32
	for i := 0; i < maxDrainedErrors; i++ {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		errs = append(errs, code)
	}
	return errs
}

package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

// ptr returns the address of the first byte, nil for empty data.
func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

// buffers

func (d *Device) CreateBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (d *Device) DeleteBuffer(id uint32) { gl.DeleteBuffers(1, &id) }

func (d *Device) BindBuffer(target metadata.BufferTarget, id uint32) {
	gl.BindBuffer(bufferTarget(target), id)
}

func (d *Device) BufferData(target metadata.BufferTarget, size int, data []byte, u metadata.Usage) {
	gl.BufferData(bufferTarget(target), size, ptr(data), usage(u))
}

func (d *Device) BufferSubData(target metadata.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(bufferTarget(target), offset, len(data), gl.Ptr(data))
}

func (d *Device) BindBufferBase(target metadata.BufferTarget, index uint32, id uint32) {
	gl.BindBufferBase(bufferTarget(target), index, id)
}

// textures

func (d *Device) CreateTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (d *Device) DeleteTexture(id uint32) { gl.DeleteTextures(1, &id) }

func (d *Device) ActiveTexture(unit uint32) { gl.ActiveTexture(gl.TEXTURE0 + unit) }

func (d *Device) BindTexture(target metadata.TextureTarget, id uint32) {
	gl.BindTexture(textureTarget(target), id)
}

func (d *Device) TexParameteri(target metadata.TextureTarget, param metadata.TextureParam, value metadata.FilterMode) {
	gl.TexParameteri(textureTarget(target), textureParam(param), filterMode(value))
}

func (d *Device) TexParameterf(target metadata.TextureTarget, param metadata.TextureParam, value float32) {
	gl.TexParameterf(textureTarget(target), textureParam(param), value)
}

func (d *Device) TexImage2D(target metadata.TextureTarget, level int32, internal metadata.PixelFormat, w, h int32, format metadata.PixelFormat, typ metadata.PixelType, pixels []byte) {
	gl.TexImage2D(textureTarget(target), level, int32(pixelFormat(internal)), w, h, 0, pixelFormat(format), pixelType(typ), ptr(pixels))
}

func (d *Device) TexSubImage2D(target metadata.TextureTarget, level int32, x, y, w, h int32, format metadata.PixelFormat, typ metadata.PixelType, pixels []byte) {
	gl.TexSubImage2D(textureTarget(target), level, x, y, w, h, pixelFormat(format), pixelType(typ), ptr(pixels))
}

func (d *Device) GenerateMipmap(target metadata.TextureTarget) {
	gl.GenerateMipmap(textureTarget(target))
}

func (d *Device) UnpackAlignment(n int32) { gl.PixelStorei(gl.UNPACK_ALIGNMENT, n) }

// render targets

func (d *Device) CreateFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (d *Device) DeleteFramebuffer(id uint32) { gl.DeleteFramebuffers(1, &id) }

func (d *Device) BindFramebuffer(id uint32) { gl.BindFramebuffer(gl.FRAMEBUFFER, id) }

func (d *Device) FramebufferTexture(a metadata.Attachment, texture uint32, level int32) {
	gl.FramebufferTexture(gl.FRAMEBUFFER, attachment(a), texture, level)
}

func (d *Device) FramebufferTexture2D(a metadata.Attachment, target metadata.TextureTarget, texture uint32, level int32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment(a), textureTarget(target), texture, level)
}

func (d *Device) CreateRenderbuffer() uint32 {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return id
}

func (d *Device) DeleteRenderbuffer(id uint32) { gl.DeleteRenderbuffers(1, &id) }

func (d *Device) RenderbufferStorage(id uint32, format metadata.PixelFormat, w, h int32) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, id)
	gl.RenderbufferStorage(gl.RENDERBUFFER, pixelFormat(format), w, h)
}

func (d *Device) FramebufferRenderbuffer(a metadata.Attachment, renderbuffer uint32) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment(a), gl.RENDERBUFFER, renderbuffer)
}

func (d *Device) DrawBuffer(a metadata.Attachment) { gl.DrawBuffer(attachment(a)) }
func (d *Device) ReadBuffer(a metadata.Attachment) { gl.ReadBuffer(attachment(a)) }

func (d *Device) FramebufferComplete() bool {
	return gl.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
}

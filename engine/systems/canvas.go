package systems

import (
	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

func depthFormat(format metadata.Format) metadata.PixelFormat {
	if format == metadata.FormatRGBA8D24 {
		return metadata.PixelDepth24
	}
	return metadata.PixelDepth16
}

/**
 * @brief NewCanvas creates an offscreen render target. Colour is a
 * sampleable texture, depth a renderbuffer. When the device rejects the
 * attachments the canvas comes back with Allocated == 0 and every view
 * targeting it is skipped.
 */
func (ts *TextureSystem) NewCanvas(width, height uint16, format metadata.Format, flags metadata.TextureFlags) *metadata.Canvas {
	core.Assert(width > 0 && height > 0, "canvas dimensions must be > 0")
	core.Assert(format != metadata.FormatRG11B10F, "%s is only available on cube canvases", format)

	c := &metadata.Canvas{
		Name:   newName("canvas"),
		Width:  width,
		Height: height,
		Format: format,
	}
	c.FBO = ts.device.CreateFramebuffer()
	ts.device.BindFramebuffer(c.FBO)

	if format.HasColor() {
		mips := flags.Has(metadata.TextureGenMips)
		internal, pixel, typ := pixelParams(format)
		id := ts.device.CreateTexture()
		ts.device.BindTexture(metadata.TextureTarget2D, id)
		ts.applyFilters(metadata.TextureTarget2D, flags, mips)
		ts.device.TexImage2D(metadata.TextureTarget2D, 0, internal, int32(width), int32(height), pixel, typ, nil)
		if mips {
			ts.device.GenerateMipmap(metadata.TextureTarget2D)
		}
		ts.device.FramebufferTexture2D(metadata.AttachmentColor0, metadata.TextureTarget2D, id, 0)
		c.Images = append(c.Images, id)
		c.Mipmaps = mips
		c.Allocated++
	}

	if format.HasDepth() {
		c.Renderbuffer = ts.device.CreateRenderbuffer()
		ts.device.RenderbufferStorage(c.Renderbuffer, depthFormat(format), int32(width), int32(height))
		ts.device.FramebufferRenderbuffer(metadata.AttachmentDepth, c.Renderbuffer)
		c.Allocated++
	}

	if !ts.device.FramebufferComplete() {
		core.LogError("canvas %s (%dx%d %s) is incomplete, views targeting it will be skipped", c.Name, width, height, format)
		ts.device.BindFramebuffer(0)
		ts.release(c)
		return c
	}
	ts.device.BindFramebuffer(0)

	ts.RegisteredCanvases = append(ts.RegisteredCanvases, c)
	return c
}

/**
 * @brief NewCubeCanvas creates a cube render target of size x size per face
 * with a depth cube. Views pick the face to render through their layer.
 */
func (ts *TextureSystem) NewCubeCanvas(size uint16, format metadata.Format, flags metadata.TextureFlags) *metadata.Canvas {
	core.Assert(size > 0, "canvas dimensions must be > 0")
	core.Assert(format == metadata.FormatRGBA8 || format == metadata.FormatRG11B10F, "unsupported cube canvas format %s", format)

	c := &metadata.Canvas{
		Name:   newName("cubecanvas"),
		Width:  size,
		Height: size,
		Format: format,
		Cube:   true,
	}

	internal, typ := metadata.PixelRGBA8, metadata.PixelUByte
	if format == metadata.FormatRG11B10F {
		internal, typ = metadata.PixelR11G11B10F, metadata.PixelFloat
	}
	mips := flags.Has(metadata.TextureGenMips)

	color := ts.device.CreateTexture()
	ts.device.BindTexture(metadata.TextureTargetCubeMap, color)
	ts.applyFilters(metadata.TextureTargetCubeMap, flags, mips)
	for face := 0; face < cubeFaces; face++ {
		ts.device.TexImage2D(metadata.CubeFace(face), 0, internal, int32(size), int32(size), metadata.PixelBGRA, typ, nil)
	}
	if mips {
		ts.device.GenerateMipmap(metadata.TextureTargetCubeMap)
	}

	depth := ts.device.CreateTexture()
	ts.device.BindTexture(metadata.TextureTargetCubeMap, depth)
	ts.applyFilters(metadata.TextureTargetCubeMap, metadata.TextureFilterPoint, false)
	for face := 0; face < cubeFaces; face++ {
		ts.device.TexImage2D(metadata.CubeFace(face), 0, metadata.PixelDepth16, int32(size), int32(size), metadata.PixelDepth, metadata.PixelFloat, nil)
	}

	c.Images = []uint32{color, depth}
	c.Mipmaps = mips

	c.FBO = ts.device.CreateFramebuffer()
	ts.device.BindFramebuffer(c.FBO)
	ts.device.FramebufferTexture(metadata.AttachmentColor0, color, 0)
	ts.device.FramebufferTexture(metadata.AttachmentDepth, depth, 0)
	ts.device.DrawBuffer(metadata.AttachmentColor0)
	ts.device.ReadBuffer(metadata.AttachmentColor0)
	c.Allocated = 2

	if !ts.device.FramebufferComplete() {
		core.LogError("cube canvas %s (%d %s) is incomplete, views targeting it will be skipped", c.Name, size, format)
		ts.device.BindFramebuffer(0)
		ts.release(c)
		return c
	}
	ts.device.BindFramebuffer(0)

	ts.RegisteredCanvases = append(ts.RegisteredCanvases, c)
	return c
}

/**
 * @brief CanvasTexture exposes attachment index of c as a texture for
 * sampling. The texture is a view of the canvas and is not registered:
 * freeing the canvas invalidates it.
 */
func (ts *TextureSystem) CanvasTexture(c *metadata.Canvas, index int) *metadata.Texture {
	core.Assert(c != nil, "canvas must not be nil")
	core.Assert(index >= 0 && index < len(c.Images), "canvas %s has no attachment %d", c.Name, index)

	t := &metadata.Texture{
		Name:   c.Name,
		Width:  c.Width,
		Height: c.Height,
		Format: c.Format,
		Images: []uint32{c.Images[index]},
	}
	if c.Cube {
		t.Flags |= metadata.TextureCube
	}
	if c.Mipmaps {
		t.Flags |= metadata.TextureGenMips
	}
	return t
}

// FreeCanvas deletes c and its attachments.
func (ts *TextureSystem) FreeCanvas(c *metadata.Canvas) {
	core.Assert(c != nil, "canvas must not be nil")
	for i, rc := range ts.RegisteredCanvases {
		if rc == c {
			last := len(ts.RegisteredCanvases) - 1
			ts.RegisteredCanvases[i] = ts.RegisteredCanvases[last]
			ts.RegisteredCanvases[last] = nil
			ts.RegisteredCanvases = ts.RegisteredCanvases[:last]
			break
		}
	}
	ts.release(c)
}

// generateMips rebuilds the mip chain of c's colour attachment.
func (ts *TextureSystem) generateMips(c *metadata.Canvas) {
	if c == nil || !c.Mipmaps || len(c.Images) == 0 {
		return
	}
	target := metadata.TextureTarget2D
	if c.Cube {
		target = metadata.TextureTargetCubeMap
	}
	ts.device.BindTexture(target, c.Images[0])
	ts.device.GenerateMipmap(target)
}

func (ts *TextureSystem) release(c *metadata.Canvas) {
	for _, id := range c.Images {
		ts.device.DeleteTexture(id)
	}
	if c.Renderbuffer != 0 {
		ts.device.DeleteRenderbuffer(c.Renderbuffer)
	}
	if c.FBO != 0 {
		ts.device.DeleteFramebuffer(c.FBO)
	}
	c.Images = nil
	c.Renderbuffer = 0
	c.FBO = 0
	c.Allocated = 0
}

package systems

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

const cubeFaces = 6

type TextureSystem struct {
	// Array of registered textures. Deleting swaps the last entry into the hole.
	RegisteredTextures []*metadata.Texture
	// Array of registered canvases.
	RegisteredCanvases []*metadata.Canvas

	// 0 when anisotropic filtering is off
	anisotropy float32

	device renderer.Device
}

func NewTextureSystem(device renderer.Device) (*TextureSystem, error) {
	return &TextureSystem{
		RegisteredTextures: []*metadata.Texture{},
		RegisteredCanvases: []*metadata.Canvas{},
		device:             device,
	}, nil
}

func newName(kind string) string {
	return fmt.Sprintf("%s-%s", kind, uuid.NewString())
}

// pixelParams resolves the upload parameters of a sampleable colour format.
func pixelParams(format metadata.Format) (internal, pixel metadata.PixelFormat, typ metadata.PixelType) {
	switch format {
	case metadata.FormatRGB565, metadata.FormatRGB565D16:
		return metadata.PixelRGB, metadata.PixelRGB, metadata.PixelUShort565
	case metadata.FormatRGBA8, metadata.FormatRGBA8D16, metadata.FormatRGBA8D24:
		return metadata.PixelRGBA8, metadata.PixelRGBA, metadata.PixelUByte
	}
	core.Assert(false, "unsupported colour format %s", format)
	return metadata.PixelRGBA8, metadata.PixelRGBA, metadata.PixelUByte
}

func bytesPerPixel(format metadata.Format) int {
	if format == metadata.FormatRGB565 {
		return 2
	}
	return 4
}

// applyFilters sets the sampling parameters of the texture bound to target.
func (ts *TextureSystem) applyFilters(target metadata.TextureTarget, flags metadata.TextureFlags, mips bool) {
	if flags&metadata.TextureFilterPoint != 0 {
		minFilter := metadata.FilterNearest
		if mips {
			minFilter = metadata.FilterNearestMipmapNearest
		}
		ts.device.TexParameteri(target, metadata.TextureParamMinFilter, minFilter)
		ts.device.TexParameteri(target, metadata.TextureParamMagFilter, metadata.FilterNearest)
	} else {
		minFilter := metadata.FilterLinear
		if mips {
			minFilter = metadata.FilterLinearMipmapLinear
		}
		ts.device.TexParameteri(target, metadata.TextureParamMinFilter, minFilter)
		ts.device.TexParameteri(target, metadata.TextureParamMagFilter, metadata.FilterLinear)
	}
	ts.device.TexParameteri(target, metadata.TextureParamWrapS, metadata.WrapClampToEdge)
	ts.device.TexParameteri(target, metadata.TextureParamWrapT, metadata.WrapClampToEdge)
	if target == metadata.TextureTargetCubeMap {
		ts.device.TexParameteri(target, metadata.TextureParamWrapR, metadata.WrapClampToEdge)
	}
}

/**
 * @brief NewTexture creates a texture and uploads data, if any. Cube textures
 * take the six faces back to back. CPU writable textures get two images so
 * updates never touch the image a prior frame may still read.
 */
func (ts *TextureSystem) NewTexture(width, height uint16, data []byte, format metadata.Format, flags metadata.TextureFlags) *metadata.Texture {
	core.Assert(format == metadata.FormatRGB565 || format == metadata.FormatRGBA8, "unsupported texture format %s", format)
	core.Assert(width > 0 && height > 0, "texture dimensions must be > 0")

	t := &metadata.Texture{
		Name:   newName("texture"),
		Width:  width,
		Height: height,
		Format: format,
		Flags:  flags,
	}
	t.InternalFormat, t.PixelFormat, t.PixelType = pixelParams(format)

	images := 1
	if flags.Has(metadata.TextureCPUWritable) {
		images = 2
	}
	cube := flags.Has(metadata.TextureCube)
	faceSize := int(width) * int(height) * bytesPerPixel(format)
	if data != nil {
		faces := 1
		if cube {
			faces = cubeFaces
		}
		core.Assert(len(data) >= faceSize*faces, "texture %s: %d bytes supplied, %d required", t.Name, len(data), faceSize*faces)
	}

	mips := flags.Has(metadata.TextureGenMips)
	target := t.Target()
	for i := 0; i < images; i++ {
		id := ts.device.CreateTexture()
		t.Images = append(t.Images, id)
		ts.device.BindTexture(target, id)
		ts.applyFilters(target, flags, mips)
		if ts.anisotropy > 0 {
			ts.device.TexParameterf(target, metadata.TextureParamMaxAnisotropy, ts.anisotropy)
		}
		ts.device.UnpackAlignment(1)
		if cube {
			for face := 0; face < cubeFaces; face++ {
				var pixels []byte
				if data != nil {
					pixels = data[face*faceSize : (face+1)*faceSize]
				}
				ts.device.TexImage2D(metadata.CubeFace(face), 0, t.InternalFormat, int32(width), int32(height), t.PixelFormat, t.PixelType, pixels)
			}
		} else {
			var pixels []byte
			if data != nil {
				pixels = data[:faceSize]
			}
			ts.device.TexImage2D(target, 0, t.InternalFormat, int32(width), int32(height), t.PixelFormat, t.PixelType, pixels)
		}
		if mips && data != nil {
			ts.device.GenerateMipmap(target)
		}
	}

	ts.RegisteredTextures = append(ts.RegisteredTextures, t)
	return t
}

/**
 * @brief Update stages pixels for the next frame. The slice is kept, not
 * copied, and must stay untouched until the frame has run.
 */
func (ts *TextureSystem) Update(t *metadata.Texture, pixels []byte) {
	core.Assert(t != nil, "texture must not be nil")
	core.Assert(t.Flags.Has(metadata.TextureCPUWritable), "texture %s is not CPU writable", t.Name)
	core.Assert(!t.Flags.Has(metadata.TextureCube), "cube texture %s cannot be updated", t.Name)
	core.Assert(len(pixels) >= int(t.Width)*int(t.Height)*bytesPerPixel(t.Format), "texture %s: update too small", t.Name)
	t.Pending = pixels
}

// Free deletes t. The last registered texture takes its place.
func (ts *TextureSystem) Free(t *metadata.Texture) {
	core.Assert(t != nil, "texture must not be nil")
	for i, rt := range ts.RegisteredTextures {
		if rt == t {
			last := len(ts.RegisteredTextures) - 1
			ts.RegisteredTextures[i] = ts.RegisteredTextures[last]
			ts.RegisteredTextures[last] = nil
			ts.RegisteredTextures = ts.RegisteredTextures[:last]
			break
		}
	}
	for _, id := range t.Images {
		ts.device.DeleteTexture(id)
	}
	t.Images = nil
	t.Pending = nil
}

// uploadPending moves every staged update to the image after the active one.
func (ts *TextureSystem) uploadPending() {
	for _, t := range ts.RegisteredTextures {
		if t.Pending == nil {
			continue
		}
		t.Active = (t.Active + 1) % len(t.Images)
		target := t.Target()
		ts.device.BindTexture(target, t.Image())
		ts.device.TexSubImage2D(target, 0, 0, 0, int32(t.Width), int32(t.Height), t.PixelFormat, t.PixelType, t.Pending)
		t.Pending = nil
	}
}

// setAnisotropy applies value to every texture. 0 turns filtering back to 1x.
func (ts *TextureSystem) setAnisotropy(value float32) {
	if value == 0 && ts.anisotropy == 0 {
		return
	}
	ts.anisotropy = value
	if value == 0 {
		value = 1
	}
	for _, t := range ts.RegisteredTextures {
		target := t.Target()
		for _, id := range t.Images {
			ts.device.BindTexture(target, id)
			ts.device.TexParameterf(target, metadata.TextureParamMaxAnisotropy, value)
		}
	}
}

// Anisotropy returns the anisotropy applied to textures, 0 when off.
func (ts *TextureSystem) Anisotropy() float32 {
	return ts.anisotropy
}

func (ts *TextureSystem) Shutdown() error {
	for _, t := range ts.RegisteredTextures {
		for _, id := range t.Images {
			ts.device.DeleteTexture(id)
		}
		t.Images = nil
		t.Pending = nil
	}
	ts.RegisteredTextures = ts.RegisteredTextures[:0]
	for _, c := range ts.RegisteredCanvases {
		ts.release(c)
	}
	ts.RegisteredCanvases = ts.RegisteredCanvases[:0]
	return nil
}

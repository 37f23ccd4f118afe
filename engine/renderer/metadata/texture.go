package metadata

/** @brief Creation flags for textures and canvases. */
type TextureFlags uint16

const (
	TextureFilterPoint  TextureFlags = 1 << 0
	TextureFilterLinear TextureFlags = 1 << 1
	TextureGenMips      TextureFlags = 1 << 2
	TextureCube         TextureFlags = 1 << 3
	/** @brief Double buffered; updates are staged and applied by the next frame. */
	TextureCPUWritable TextureFlags = 1 << 4
)

// Has reports whether every bit of mask is set.
func (f TextureFlags) Has(mask TextureFlags) bool {
	return f&mask == mask
}

/**
 * @brief Represents a texture. CPU writable textures own two device images
 * and round-robin between them whenever a staged update is consumed.
 */
type Texture struct {
	/** @brief Debug name, unique per texture. */
	Name   string
	Width  uint16
	Height uint16
	Format Format
	Flags  TextureFlags
	/** @brief The device images. Never empty for a live texture. */
	Images []uint32
	/** @brief Index into Images of the image draws should sample. */
	Active int

	/** @brief Upload parameters resolved from Format. */
	PixelFormat    PixelFormat
	InternalFormat PixelFormat
	PixelType      PixelType

	/** @brief Staged pixels waiting for the next frame. */
	Pending []byte
}

// Image returns the image draws should sample.
func (t *Texture) Image() uint32 {
	if len(t.Images) == 0 {
		return 0
	}
	return t.Images[t.Active]
}

// Target returns the device target the texture binds to.
func (t *Texture) Target() TextureTarget {
	if t.Flags.Has(TextureCube) {
		return TextureTargetCubeMap
	}
	return TextureTarget2D
}

/**
 * @brief A render target. Allocated counts the successfully attached images;
 * zero means the canvas is unusable and views targeting it are skipped.
 */
type Canvas struct {
	Name   string
	Width  uint16
	Height uint16
	Format Format
	/** @brief Colour image first, then depth, when present. */
	Images       []uint32
	Renderbuffer uint32
	FBO          uint32
	Allocated    int
	Mipmaps      bool
	Cube         bool
}

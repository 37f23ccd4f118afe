package metadata

import "strings"

/** @brief The number of views available to every frame. Views execute in index order. */
const MaxViews int = 256

/** @brief The number of texture and storage buffer slots on a single command. */
const MaxSlots int = 8

/** @brief Flags passed to Reset. */
type ResetFlags uint32

const (
	ResetNone ResetFlags = 0
	/** @brief Apply the device's maximum anisotropy to every texture, if supported. */
	ResetMaxAnisotropy ResetFlags = 1 << 0
)

/** @brief Buffer usage hint. */
type Usage int

const (
	UsageStatic Usage = iota
	UsageDynamic
	UsageStream
)

func (u Usage) String() string {
	switch u {
	case UsageStatic:
		return "static"
	case UsageDynamic:
		return "dynamic"
	case UsageStream:
		return "stream"
	}
	return "unknown"
}

/** @brief Pixel formats for textures and canvases. */
type Format int

const (
	FormatRGB565 Format = iota
	FormatRGBA8
	FormatRGB565D16
	FormatRGBA8D16
	FormatRGBA8D24
	FormatD16
	/** @brief HDR colour, only meaningful on cube canvases. */
	FormatRG11B10F
)

func (f Format) String() string {
	switch f {
	case FormatRGB565:
		return "RGB565"
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGB565D16:
		return "RGB565_D16"
	case FormatRGBA8D16:
		return "RGBA8_D16"
	case FormatRGBA8D24:
		return "RGBA8_D24"
	case FormatD16:
		return "D16"
	case FormatRG11B10F:
		return "RG11B10F"
	}
	return "unknown"
}

// HasColor reports whether the format carries a colour attachment.
func (f Format) HasColor() bool {
	return f != FormatD16
}

// HasDepth reports whether the format carries a depth attachment.
func (f Format) HasDepth() bool {
	switch f {
	case FormatD16, FormatRGB565D16, FormatRGBA8D16, FormatRGBA8D24:
		return true
	}
	return false
}

/**
 * @brief The capability set of the device, derived once at Reset from the
 * extension list and the context version.
 */
type Caps struct {
	Multisample          bool
	Compute              bool
	FloatCanvas          bool
	DebugMarker          bool
	DebugOutput          bool
	MemoryInfo           bool
	Instancing           bool
	SeamlessCubemap      bool
	AnisotropicFiltering bool
}

/**
 * @brief DetectCaps derives the capability set.
 * @param extensions The extension names reported by the device.
 * @param version The context version as major*10+minor, i.e. 43 for GL 4.3.
 * @param gles True if the context is OpenGL ES.
 */
func DetectCaps(extensions []string, version int, gles bool) Caps {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[strings.TrimSpace(e)] = struct{}{}
	}
	has := func(name string) bool {
		_, ok := exts[name]
		return ok
	}

	gl30 := !gles && version >= 30
	gl32 := !gles && version >= 32
	gl33 := !gles && version >= 33
	gl43 := !gles && version >= 43
	gl46 := !gles && version >= 46
	gles30 := gles && version >= 30
	gles31 := gles && version >= 31

	return Caps{
		Multisample:          has("GL_ARB_multisample") || gl30,
		Compute:              has("GL_ARB_compute_shader") || gles31 || gl43,
		FloatCanvas:          has("GL_ARB_texture_float") || gles30 || gl30,
		DebugMarker:          has("GL_EXT_debug_marker") || has("GL_KHR_debug"),
		DebugOutput:          has("GL_ARB_debug_output") || gl43,
		MemoryInfo:           has("GL_NVX_gpu_memory_info"),
		Instancing:           has("GL_ARB_instanced_arrays") || gl33 || gles30,
		SeamlessCubemap:      has("GL_ARB_seamless_cube_map") || gl32,
		AnisotropicFiltering: has("GL_EXT_texture_filter_anisotropic") || gl46,
	}
}

// SupportedContext reports whether the context version can drive the renderer:
// any context from 3.0 on, desktop GL 2.1 or GLES 2.0.
func SupportedContext(version int, gles bool) bool {
	return version >= 30 || (gles && version == 20) || (!gles && version == 21)
}

/** @brief Per-frame statistics returned by Frame. */
type Stats struct {
	Draws      uint32
	Blits      uint32
	Dispatches uint32
}

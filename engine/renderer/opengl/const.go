package opengl

import (
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

// Tokens from extensions the 4.3 core profile bindings do not carry.
const (
	/** @brief GL_TEXTURE_MAX_ANISOTROPY_EXT */
	textureMaxAnisotropy uint32 = 0x84FE
	/** @brief GL_MAX_TEXTURE_MAX_ANISOTROPY_EXT */
	maxTextureMaxAnisotropy uint32 = 0x84FF
	/** @brief GL_GPU_MEMORY_INFO_TOTAL_AVAILABLE_MEMORY_NVX */
	gpuMemoryTotalAvailableNVX uint32 = 0x9048
)

/**
 * @brief Indices are 16 bit.
 * @todo TODO: 32 bit indices once Buffer records an index type.
 */
const indexType uint32 = gl.UNSIGNED_SHORT

func capability(c metadata.Capability) uint32 {
	switch c {
	case metadata.CapDepthTest:
		return gl.DEPTH_TEST
	case metadata.CapBlend:
		return gl.BLEND
	case metadata.CapCullFace:
		return gl.CULL_FACE
	case metadata.CapScissorTest:
		return gl.SCISSOR_TEST
	case metadata.CapMultisample:
		return gl.MULTISAMPLE
	case metadata.CapDebugOutput:
		return gl.DEBUG_OUTPUT
	case metadata.CapSeamlessCubemap:
		return gl.TEXTURE_CUBE_MAP_SEAMLESS
	}
	return 0
}

func depthFunc(f metadata.DepthFunc) uint32 {
	switch f {
	case metadata.DepthFuncGEqual:
		return gl.GEQUAL
	case metadata.DepthFuncEqual:
		return gl.EQUAL
	}
	return gl.LEQUAL
}

func winding(w metadata.Winding) uint32 {
	if w == metadata.WindingCCW {
		return gl.CCW
	}
	return gl.CW
}

func blendFactor(f metadata.BlendFactor) uint32 {
	if f == metadata.BlendOneMinusSrcAlpha {
		return gl.ONE_MINUS_SRC_ALPHA
	}
	return gl.ONE
}

func clearMask(m metadata.ClearMask) uint32 {
	var bits uint32
	if m&metadata.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if m&metadata.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	return bits
}

func bufferTarget(t metadata.BufferTarget) uint32 {
	switch t {
	case metadata.BufferTargetElementArray:
		return gl.ELEMENT_ARRAY_BUFFER
	case metadata.BufferTargetShaderStorage:
		return gl.SHADER_STORAGE_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func usage(u metadata.Usage) uint32 {
	switch u {
	case metadata.UsageDynamic:
		return gl.DYNAMIC_DRAW
	case metadata.UsageStream:
		return gl.STREAM_DRAW
	}
	return gl.STATIC_DRAW
}

func textureTarget(t metadata.TextureTarget) uint32 {
	switch {
	case t == metadata.TextureTarget2D:
		return gl.TEXTURE_2D
	case t == metadata.TextureTargetCubeMap:
		return gl.TEXTURE_CUBE_MAP
	case t >= metadata.TextureTargetCubePositiveX:
		return gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(t-metadata.TextureTargetCubePositiveX)
	}
	return 0
}

func textureParam(p metadata.TextureParam) uint32 {
	switch p {
	case metadata.TextureParamMagFilter:
		return gl.TEXTURE_MAG_FILTER
	case metadata.TextureParamMinFilter:
		return gl.TEXTURE_MIN_FILTER
	case metadata.TextureParamWrapS:
		return gl.TEXTURE_WRAP_S
	case metadata.TextureParamWrapT:
		return gl.TEXTURE_WRAP_T
	case metadata.TextureParamWrapR:
		return gl.TEXTURE_WRAP_R
	case metadata.TextureParamMaxAnisotropy:
		return textureMaxAnisotropy
	}
	return 0
}

func filterMode(m metadata.FilterMode) int32 {
	switch m {
	case metadata.FilterNearest:
		return gl.NEAREST
	case metadata.FilterLinear:
		return gl.LINEAR
	case metadata.FilterNearestMipmapNearest:
		return gl.NEAREST_MIPMAP_NEAREST
	case metadata.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	case metadata.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	}
	return 0
}

func pixelFormat(f metadata.PixelFormat) uint32 {
	switch f {
	case metadata.PixelRGB:
		return gl.RGB
	case metadata.PixelRGBA:
		return gl.RGBA
	case metadata.PixelBGRA:
		return gl.BGRA
	case metadata.PixelRGBA8:
		return gl.RGBA8
	case metadata.PixelR11G11B10F:
		return gl.R11F_G11F_B10F
	case metadata.PixelDepth:
		return gl.DEPTH_COMPONENT
	case metadata.PixelDepth16:
		return gl.DEPTH_COMPONENT16
	case metadata.PixelDepth24:
		return gl.DEPTH_COMPONENT24
	}
	return 0
}

func pixelType(t metadata.PixelType) uint32 {
	switch t {
	case metadata.PixelUShort565:
		return gl.UNSIGNED_SHORT_5_6_5
	case metadata.PixelFloat:
		return gl.FLOAT
	}
	return gl.UNSIGNED_BYTE
}

func attachment(a metadata.Attachment) uint32 {
	if a == metadata.AttachmentDepth {
		return gl.DEPTH_ATTACHMENT
	}
	return gl.COLOR_ATTACHMENT0
}

func shaderStage(s metadata.ShaderStage) uint32 {
	switch s {
	case metadata.ShaderStageFragment:
		return gl.FRAGMENT_SHADER
	case metadata.ShaderStageCompute:
		return gl.COMPUTE_SHADER
	}
	return gl.VERTEX_SHADER
}

func barrierBits(b metadata.BarrierBits) uint32 {
	var bits uint32
	if b&metadata.BarrierShaderStorage != 0 {
		bits |= gl.SHADER_STORAGE_BARRIER_BIT
	}
	if b&metadata.BarrierVertexAttribArray != 0 {
		bits |= gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT
	}
	if b&metadata.BarrierElementArray != 0 {
		bits |= gl.ELEMENT_ARRAY_BARRIER_BIT
	}
	return bits
}

func componentType(c metadata.ComponentType) uint32 {
	switch c {
	case metadata.ComponentByte:
		return gl.BYTE
	case metadata.ComponentUShort:
		return gl.UNSIGNED_SHORT
	case metadata.ComponentShort:
		return gl.SHORT
	case metadata.ComponentFloat:
		return gl.FLOAT
	}
	return gl.UNSIGNED_BYTE
}

func primitiveMode(m metadata.PrimitiveMode) uint32 {
	switch m {
	case metadata.PrimitivePoints:
		return gl.POINTS
	case metadata.PrimitiveLines:
		return gl.LINES
	case metadata.PrimitiveLineStrip:
		return gl.LINE_STRIP
	case metadata.PrimitiveLineLoop:
		return gl.LINE_LOOP
	case metadata.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP
	case metadata.PrimitiveTriangleFan:
		return gl.TRIANGLE_FAN
	}
	return gl.TRIANGLES
}

package metadata

// Enumerations shared by the device binding table and its implementations.

type Capability int

const (
	CapDepthTest Capability = iota
	CapBlend
	CapCullFace
	CapScissorTest
	CapMultisample
	CapDebugOutput
	CapSeamlessCubemap
)

type DepthFunc int

const (
	DepthFuncLEqual DepthFunc = iota
	DepthFuncGEqual
	DepthFuncEqual
)

type Winding int

const (
	WindingCW Winding = iota
	WindingCCW
)

type BlendFactor int

const (
	BlendOne BlendFactor = iota
	BlendOneMinusSrcAlpha
)

type ClearMask uint32

const (
	ClearColor ClearMask = 1 << 0
	ClearDepth ClearMask = 1 << 1
)

type BufferTarget int

const (
	BufferTargetArray BufferTarget = iota
	BufferTargetElementArray
	BufferTargetShaderStorage
)

type TextureTarget int

const (
	TextureTarget2D TextureTarget = iota
	TextureTargetCubeMap
	/** @brief Faces follow in +X, -X, +Y, -Y, +Z, -Z order. */
	TextureTargetCubePositiveX
)

// CubeFace returns the target of the i-th cube face.
func CubeFace(i int) TextureTarget {
	return TextureTargetCubePositiveX + TextureTarget(i)
}

type TextureParam int

const (
	TextureParamMagFilter TextureParam = iota
	TextureParamMinFilter
	TextureParamWrapS
	TextureParamWrapT
	TextureParamWrapR
	TextureParamMaxAnisotropy
)

type FilterMode int32

const (
	FilterNearest FilterMode = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapLinear
	WrapClampToEdge
)

type PixelFormat int

const (
	PixelRGB PixelFormat = iota
	PixelRGBA
	PixelBGRA
	PixelRGBA8
	PixelR11G11B10F
	PixelDepth
	PixelDepth16
	PixelDepth24
)

type PixelType int

const (
	PixelUByte PixelType = iota
	PixelUShort565
	PixelFloat
)

type Attachment int

const (
	AttachmentColor0 Attachment = iota
	AttachmentDepth
)

type BarrierBits uint32

const (
	BarrierShaderStorage     BarrierBits = 1 << 0
	BarrierVertexAttribArray BarrierBits = 1 << 1
	BarrierElementArray      BarrierBits = 1 << 2
)

type PrimitiveMode int

const (
	PrimitiveTriangles PrimitiveMode = iota
	PrimitivePoints
	PrimitiveLines
	PrimitiveLineStrip
	PrimitiveLineLoop
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
)

// PrimitiveFor maps the draw bits of a state to a primitive mode. Triangles
// when unspecified.
func PrimitiveFor(s State) PrimitiveMode {
	switch s & StateDrawMask {
	case StateDrawPoints:
		return PrimitivePoints
	case StateDrawLines:
		return PrimitiveLines
	case StateDrawLineStrip:
		return PrimitiveLineStrip
	case StateDrawLineLoop:
		return PrimitiveLineLoop
	case StateDrawTriStrip:
		return PrimitiveTriangleStrip
	case StateDrawTriFan:
		return PrimitiveTriangleFan
	}
	return PrimitiveTriangles
}

/** @brief Strings reported by the device, used when dumping capabilities. */
type DeviceInfo struct {
	Vendor   string
	Renderer string
	Version  string
	GLSL     string
}

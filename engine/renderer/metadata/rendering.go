package metadata

/** @brief Render state bits carried by every draw. Only changed groups reach the device. */
type State uint64

const (
	StateRGBWrite   State = 1 << 0
	StateAlphaWrite State = 1 << 1
	StateDepthWrite State = 1 << 2
	StateCullCW     State = 1 << 3
	StateCullCCW    State = 1 << 4
	StateBlendAlpha State = 1 << 5
	StateMSAA       State = 1 << 6

	StateDrawPoints    State = 1 << 7
	StateDrawLines     State = 1 << 8
	StateDrawLineStrip State = 1 << 9
	StateDrawLineLoop  State = 1 << 10
	StateDrawTriStrip  State = 1 << 11
	StateDrawTriFan    State = 1 << 12

	StateCullMask  = StateCullCW | StateCullCCW
	StateBlendMask = StateBlendAlpha
	StateDrawMask  = StateDrawPoints | StateDrawLines | StateDrawLineStrip |
		StateDrawLineLoop | StateDrawTriStrip | StateDrawTriFan

	StateDefault = StateRGBWrite | StateAlphaWrite | StateDepthWrite | StateCullCCW | StateMSAA
)

// Has reports whether every bit of mask is set.
func (s State) Has(mask State) bool {
	return s&mask == mask
}

/** @brief Rectangle in top-left origin pixel coordinates. */
type Rect struct {
	X uint16
	Y uint16
	W uint16
	H uint16
}

/**
 * @brief Called during execution right before the draw's vertex setup.
 * Device state the executor tracks (scissor, program, render state) must be
 * left as the callback found it.
 */
type DrawCallback func()

/** @brief A texture bound to a sampler slot on a draw. */
type TextureBinding struct {
	Texture *Texture
	/** @brief The device image selected when the draw was submitted. */
	Image uint32
	Cube  bool
}

/**
 * @brief A value snapshot of a draw or compute command. Once queued it is
 * never mutated. Buffers stay pointers so dirty flags outlive the frame.
 */
type Draw struct {
	Callback DrawCallback
	Flags    State
	Program  Program

	Uniforms []Uniform

	Textures    [MaxSlots]TextureBinding
	Buffers     [MaxSlots]*Buffer
	BufferWrite [MaxSlots]bool

	VBO    *Buffer
	UseVBO bool
	IBO    *Buffer
	UseIBO bool

	/** @brief Set when the vertices come from the frame's transient buffer. */
	UseTVB    bool
	TVBFormat VertexFormat

	Scissor    Rect
	UseScissor bool

	/** @brief Byte offset into the vertex (transient) or index buffer. */
	Offset  uint32
	Indices uint32
	Depth   uint32

	ThreadsX uint32
	ThreadsY uint32
	ThreadsZ uint32
}

/** @brief A pending copy of a view's target into another view's target. */
type BlitOp struct {
	Source *Canvas
	Rect   Rect
}

package metadata

/** @brief A linked device program. 0 is the failure sentinel. */
type Program uint32

/** @brief The shader stages the device can compile. */
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
	ShaderStageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	case ShaderStageCompute:
		return "compute"
	}
	return "unknown"
}

/** @brief The value type of a uniform. */
type UniformType int

const (
	UniformInt UniformType = iota
	UniformFloat
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat2
	UniformMat3
	UniformMat4
)

// Words returns the number of 32-bit words one element of the type occupies.
func (t UniformType) Words() int {
	switch t {
	case UniformInt, UniformFloat:
		return 1
	case UniformVec2:
		return 2
	case UniformVec3:
		return 3
	case UniformVec4, UniformMat2:
		return 4
	case UniformMat3:
		return 9
	case UniformMat4:
		return 16
	}
	return 0
}

func (t UniformType) String() string {
	switch t {
	case UniformInt:
		return "int"
	case UniformFloat:
		return "float"
	case UniformVec2:
		return "vec2"
	case UniformVec3:
		return "vec3"
	case UniformVec4:
		return "vec4"
	case UniformMat2:
		return "mat2"
	case UniformMat3:
		return "mat3"
	case UniformMat4:
		return "mat4"
	}
	return "unknown"
}

/**
 * @brief A named shader parameter. Data is a view into the frame's uniform
 * arena and is only valid until the end of the frame it was set in.
 */
type Uniform struct {
	Name  string
	Type  UniformType
	Count int
	/** @brief Element count of the most recent set. */
	LastCount int
	/** @brief Size of Count elements, in 32-bit words. */
	Size int
	Data []uint32
}

// NewUniform describes a uniform of count elements.
func NewUniform(name string, typ UniformType, count int) *Uniform {
	return &Uniform{
		Name:      name,
		Type:      typ,
		Count:     count,
		LastCount: count,
		Size:      count * typ.Words(),
	}
}

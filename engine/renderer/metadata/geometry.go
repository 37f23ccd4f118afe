package metadata

import "github.com/spaghettifunk/tinyfx/engine/core"

/** @brief Component type of a vertex attribute. */
type ComponentType int

const (
	ComponentUByte ComponentType = iota
	ComponentByte
	ComponentUShort
	ComponentShort
	ComponentFloat
	/** @brief Padding. Occupies one byte per element and is never enabled. */
	ComponentSkip
)

// Bytes returns the size of a single element of the component type.
func (c ComponentType) Bytes() uint32 {
	switch c {
	case ComponentSkip, ComponentUByte, ComponentByte:
		return 1
	case ComponentUShort, ComponentShort:
		return 2
	case ComponentFloat:
		return 4
	}
	return 0
}

/** @brief One attribute slot of a vertex format. */
type VertexComponent struct {
	Type       ComponentType
	Size       uint32
	Normalized bool
	Offset     uint32
}

/**
 * @brief Vertex layout with up to 8 slots. Offsets are laid out contiguously
 * in slot order once End has been called.
 */
type VertexFormat struct {
	Components [MaxSlots]VertexComponent
	Count      int
	Mask       uint8
	Stride     uint32
}

// Add describes slot. Slots past the highest added one are left as zeroed padding.
func (f *VertexFormat) Add(slot uint8, count uint32, normalized bool, typ ComponentType) {
	core.Assert(int(slot) < MaxSlots, "vertex slot %d out of range", slot)
	if int(slot) >= f.Count {
		f.Count = int(slot) + 1
	}
	f.Components[slot] = VertexComponent{
		Type:       typ,
		Size:       count,
		Normalized: normalized,
	}
	f.Mask |= 1 << slot
}

// End finalizes the layout: offsets and stride.
func (f *VertexFormat) End() {
	var stride uint32
	for i := 0; i < f.Count; i++ {
		c := &f.Components[i]
		c.Offset = stride
		stride += c.Size * c.Type.Bytes()
	}
	f.Stride = stride
}

// Offset returns the byte offset of slot inside a vertex.
func (f *VertexFormat) Offset(slot uint8) uint32 {
	return f.Components[slot].Offset
}

// Finalized reports whether End has produced a usable layout.
func (f *VertexFormat) Finalized() bool {
	return f.Stride > 0
}

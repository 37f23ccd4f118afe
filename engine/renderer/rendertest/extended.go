package rendertest

import "github.com/spaghettifunk/tinyfx/engine/renderer/metadata"

// ExtendedDevice also implements every optional entry point.
type ExtendedDevice struct {
	*Device

	// Mapped receives writes made through MapBufferRange.
	Mapped []byte
	// Pending is returned, then cleared, by DeviceErrors.
	Pending []uint32
	VRAMKB  int32
}

func NewExtendedDevice() *ExtendedDevice {
	return &ExtendedDevice{Device: NewDevice(), VRAMKB: 4 << 20}
}

func (d *ExtendedDevice) PushDebugGroup(id uint32, label string) {
	d.record("PushDebugGroup", id, label)
}

func (d *ExtendedDevice) PopDebugGroup() { d.record("PopDebugGroup") }

func (d *ExtendedDevice) MapBufferRange(target metadata.BufferTarget, offset, size int) []byte {
	d.record("MapBufferRange", target, offset, size)
	d.Mapped = make([]byte, size)
	return d.Mapped
}

func (d *ExtendedDevice) UnmapBuffer(target metadata.BufferTarget) bool {
	d.record("UnmapBuffer", target)
	return true
}

func (d *ExtendedDevice) CreateVertexArray() uint32 {
	id := d.gen()
	d.record("CreateVertexArray", id)
	return id
}

func (d *ExtendedDevice) BindVertexArray(id uint32)   { d.record("BindVertexArray", id) }
func (d *ExtendedDevice) DeleteVertexArray(id uint32) { d.record("DeleteVertexArray", id) }

func (d *ExtendedDevice) BlitFramebuffer(src, dst uint32, srcRect, dstRect [4]int32, mask metadata.ClearMask) {
	d.record("BlitFramebuffer", src, dst, srcRect, dstRect, mask)
}

func (d *ExtendedDevice) TotalAvailableMemoryKB() int32 { return d.VRAMKB }

func (d *ExtendedDevice) DeviceErrors() []uint32 {
	errs := d.Pending
	d.Pending = nil
	return errs
}

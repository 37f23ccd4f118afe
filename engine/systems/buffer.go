package systems

import (
	"fmt"

	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

type BufferSystemConfig struct {
	/** @brief Capacity in bytes of the per-frame transient vertex region. */
	TransientSize uint32
}

/**
 * @brief The buffer system creates device buffers and owns the frame's
 * transient vertex region. Transient allocations only move a cursor forward;
 * the region is uploaded once per frame and rewound afterwards.
 */
type BufferSystem struct {
	Config *BufferSystemConfig

	// live buffers, unordered
	buffers []*metadata.Buffer

	transient       []byte
	transientOffset uint32
	// device side of the transient region
	transientBuf *metadata.Buffer

	device renderer.Device
}

func NewBufferSystem(config *BufferSystemConfig, device renderer.Device) (*BufferSystem, error) {
	if config.TransientSize == 0 {
		err := fmt.Errorf("func NewBufferSystem - config.TransientSize must be > 0: %w", core.ErrConfigInvalid)
		core.LogError(err.Error())
		return nil, err
	}
	return &BufferSystem{
		Config:  config,
		buffers: []*metadata.Buffer{},
		device:  device,
	}, nil
}

// allocate creates the transient region and its device buffer on first use.
func (bs *BufferSystem) allocate() {
	if bs.transient != nil {
		return
	}
	bs.transient = make([]byte, bs.Config.TransientSize)
	bs.transientOffset = 0
	bs.transientBuf = &metadata.Buffer{
		ID:    bs.device.CreateBuffer(),
		Usage: metadata.UsageDynamic,
		Size:  len(bs.transient),
	}
	bs.device.BindBuffer(metadata.BufferTargetArray, bs.transientBuf.ID)
	bs.device.BufferData(metadata.BufferTargetArray, len(bs.transient), nil, metadata.UsageDynamic)
}

/**
 * @brief NewBuffer creates a device buffer of size bytes, filled from data
 * when data is not nil. format, when given, must be finalized; the buffer
 * can then serve as a vertex source.
 */
func (bs *BufferSystem) NewBuffer(data []byte, size int, format *metadata.VertexFormat, usage metadata.Usage) *metadata.Buffer {
	core.Assert(size > 0, "buffer size must be > 0")
	core.Assert(data == nil || len(data) >= size, "buffer data holds %d bytes, %d required", len(data), size)

	buf := &metadata.Buffer{
		ID:    bs.device.CreateBuffer(),
		Usage: usage,
		Size:  size,
	}
	if format != nil {
		core.Assert(format.Finalized(), "vertex format must be finalized before use")
		buf.Format = *format
		buf.HasFormat = true
	}
	if data != nil {
		data = data[:size]
	}
	bs.device.BindBuffer(metadata.BufferTargetArray, buf.ID)
	bs.device.BufferData(metadata.BufferTargetArray, size, data, usage)

	bs.buffers = append(bs.buffers, buf)
	return buf
}

// Update overwrites the bytes of buf starting at offset.
func (bs *BufferSystem) Update(buf *metadata.Buffer, data []byte, offset int) {
	core.Assert(buf != nil && buf.ID != 0, "buffer must be a live buffer")
	core.Assert(buf.Usage != metadata.UsageStatic, "static buffers cannot be updated")
	core.Assert(offset >= 0 && offset+len(data) <= buf.Size, "update of %d bytes at %d overflows buffer of %d bytes", len(data), offset, buf.Size)
	bs.device.BindBuffer(metadata.BufferTargetArray, buf.ID)
	bs.device.BufferSubData(metadata.BufferTargetArray, offset, data)
}

// Free deletes buf. Registry order is not preserved.
func (bs *BufferSystem) Free(buf *metadata.Buffer) {
	core.Assert(buf != nil, "buffer must not be nil")
	bs.device.DeleteBuffer(buf.ID)
	for i, b := range bs.buffers {
		if b == buf {
			last := len(bs.buffers) - 1
			bs.buffers[i] = bs.buffers[last]
			bs.buffers[last] = nil
			bs.buffers = bs.buffers[:last]
			break
		}
	}
	buf.ID = 0
}

// Count returns the number of live buffers.
func (bs *BufferSystem) Count() int {
	return len(bs.buffers)
}

/**
 * @brief NewTransient carves num vertices of format out of the frame's
 * transient region. The returned Data aliases the region and must be
 * filled before the next Frame. Running past the capacity is a contract
 * violation.
 */
func (bs *BufferSystem) NewTransient(format *metadata.VertexFormat, num uint32) metadata.TransientBuffer {
	core.Assert(format != nil && format.Finalized(), "vertex format must be finalized before use")
	core.Assert(bs.transient != nil, "transient buffer not allocated, call Reset first")

	// 64 bits so a huge num cannot wrap past the check
	size64 := uint64(num) * uint64(format.Stride)
	core.Assert(uint64(bs.transientOffset)+size64 <= uint64(len(bs.transient)),
		"transient buffer overflow: %d bytes in use, %d requested, capacity %d", bs.transientOffset, size64, len(bs.transient))
	size := uint32(size64)

	tb := metadata.TransientBuffer{
		Data:      bs.transient[bs.transientOffset : bs.transientOffset+size : bs.transientOffset+size],
		Num:       num,
		Offset:    bs.transientOffset,
		Format:    *format,
		HasFormat: true,
	}
	next := metadata.GetAligned(uint64(bs.transientOffset+size), 4)
	if next > uint64(len(bs.transient)) {
		next = uint64(len(bs.transient))
	}
	bs.transientOffset = uint32(next)
	return tb
}

// TransientAvailable returns how many vertices of format still fit this frame.
func (bs *BufferSystem) TransientAvailable(format *metadata.VertexFormat) uint32 {
	core.Assert(format != nil && format.Stride > 0, "vertex format must be finalized before use")
	return (uint32(len(bs.transient)) - bs.transientOffset) / format.Stride
}

// TransientOffset returns the transient cursor in bytes.
func (bs *BufferSystem) TransientOffset() uint32 {
	return bs.transientOffset
}

// flush uploads the used part of the transient region in one update.
func (bs *BufferSystem) flush(ext renderer.Extensions) {
	if bs.transientOffset == 0 {
		return
	}
	used := bs.transient[:bs.transientOffset]
	bs.device.BindBuffer(metadata.BufferTargetArray, bs.transientBuf.ID)
	if ext.Mapper != nil {
		if dst := ext.Mapper.MapBufferRange(metadata.BufferTargetArray, 0, len(used)); dst != nil {
			copy(dst, used)
			ext.Mapper.UnmapBuffer(metadata.BufferTargetArray)
			return
		}
	}
	bs.device.BufferSubData(metadata.BufferTargetArray, 0, used)
}

// Transient returns the device buffer behind the transient region.
func (bs *BufferSystem) Transient() *metadata.Buffer {
	return bs.transientBuf
}

func (bs *BufferSystem) resetTransient() {
	bs.transientOffset = 0
}

func (bs *BufferSystem) Shutdown() error {
	for _, b := range bs.buffers {
		bs.device.DeleteBuffer(b.ID)
		b.ID = 0
	}
	bs.buffers = bs.buffers[:0]
	if bs.transientBuf != nil {
		bs.device.DeleteBuffer(bs.transientBuf.ID)
		bs.transientBuf = nil
	}
	bs.transient = nil
	bs.transientOffset = 0
	return nil
}

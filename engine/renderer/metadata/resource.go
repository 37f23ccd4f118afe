package metadata

/**
 * @brief A device buffer: vertices, indices or shader storage.
 */
type Buffer struct {
	/** @brief The device handle. */
	ID uint32
	/** @brief The vertex layout, when used as a vertex source. */
	Format    VertexFormat
	HasFormat bool
	/** @brief Set when a compute job wrote the buffer and no barrier has been issued since. */
	Dirty bool
	Usage Usage
	Size  int
}

/**
 * @brief A slice of the frame's transient vertex region. Data aliases the
 * region and is uploaded at the start of the next Frame.
 */
type TransientBuffer struct {
	Data      []byte
	Num       uint32
	Offset    uint32
	Format    VertexFormat
	HasFormat bool
}

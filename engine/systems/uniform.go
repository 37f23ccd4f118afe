package systems

import (
	"fmt"
	"math"

	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

/** @brief Configuration for the uniform system. */
type UniformSystemConfig struct {
	/** @brief Size in bytes of the per-frame uniform arena. Rounded up to 4 bytes. */
	BufferSize uint32
}

type locationKey struct {
	program metadata.Program
	name    string
}

/**
 * @brief The uniform system owns the per-frame arena every uniform value is
 * copied into, the frame's list of set calls, and the (program, name)
 * location cache. The arena is a bump allocator reset by every frame.
 */
type UniformSystem struct {
	Config *UniformSystemConfig

	arena  []uint32
	cursor int
	// every set call of the frame, oldest first
	pending   []metadata.Uniform
	locations map[locationKey]int32

	device renderer.Device
}

func NewUniformSystem(config *UniformSystemConfig, device renderer.Device) (*UniformSystem, error) {
	if config.BufferSize == 0 {
		err := fmt.Errorf("func NewUniformSystem - config.BufferSize must be > 0: %w", core.ErrConfigInvalid)
		core.LogError(err.Error())
		return nil, err
	}
	return &UniformSystem{
		Config:    config,
		locations: make(map[locationKey]int32),
		device:    device,
	}, nil
}

// allocate creates the arena on first use.
func (us *UniformSystem) allocate() {
	if us.arena != nil {
		return
	}
	words := metadata.GetAligned(uint64(us.Config.BufferSize), 4) / 4
	us.arena = make([]uint32, words)
	us.cursor = 0
}

func (us *UniformSystem) alloc(words int) []uint32 {
	core.Assert(us.arena != nil, "uniform arena not allocated, call Reset first")
	core.Assert(us.cursor+words <= len(us.arena), "uniform arena overflow: %d words in use, %d requested, capacity %d", us.cursor, words, len(us.arena))
	s := us.arena[us.cursor : us.cursor+words : us.cursor+words]
	us.cursor += words
	return s
}

// begin sizes a set call and reserves its storage. count < 0 means all of u.Count.
func (us *UniformSystem) begin(u *metadata.Uniform, count, have int) []uint32 {
	core.Assert(u != nil, "uniform must not be nil")
	size := u.Size
	u.LastCount = u.Count
	if count >= 0 {
		size = count * u.Type.Words()
		u.LastCount = count
	}
	core.Assert(have >= size, "uniform %q: %d values supplied, %d required", u.Name, have, size)
	return us.alloc(size)
}

func (us *UniformSystem) commit(u *metadata.Uniform, data []uint32) {
	u.Data = data
	us.pending = append(us.pending, *u)
}

// SetFloats records a float valued set of u for the current frame.
func (us *UniformSystem) SetFloats(u *metadata.Uniform, data []float32, count int) {
	dst := us.begin(u, count, len(data))
	for i := range dst {
		dst[i] = math.Float32bits(data[i])
	}
	us.commit(u, dst)
}

// SetInts records an integer valued set of u for the current frame.
func (us *UniformSystem) SetInts(u *metadata.Uniform, data []int32, count int) {
	dst := us.begin(u, count, len(data))
	for i := range dst {
		dst[i] = uint32(data[i])
	}
	us.commit(u, dst)
}

// SetSampler records the texture slot a sampler uniform reads from.
func (us *UniformSystem) SetSampler(u *metadata.Uniform, slot uint8) {
	core.Assert(u != nil, "sampler uniform must not be nil")
	core.Assert(u.Count == 1, "sampler uniform %q must have a count of 1, has %d", u.Name, u.Count)
	u.LastCount = 1
	dst := us.alloc(u.Size)
	dst[0] = uint32(slot)
	us.commit(u, dst)
}

/**
 * @brief Location returns the device location of name in program, querying
 * the device on first use. Negative results are cached as well.
 */
func (us *UniformSystem) Location(program metadata.Program, name string) int32 {
	key := locationKey{program: program, name: name}
	if loc, ok := us.locations[key]; ok {
		return loc
	}
	loc := us.device.UniformLocation(uint32(program), name)
	us.locations[key] = loc
	return loc
}

// forget drops every cached location of program.
func (us *UniformSystem) forget(program metadata.Program) {
	for key := range us.locations {
		if key.program == program {
			delete(us.locations, key)
		}
	}
}

// Cached returns the cached location without touching the device.
func (us *UniformSystem) Cached(program metadata.Program, name string) (int32, bool) {
	loc, ok := us.locations[locationKey{program: program, name: name}]
	return loc, ok
}

/**
 * @brief Resolve walks the frame's set calls from newest to oldest and
 * appends to draw the most recent value of every uniform program uses.
 * Values are copied into the arena so later sets do not affect the draw.
 */
func (us *UniformSystem) Resolve(program metadata.Program, draw *metadata.Draw) {
	if len(us.pending) == 0 {
		return
	}
	found := make(map[string]struct{})
	for i := len(us.pending) - 1; i >= 0; i-- {
		u := us.pending[i]
		if us.Location(program, u.Name) < 0 {
			continue
		}
		if _, ok := found[u.Name]; ok {
			continue
		}
		found[u.Name] = struct{}{}

		data := us.alloc(len(u.Data))
		copy(data, u.Data)
		u.Data = data
		draw.Uniforms = append(draw.Uniforms, u)
	}
}

// Cursor returns the number of arena words in use.
func (us *UniformSystem) Cursor() int {
	return us.cursor
}

// Pending returns the number of set calls recorded this frame.
func (us *UniformSystem) Pending() int {
	return len(us.pending)
}

// resetFrame drops the frame's set calls and rewinds the arena.
func (us *UniformSystem) resetFrame() {
	for i := range us.pending {
		us.pending[i].Data = nil
	}
	us.pending = us.pending[:0]
	us.cursor = 0
}

func (us *UniformSystem) Shutdown() error {
	us.pending = nil
	us.arena = nil
	us.cursor = 0
	us.locations = make(map[locationKey]int32)
	return nil
}

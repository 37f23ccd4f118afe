package renderer

import (
	"path/filepath"
	"runtime"

	"github.com/spaghettifunk/tinyfx/engine/core"
)

// Extensions holds the optional entry points a device provides. A nil field
// means the entry point is missing and its fallback applies.
type Extensions struct {
	DebugGroups  DebugGrouper
	Mapper       BufferMapper
	VertexArrays VertexArrayer
	Blitter      Blitter
	Memory       MemoryReporter
	Errors       ErrorReporter
}

// Discover probes dev for the optional entry points.
func Discover(dev Device) Extensions {
	var ext Extensions
	if v, ok := dev.(DebugGrouper); ok {
		ext.DebugGroups = v
	}
	if v, ok := dev.(BufferMapper); ok {
		ext.Mapper = v
	}
	if v, ok := dev.(VertexArrayer); ok {
		ext.VertexArrays = v
	}
	if v, ok := dev.(Blitter); ok {
		ext.Blitter = v
	}
	if v, ok := dev.(MemoryReporter); ok {
		ext.Memory = v
	}
	if v, ok := dev.(ErrorReporter); ok {
		ext.Errors = v
	}
	return ext
}

// PushGroup opens a debug group when the device supports them.
func (e Extensions) PushGroup(id uint32, label string) {
	if e.DebugGroups != nil {
		e.DebugGroups.PushDebugGroup(id, label)
	}
}

// PopGroup closes the innermost debug group.
func (e Extensions) PopGroup() {
	if e.DebugGroups != nil {
		e.DebugGroups.PopDebugGroup()
	}
}

// Check drains the device error queue and logs every error with the
// caller's location. It does nothing in release builds.
func (e Extensions) Check() int {
	if !core.DebugBuild || e.Errors == nil {
		return 0
	}
	errs := e.Errors.DeviceErrors()
	if len(errs) == 0 {
		return 0
	}
	file, line := "?", 0
	if _, f, l, ok := runtime.Caller(1); ok {
		file, line = filepath.Base(f), l
	}
	for _, code := range errs {
		core.LogError("%s:%d device error: 0x%04x", file, line, code)
	}
	return len(errs)
}

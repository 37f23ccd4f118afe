package systems

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

// Stage of a RenderContext.
type Stage int

const (
	StageUninitialized Stage = iota
	StageReady
	StageExecuting
	StageShutdown
)

func (s Stage) String() string {
	switch s {
	case StageUninitialized:
		return "uninitialized"
	case StageReady:
		return "ready"
	case StageExecuting:
		return "executing"
	case StageShutdown:
		return "shutdown"
	}
	return "unknown"
}

/** @brief Configuration for a RenderContext. */
type RenderContextConfig struct {
	/** @brief The context version as major*10+minor, i.e. 43 for 4.3. */
	ContextVersion int
	GLES           bool
	/** @brief Size in bytes of the per-frame uniform arena. */
	UniformBufferSize uint32
	/** @brief Size in bytes of the per-frame transient vertex region. */
	TransientBufferSize uint32
	/** @brief Receives shader logs. Defaults to core.DefaultInfoLog. */
	InfoLog core.InfoLog
}

/**
 * @brief RenderContext owns every piece of renderer state. Commands are
 * recorded through its systems during a frame and executed by Frame.
 * A RenderContext must be driven from a single goroutine.
 */
type RenderContext struct {
	Config *RenderContextConfig

	ViewSystem    *ViewSystem
	CommandSystem *CommandSystem
	UniformSystem *UniformSystem
	BufferSystem  *BufferSystem
	TextureSystem *TextureSystem
	ShaderSystem  *ShaderSystem

	device renderer.Device
	ext    renderer.Extensions
	caps   metadata.Caps
	flags  metadata.ResetFlags
	stage  Stage
	// vertex attribute arrays left enabled by the last frame, without vertex arrays
	enabledAttribs uint32
}

func NewRenderContext(config *RenderContextConfig, device renderer.Device) (*RenderContext, error) {
	if device == nil {
		err := fmt.Errorf("func NewRenderContext - device is nil: %w", core.ErrNotInitialized)
		core.LogError(err.Error())
		return nil, err
	}
	if config.InfoLog == nil {
		config.InfoLog = core.DefaultInfoLog
	}

	vs, err := NewViewSystem()
	if err != nil {
		return nil, err
	}
	us, err := NewUniformSystem(&UniformSystemConfig{
		BufferSize: config.UniformBufferSize,
	}, device)
	if err != nil {
		return nil, err
	}
	bs, err := NewBufferSystem(&BufferSystemConfig{
		TransientSize: config.TransientBufferSize,
	}, device)
	if err != nil {
		return nil, err
	}
	ts, err := NewTextureSystem(device)
	if err != nil {
		return nil, err
	}
	ss, err := NewShaderSystem(&ShaderSystemConfig{
		ContextVersion: config.ContextVersion,
		GLES:           config.GLES,
		InfoLog:        config.InfoLog,
	}, device)
	if err != nil {
		return nil, err
	}
	cs, err := NewCommandSystem(vs, us, bs)
	if err != nil {
		return nil, err
	}
	ss.uniforms = us

	return &RenderContext{
		Config:        config,
		ViewSystem:    vs,
		CommandSystem: cs,
		UniformSystem: us,
		BufferSystem:  bs,
		TextureSystem: ts,
		ShaderSystem:  ss,
		device:        device,
		stage:         StageUninitialized,
	}, nil
}

/**
 * @brief Reset (re)initializes the context for a width x height output.
 * The first call allocates the per-frame arenas. Every call clears all view
 * configuration and reapplies anisotropy to existing textures.
 */
func (rc *RenderContext) Reset(width, height uint16, flags metadata.ResetFlags) {
	core.Assert(rc.stage != StageExecuting, "Reset called while a frame is executing")
	core.Assert(rc.stage != StageShutdown, "Reset called after Shutdown")

	rc.ext = renderer.Discover(rc.device)
	rc.caps = metadata.DetectCaps(rc.device.Extensions(), rc.Config.ContextVersion, rc.Config.GLES)
	core.Assert(rc.caps.Instancing, "device does not support instanced drawing")
	core.Assert(rc.caps.Compute, "device does not support compute shaders")

	if flags&metadata.ResetMaxAnisotropy != 0 && !rc.caps.AnisotropicFiltering {
		core.LogWarn("anisotropic filtering requested but not supported")
		flags &^= metadata.ResetMaxAnisotropy
	}
	rc.flags = flags

	rc.ViewSystem.resize(width, height)
	rc.UniformSystem.allocate()
	rc.BufferSystem.allocate()
	rc.ShaderSystem.setCaps(rc.caps)

	var anisotropy float32
	if flags&metadata.ResetMaxAnisotropy != 0 {
		anisotropy = rc.device.MaxAnisotropy()
	}
	rc.TextureSystem.setAnisotropy(anisotropy)

	if rc.caps.MemoryInfo && rc.ext.Memory != nil {
		core.LogInfo("GL memory: %d MiB", rc.ext.Memory.TotalAvailableMemoryKB()/1024)
	}

	rc.ViewSystem.reset()
	rc.stage = StageReady
}

// Caps returns the capabilities detected by the last Reset.
func (rc *RenderContext) Caps() metadata.Caps {
	return rc.caps
}

// Stage returns the lifecycle stage of the context.
func (rc *RenderContext) Stage() Stage {
	return rc.stage
}

// DumpCaps logs the device strings, extensions and detected capabilities.
func (rc *RenderContext) DumpCaps() {
	info := rc.device.Info()
	core.LogInfo("GL vendor: %s", info.Vendor)
	core.LogInfo("GL renderer: %s", info.Renderer)
	core.LogInfo("GL version: %s", info.Version)
	core.LogInfo("GLSL version: %s", info.GLSL)
	core.LogDebug("GL extensions: %s", strings.Join(rc.device.Extensions(), " "))

	caps := []struct {
		name string
		ok   bool
	}{
		{"multisample", rc.caps.Multisample},
		{"compute", rc.caps.Compute},
		{"float canvas", rc.caps.FloatCanvas},
		{"debug marker", rc.caps.DebugMarker},
		{"debug output", rc.caps.DebugOutput},
		{"memory info", rc.caps.MemoryInfo},
		{"instancing", rc.caps.Instancing},
		{"seamless cubemap", rc.caps.SeamlessCubemap},
		{"anisotropic filtering", rc.caps.AnisotropicFiltering},
	}
	for _, c := range caps {
		core.LogInfo("cap %s: %t", c.name, c.ok)
	}
}

/**
 * @brief Shutdown executes whatever is still queued, then releases every
 * device object and arena. Safe to call without Reset and more than once.
 */
func (rc *RenderContext) Shutdown() error {
	if rc.stage == StageShutdown {
		return nil
	}
	core.Assert(rc.stage != StageExecuting, "Shutdown called while a frame is executing")
	if rc.stage == StageReady {
		rc.Frame()
	}

	if err := rc.ViewSystem.Shutdown(); err != nil {
		return err
	}
	if err := rc.CommandSystem.Shutdown(); err != nil {
		return err
	}
	if err := rc.TextureSystem.Shutdown(); err != nil {
		return err
	}
	if err := rc.BufferSystem.Shutdown(); err != nil {
		return err
	}
	if err := rc.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := rc.UniformSystem.Shutdown(); err != nil {
		return err
	}
	rc.stage = StageShutdown
	return nil
}

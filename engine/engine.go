package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/tinyfx/engine/assets"
	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/platform"
	"github.com/spaghettifunk/tinyfx/engine/renderer/opengl"
	"github.com/spaghettifunk/tinyfx/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

/**
 * @brief Engine owns the window, the GL device and the render context, and
 * drives the game callbacks once per frame. Everything runs on the goroutine
 * that called Run, which must be the main OS thread.
 */
type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *Config
	// cleared from signal handlers too
	isRunning     atomic.Bool
	isSuspended   bool
	platform      *platform.Platform
	device        *opengl.Device
	renderContext *systems.RenderContext
	// nil when hot reload is off
	assetManager *assets.AssetManager
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64
}

func New(g *Game) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("func New - game is nil: %w", core.ErrConfigInvalid)
	}
	if g.Config == nil {
		g.Config = DefaultConfig()
	}
	if err := g.Config.Validate(); err != nil {
		return nil, err
	}
	level, err := core.ParseLogLevel(g.Config.Log.Level)
	if err != nil {
		return nil, err
	}
	core.SetLogLevel(level)

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.Config,
		clock:        core.NewClock(),
		platform:     p,
		isSuspended:  false,
		width:        g.Config.Application.StartWidth,
		height:       g.Config.Application.StartHeight,
		lastTime:     0,
	}
	e.isRunning.Store(true)
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	// initialize events
	if !core.EventInitialize() {
		return fmt.Errorf("func Initialize - failed to initialize the event system: %w", core.ErrUnknown)
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	// register some events
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	app := e.config.Application
	if err := e.platform.Startup(app.Name, app.StartPosX, app.StartPosY, app.StartWidth, app.StartHeight, platform.ContextConfig{
		Version: e.config.Renderer.ContextVersion,
		VSync:   e.config.Renderer.VSync,
		Debug:   e.config.Renderer.Debug,
	}); err != nil {
		return err
	}

	if err := opengl.Init(platform.ProcAddress); err != nil {
		return err
	}
	e.device = opengl.NewDevice()
	// errors left behind by context creation are not ours
	for _, code := range e.device.DeviceErrors() {
		core.LogDebug("discarding startup GL error %s", opengl.ErrorString(code))
	}

	rc, err := systems.NewRenderContext(e.config.RenderContextConfig(), e.device)
	if err != nil {
		return err
	}
	e.renderContext = rc
	e.width, e.height = e.platform.FramebufferSize()
	rc.Reset(uint16(e.width), uint16(e.height), e.config.ResetFlags())
	if e.config.Renderer.Debug {
		rc.DumpCaps()
	}

	if dir := e.config.Renderer.ShaderDir; dir != "" {
		am, err := assets.NewAssetManager(&assets.AssetManagerConfig{
			Root:      dir,
			Debounce:  e.config.ReloadDebounce(),
			Workers:   2,
			QueueSize: 16,
		})
		if err != nil {
			return err
		}
		if err := am.Initialize(); err != nil {
			return err
		}
		e.assetManager = am
	}

	e.gameInstance.RenderContext = rc
	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()

	e.lastTime = e.clock.Elapsed()

	for e.isRunning.Load() {
		e.platform.PumpMessages()

		if e.isSuspended {
			continue
		}

		e.clock.Update()
		var currentTime float64 = e.clock.Elapsed()
		var delta float64 = (currentTime - e.lastTime)
		var frameStartTime float64 = e.platform.GetAbsoluteTime()

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("game update failed, shutting down: %s", err)
			e.isRunning.Store(false)
			return err
		}

		if e.assetManager != nil {
			e.reloadChanged()
			e.assetManager.Update()
		}

		if err := e.gameInstance.FnRender(delta); err != nil {
			core.LogError("game render failed, shutting down: %s", err)
			e.isRunning.Store(false)
			return err
		}

		stats := e.renderContext.Frame()
		core.MetricsRecordFrame(stats.Draws, stats.Blits, stats.Dispatches)
		e.platform.SwapBuffers()

		var frameEndTime float64 = e.platform.GetAbsoluteTime()
		core.MetricsUpdate(frameEndTime - frameStartTime)

		e.lastTime = currentTime
	}

	return nil
}

// reloadChanged hands every shader that settled on disk to the game.
func (e *Engine) reloadChanged() {
	for _, path := range e.assetManager.Changed() {
		if assets.DetermineAssetType(path) != assets.ResourceTypeShader {
			continue
		}
		core.LogInfo("shader changed: %s", path)
		var ctx core.EventContext
		ctx.Data.C[0] = path
		core.EventFire(core.EVENT_CODE_SHADER_CHANGED, e, ctx)
		if e.gameInstance.FnOnShaderChanged == nil {
			continue
		}
		// a broken shader keeps the previous program, so this is not fatal
		if err := e.gameInstance.FnOnShaderChanged(path); err != nil {
			core.LogWarn("reloading %s: %s", path, err)
		}
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError(err.Error())
		}
	}
	if e.assetManager != nil {
		if err := e.assetManager.Close(); err != nil {
			return err
		}
	}
	if e.renderContext != nil {
		if err := e.renderContext.Shutdown(); err != nil {
			return err
		}
	}
	fps, frameTime := core.MetricsFrame()
	core.LogInfo("last frame: %.1f fps, %.3f ms", fps, frameTime)
	if err := e.platform.Shutdown(); err != nil {
		return err
	}
	if err := core.EventShutdown(); err != nil {
		return err
	}
	return nil
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_KEY_PRESSED && data.Data.U32[0] == platform.KeyEscape {
		core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	if code != core.EVENT_CODE_RESIZED {
		return false
	}
	width := data.Data.U32[0]
	height := data.Data.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height

	core.LogDebug("Window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.renderContext.Reset(uint16(width), uint16(height), e.config.ResetFlags())
	if err := e.gameInstance.FnOnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	// other listeners may still want the event
	return false
}

package platform

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/tinyfx/engine/core"
)

var startTime float64 = 0

// Key codes carried in U32[0] of key events.
const (
	KeyEscape = uint32(glfw.KeyEscape)
	KeyLeft   = uint32(glfw.KeyLeft)
	KeyRight  = uint32(glfw.KeyRight)
	KeyUp     = uint32(glfw.KeyUp)
	KeyDown   = uint32(glfw.KeyDown)
)

func init() {
	// GLFW event handling and the GL context must stay on the main OS thread
	runtime.LockOSThread()
}

/** @brief Context creation parameters. */
type ContextConfig struct {
	/** @brief major*10+minor, i.e. 43. */
	Version int
	VSync   bool
	/** @brief Request a debug context so the driver reports errors. */
	Debug bool
}

type Platform struct {
	Window *glfw.Window
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

func (p *Platform) Startup(applicationName string, x, y, width, height uint32, ctx ContextConfig) error {
	if err := glfw.Init(); err != nil {
		err = fmt.Errorf("func Startup - failed to initialize glfw: %s: %w", err, core.ErrPlatform)
		core.LogError(err.Error())
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, ctx.Version/10)
	glfw.WindowHint(glfw.ContextVersionMinor, ctx.Version%10)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if ctx.Debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		glfw.Terminate()
		err = fmt.Errorf("func Startup - failed to create window with an OpenGL %d.%d context: %s: %w", ctx.Version/10, ctx.Version%10, err, core.ErrPlatform)
		core.LogError(err.Error())
		return err
	}
	window.MakeContextCurrent()
	if ctx.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetFramebufferSizeCallback(framebufferSizeCallback)
	p.Window.SetCloseCallback(closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	startTime = glfw.GetTime()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages dispatches pending window events to the callbacks.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

// SwapBuffers presents the backbuffer.
func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

// FramebufferSize is the drawable size in pixels, which differs from the window size on HiDPI displays.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// GetAbsoluteTime returns the seconds since Startup.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime() - startTime
}

// ProcAddress loads GL entry points of the current context.
func ProcAddress(name string) unsafe.Pointer {
	return glfw.GetProcAddress(name)
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	var ctx core.EventContext
	ctx.Data.U32[0] = uint32(key)
	switch action {
	case glfw.Press:
		core.EventFire(core.EVENT_CODE_KEY_PRESSED, w, ctx)
	case glfw.Release:
		core.EventFire(core.EVENT_CODE_KEY_RELEASED, w, ctx)
	}
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	var ctx core.EventContext
	ctx.Data.U32[0] = uint32(width)
	ctx.Data.U32[1] = uint32(height)
	core.EventFire(core.EVENT_CODE_RESIZED, w, ctx)
}

func closeCallback(w *glfw.Window) {
	core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, w, core.EventContext{})
}

package engine

import (
	"github.com/spaghettifunk/tinyfx/engine/systems"
)

/**
 * @brief Game is the application plugged into the engine. Every callback
 * runs on the render goroutine, so all of them may use the RenderContext.
 */
type Game struct {
	Config *Config
	// Set by the engine before FnInitialize is called.
	RenderContext *systems.RenderContext
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	// Called for every shader file that changed on disk. Optional.
	FnOnShaderChanged OnShaderChanged
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render records the frame's commands. The engine calls Frame afterwards.
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type OnShaderChanged func(path string) error
type Shutdown func() error

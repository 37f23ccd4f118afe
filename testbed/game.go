package testbed

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tinyfx/engine"
	"github.com/spaghettifunk/tinyfx/engine/assets/loaders"
	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/platform"
	"github.com/spaghettifunk/tinyfx/engine/renderer/components"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
	"github.com/spaghettifunk/tinyfx/engine/systems"
)

const (
	viewCompute uint8 = 0
	viewScene   uint8 = 1

	textureSize = 64
	patternSize = 16
	cameraStep  = 0.05
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	shaderDir string

	triangle metadata.Program
	tint     metadata.Program

	// written by the tint job, read by the triangle's fragment shader
	tintBuffer *metadata.Buffer
	pattern    *metadata.Texture
	format     metadata.VertexFormat

	camera     *components.Camera
	projection mgl32.Mat4

	uTime  *metadata.Uniform
	uMVP   *metadata.Uniform
	sColor *metadata.Uniform

	elapsed float64
	width   uint32
	height  uint32
}

func NewTestGame(config *engine.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Config: config,
			State: &gameState{
				shaderDir: config.Renderer.ShaderDir,
				camera:    components.NewCamera(),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnOnShaderChanged = tg.OnShaderChanged
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.RenderContext == nil {
		return fmt.Errorf("the engine has not created a render context yet: %w", core.ErrNotInitialized)
	}
	state := g.State.(*gameState)
	rc := g.RenderContext

	state.camera.SetPosition(mgl32.Vec3{0, 0, 1})
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, g, g.onKey)

	state.format.Add(0, 3, false, metadata.ComponentFloat)
	state.format.Add(1, 4, true, metadata.ComponentUByte)
	state.format.Add(2, 2, false, metadata.ComponentFloat)
	state.format.End()

	var err error
	if state.triangle, err = g.buildProgram("triangle"); err != nil {
		return err
	}
	if state.tint, err = g.buildProgram("tint"); err != nil {
		return err
	}

	state.uTime = metadata.NewUniform("u_time", metadata.UniformFloat, 1)
	state.uMVP = metadata.NewUniform("u_mvp", metadata.UniformMat4, 1)
	state.sColor = metadata.NewUniform("s_color", metadata.UniformInt, 1)

	state.tintBuffer = rc.BufferSystem.NewBuffer(nil, 16, nil, metadata.UsageDynamic)
	state.pattern = rc.TextureSystem.NewTexture(textureSize, textureSize, checker(0), metadata.FormatRGBA8,
		metadata.TextureFilterLinear|metadata.TextureCPUWritable)

	return nil
}

// buildProgram links the shaders called name in the shader directory.
func (g *TestGame) buildProgram(name string) (metadata.Program, error) {
	state := g.State.(*gameState)
	src, err := loaders.LoadProgram(state.shaderDir, name)
	if err != nil {
		return 0, err
	}
	var program metadata.Program
	if src.IsCompute() {
		program = g.RenderContext.ShaderSystem.NewComputeProgram(src.Compute)
	} else {
		program = g.RenderContext.ShaderSystem.NewProgram(src.Vertex, src.Fragment, []string{"a_position", "a_color", "a_texcoord"})
	}
	if program == 0 {
		return 0, fmt.Errorf("program %s failed to build", name)
	}
	return program, nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime
	// a fresh slice every frame, the previous one belongs to the renderer until Frame runs
	g.RenderContext.TextureSystem.Update(state.pattern, checker(int(state.elapsed*8)))
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.State.(*gameState)
	rc := g.RenderContext
	cmd := rc.CommandSystem

	cmd.SetUniform(state.uTime, []float32{float32(state.elapsed)}, 1)
	cmd.SetBuffer(state.tintBuffer, 0, true)
	cmd.Dispatch(viewCompute, state.tint, 1, 1, 1)

	if rc.BufferSystem.TransientAvailable(&state.format) < 3 {
		core.LogWarn("transient buffer exhausted, skipping the triangle")
		return nil
	}
	tb := rc.BufferSystem.NewTransient(&state.format, 3)
	writeTriangle(tb.Data, state.format.Stride)

	view := state.camera.View()
	rc.ViewSystem.Configure(viewScene, systems.WithTransform(view, state.projection, state.projection))
	model := mgl32.HomogRotate3DZ(float32(state.elapsed))
	mvp := state.projection.Mul4(view).Mul4(model)

	cmd.SetUniform(state.uMVP, mvp[:], 1)
	cmd.SetTexture(state.sColor, state.pattern, 0)
	cmd.SetBuffer(state.tintBuffer, 0, false)
	cmd.SetTransientBuffer(tb)
	cmd.SetState(metadata.StateRGBWrite | metadata.StateAlphaWrite | metadata.StateMSAA)
	cmd.Submit(viewScene, state.triangle, false)
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height

	aspect := float32(width) / float32(height)
	state.projection = mgl32.Ortho(-aspect, aspect, -1, 1, 0, 2)

	// Reset cleared every view, configure them again
	vs := g.RenderContext.ViewSystem
	vs.Configure(viewCompute, systems.WithName("tint"))
	vs.Configure(viewScene,
		systems.WithName("scene"),
		systems.WithClearColor(0x202830ff),
		systems.WithClearDepth(1),
	)
	return nil
}

// OnShaderChanged rebuilds the program a changed file belongs to. A broken
// shader keeps the previous program alive.
func (g *TestGame) OnShaderChanged(path string) error {
	state := g.State.(*gameState)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var slot *metadata.Program
	switch name {
	case "triangle":
		slot = &state.triangle
	case "tint":
		slot = &state.tint
	default:
		return nil
	}
	program, err := g.buildProgram(name)
	if err != nil {
		return err
	}
	g.RenderContext.ShaderSystem.DeleteProgram(*slot)
	*slot = program
	core.LogInfo("program %s reloaded", name)
	return nil
}

// onKey pans the camera with the arrow keys.
func (g *TestGame) onKey(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	camera := g.State.(*gameState).camera
	switch data.Data.U32[0] {
	case platform.KeyLeft:
		camera.MoveLeft(cameraStep)
	case platform.KeyRight:
		camera.MoveRight(cameraStep)
	case platform.KeyUp:
		camera.MoveUp(cameraStep)
	case platform.KeyDown:
		camera.MoveDown(cameraStep)
	default:
		return false
	}
	return true
}

func (g *TestGame) Shutdown() error {
	core.LogDebug("TestGame Shutdown fn....")
	core.EventUnregister(core.EVENT_CODE_KEY_PRESSED, g)
	state := g.State.(*gameState)
	if state.pattern != nil {
		g.RenderContext.TextureSystem.Free(state.pattern)
	}
	if state.tintBuffer != nil {
		g.RenderContext.BufferSystem.Free(state.tintBuffer)
	}
	return nil
}

// writeTriangle fills three vertices: position, colour, texcoord.
func writeTriangle(dst []byte, stride uint32) {
	vertices := []struct {
		x, y  float32
		color [4]uint8
		u, v  float32
	}{
		{-0.6, -0.5, [4]uint8{255, 64, 64, 255}, 0, 0},
		{0.6, -0.5, [4]uint8{64, 255, 64, 255}, 1, 0},
		{0, 0.6, [4]uint8{64, 64, 255, 255}, 0.5, 1},
	}
	for i, vtx := range vertices {
		b := dst[uint32(i)*stride:]
		binary.LittleEndian.PutUint32(b[0:], math.Float32bits(vtx.x))
		binary.LittleEndian.PutUint32(b[4:], math.Float32bits(vtx.y))
		binary.LittleEndian.PutUint32(b[8:], math.Float32bits(0))
		copy(b[12:16], vtx.color[:])
		binary.LittleEndian.PutUint32(b[16:], math.Float32bits(vtx.u))
		binary.LittleEndian.PutUint32(b[20:], math.Float32bits(vtx.v))
	}
}

// checker draws a small scrolling pattern and scales it up to the texture size.
func checker(shift int) []byte {
	src := image.NewNRGBA(image.Rect(0, 0, patternSize, patternSize))
	for y := 0; y < patternSize; y++ {
		for x := 0; x < patternSize; x++ {
			c := color.NRGBA{R: 40, G: 40, B: 40, A: 255}
			if ((x+shift)/4+y/4)%2 == 0 {
				c = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}
	return loaders.ImageToRGBA8(loaders.Resize(src, textureSize, textureSize))
}

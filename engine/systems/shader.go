package systems

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The context version as major*10+minor. Drives the #version line. */
	ContextVersion int
	/** @brief True for OpenGL ES contexts. */
	GLES bool
	/** @brief Receives compile and link logs. Defaults to core.DefaultInfoLog. */
	InfoLog core.InfoLog
}

// Preludes for GLSL 1.x contexts, where in/out and precision qualifiers differ.
const legacyVertexPrelude = `#ifndef GL_ES
#define lowp
#define mediump
#define highp
#else
precision highp float;
#define in attribute
#define out varying
#endif
#pragma optionNV(strict on)
#define main _user_main
#define tfx_viewport_count 1
#define VERTEX 1
#line 1
`

const legacyFragmentPrelude = `#ifndef GL_ES
#define lowp
#define mediump
#define highp
#else
precision mediump float;
#define in varying
#endif
#pragma optionNV(strict on)
#define PIXEL 1
#line 1
`

const vertexPrelude = `#ifdef GL_ES
precision highp float;
#endif
#define main _user_main
#define tfx_viewport_count 1
#define VERTEX 1
#line 1
`

const fragmentPrelude = `#ifdef GL_ES
precision mediump float;
#endif
#define PIXEL 1
#line 1
`

// The user's main is renamed by the prelude and called from the real one.
const vertexEpilogue = `
#undef main
void main() {
	_user_main();
}
`

/**
 * @brief The shader system compiles and links programs and keeps every
 * program it linked so they can be deleted at shutdown.
 */
type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A collection of linked programs.
	Programs []metadata.Program

	caps metadata.Caps
	// set whenever a shader was compiled since the last release
	compilerAllocated bool
	// drops cached locations of deleted programs, the device reuses their names
	uniforms *UniformSystem

	device renderer.Device
}

func NewShaderSystem(config *ShaderSystemConfig, device renderer.Device) (*ShaderSystem, error) {
	if !metadata.SupportedContext(config.ContextVersion, config.GLES) {
		err := fmt.Errorf("func NewShaderSystem - context version %d (gles=%t): %w", config.ContextVersion, config.GLES, core.ErrUnsupportedContext)
		core.LogError(err.Error())
		return nil, err
	}
	if config.InfoLog == nil {
		config.InfoLog = core.DefaultInfoLog
	}
	return &ShaderSystem{
		Config:   config,
		Programs: []metadata.Program{},
		device:   device,
	}, nil
}

func (ss *ShaderSystem) setCaps(caps metadata.Caps) {
	ss.caps = caps
}

// VersionLine returns the #version directive matching the context.
func (ss *ShaderSystem) VersionLine() string {
	major := ss.Config.ContextVersion / 10
	minor := ss.Config.ContextVersion % 10
	suffix := " core"
	switch {
	case ss.Config.GLES && ss.Config.ContextVersion >= 30:
		suffix = " es"
	case ss.Config.ContextVersion < 30:
		// GLSL 1.x: GL 2.1 maps to 120, GLES 2.0 to 100
		suffix = ""
		major = 1
		if !ss.Config.GLES {
			minor = 2
		}
	}
	return fmt.Sprintf("#version %d%d0%s\n", major, minor, suffix)
}

// compile returns 0 on failure, after reporting the device log.
func (ss *ShaderSystem) compile(stage metadata.ShaderStage, source string) uint32 {
	ss.compilerAllocated = true
	shader := ss.device.CreateShader(stage)
	if shader == 0 {
		ss.Config.InfoLog(fmt.Sprintf("unable to create %s shader", stage), core.SeverityError)
		return 0
	}
	if ok, log := ss.device.CompileShader(shader, source); !ok {
		ss.Config.InfoLog(fmt.Sprintf("error compiling %s shader:\n%s", stage, log), core.SeverityError)
		ss.device.DeleteShader(shader)
		return 0
	}
	return shader
}

func (ss *ShaderSystem) link(program uint32) bool {
	if ok, log := ss.device.LinkProgram(program); !ok {
		ss.Config.InfoLog(fmt.Sprintf("error linking program:\n%s", log), core.SeverityError)
		ss.device.DeleteProgram(program)
		return false
	}
	return true
}

/**
 * @brief NewProgram builds a program from vertex and fragment sources.
 * attribs are bound to locations 0, 1, ... in order.
 * @return The program, or 0 if compiling or linking failed.
 */
func (ss *ShaderSystem) NewProgram(vertexSource, fragmentSource string, attribs []string) metadata.Program {
	vsPrelude, fsPrelude := vertexPrelude, fragmentPrelude
	if ss.Config.ContextVersion < 30 {
		vsPrelude, fsPrelude = legacyVertexPrelude, legacyFragmentPrelude
	}
	version := ss.VersionLine()

	var vss, fss strings.Builder
	vss.WriteString(version)
	vss.WriteString(vsPrelude)
	vss.WriteString(vertexSource)
	vss.WriteString(vertexEpilogue)
	fss.WriteString(version)
	fss.WriteString(fsPrelude)
	fss.WriteString(fragmentSource)

	vs := ss.compile(metadata.ShaderStageVertex, vss.String())
	fs := ss.compile(metadata.ShaderStageFragment, fss.String())
	if vs == 0 || fs == 0 {
		if vs != 0 {
			ss.device.DeleteShader(vs)
		}
		if fs != 0 {
			ss.device.DeleteShader(fs)
		}
		return 0
	}

	program := ss.device.CreateProgram()
	if program == 0 {
		ss.device.DeleteShader(vs)
		ss.device.DeleteShader(fs)
		return 0
	}
	ss.device.AttachShader(program, vs)
	ss.device.AttachShader(program, fs)
	for i, name := range attribs {
		ss.device.BindAttribLocation(program, uint32(i), name)
	}
	linked := ss.link(program)
	ss.device.DeleteShader(vs)
	ss.device.DeleteShader(fs)
	if !linked {
		return 0
	}

	ss.Programs = append(ss.Programs, metadata.Program(program))
	return metadata.Program(program)
}

/**
 * @brief NewComputeProgram builds a compute program. The source is used
 * as is, #version line included.
 * @return The program, or 0 without compute support or on failure.
 */
func (ss *ShaderSystem) NewComputeProgram(source string) metadata.Program {
	if !ss.caps.Compute {
		return 0
	}
	cs := ss.compile(metadata.ShaderStageCompute, source)
	if cs == 0 {
		return 0
	}
	program := ss.device.CreateProgram()
	if program == 0 {
		ss.device.DeleteShader(cs)
		return 0
	}
	ss.device.AttachShader(program, cs)
	linked := ss.link(program)
	ss.device.DeleteShader(cs)
	if !linked {
		return 0
	}

	ss.Programs = append(ss.Programs, metadata.Program(program))
	return metadata.Program(program)
}

// DeleteProgram deletes a program built by this system.
func (ss *ShaderSystem) DeleteProgram(program metadata.Program) {
	for i, p := range ss.Programs {
		if p == program {
			last := len(ss.Programs) - 1
			ss.Programs[i] = ss.Programs[last]
			ss.Programs = ss.Programs[:last]
			ss.device.DeleteProgram(uint32(program))
			if ss.uniforms != nil {
				ss.uniforms.forget(program)
			}
			return
		}
	}
	core.LogWarn("program %d is not owned by the shader system", program)
}

// releaseCompiler hints the device once per batch of compiles.
func (ss *ShaderSystem) releaseCompiler() {
	if !ss.compilerAllocated {
		return
	}
	if ss.device.ShaderCompilerPresent() {
		ss.device.ReleaseShaderCompiler()
	}
	ss.compilerAllocated = false
}

func (ss *ShaderSystem) Shutdown() error {
	ss.device.UseProgram(0)
	for _, p := range ss.Programs {
		ss.device.DeleteProgram(uint32(p))
	}
	ss.Programs = ss.Programs[:0]
	return nil
}

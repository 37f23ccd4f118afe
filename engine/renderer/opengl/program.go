package opengl

import (
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
)

func (d *Device) CreateShader(stage metadata.ShaderStage) uint32 {
	return gl.CreateShader(shaderStage(stage))
}

func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	csources, free := gl.Strs(cString(source))
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return false, infoLog(log)
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Device) BindAttribLocation(program uint32, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(cString(name)))
}

func (d *Device) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return false, infoLog(log)
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(cString(name)))
}

// Uniform reinterprets data in place; float types already hold IEEE-754 bits.
func (d *Device) Uniform(location int32, typ metadata.UniformType, count int32, data []uint32) {
	if len(data) == 0 {
		return
	}
	if typ == metadata.UniformInt {
		gl.Uniform1iv(location, count, (*int32)(unsafe.Pointer(&data[0])))
		return
	}
	f := (*float32)(unsafe.Pointer(&data[0]))
	switch typ {
	case metadata.UniformFloat:
		gl.Uniform1fv(location, count, f)
	case metadata.UniformVec2:
		gl.Uniform2fv(location, count, f)
	case metadata.UniformVec3:
		gl.Uniform3fv(location, count, f)
	case metadata.UniformVec4:
		gl.Uniform4fv(location, count, f)
	case metadata.UniformMat2:
		gl.UniformMatrix2fv(location, count, false, f)
	case metadata.UniformMat3:
		gl.UniformMatrix3fv(location, count, false, f)
	case metadata.UniformMat4:
		gl.UniformMatrix4fv(location, count, false, f)
	}
}

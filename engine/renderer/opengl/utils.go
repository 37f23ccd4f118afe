package opengl

import (
	"strings"

	"github.com/go-gl/gl/v4.3-core/gl"
)

// ErrorString names a glGetError code.
func ErrorString(code uint32) string {
	switch code {
	case gl.NO_ERROR:
		return "GL_NO_ERROR"
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	case gl.STACK_UNDERFLOW:
		return "GL_STACK_UNDERFLOW"
	case gl.STACK_OVERFLOW:
		return "GL_STACK_OVERFLOW"
	}
	return "GL_UNKNOWN_ERROR"
}

// cString returns a null terminated copy of s for go-gl calls taking *uint8.
func cString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

// goString reads a GL owned string, "" when the query fails.
func goString(name uint32) string {
	p := gl.GetString(name)
	if p == nil {
		return ""
	}
	return gl.GoStr(p)
}

// infoLog trims the trailing null the driver writes into the log buffer.
func infoLog(buf string) string {
	return strings.TrimRight(buf, "\x00")
}

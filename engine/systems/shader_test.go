package systems

import (
	"errors"
	"strings"
	"testing"

	"github.com/spaghettifunk/tinyfx/engine/core"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
	"github.com/spaghettifunk/tinyfx/engine/renderer/rendertest"
)

const (
	testVertex   = "in vec3 a_position;\nvoid main() { gl_Position = vec4(a_position, 1.0); }\n"
	testFragment = "out vec4 out_color;\nvoid main() { out_color = vec4(1.0); }\n"
)

type logged struct {
	msg      string
	severity core.Severity
}

func newTestShaders(t *testing.T, version int, gles bool) (*ShaderSystem, *rendertest.Device, *[]logged) {
	t.Helper()
	dev := rendertest.NewDevice()
	var logs []logged
	ss, err := NewShaderSystem(&ShaderSystemConfig{
		ContextVersion: version,
		GLES:           gles,
		InfoLog: func(msg string, severity core.Severity) {
			logs = append(logs, logged{msg, severity})
		},
	}, dev)
	if err != nil {
		t.Fatalf("NewShaderSystem: %v", err)
	}
	ss.setCaps(metadata.DetectCaps(nil, version, gles))
	return ss, dev, &logs
}

func TestVersionLine(t *testing.T) {
	tests := []struct {
		version int
		gles    bool
		want    string
	}{
		{43, false, "#version 430 core\n"},
		{33, false, "#version 330 core\n"},
		{30, true, "#version 300 es\n"},
		{31, true, "#version 310 es\n"},
		{21, false, "#version 120\n"},
		{20, true, "#version 100\n"},
	}
	for _, tt := range tests {
		ss, _, _ := newTestShaders(t, tt.version, tt.gles)
		if have := ss.VersionLine(); have != tt.want {
			t.Fatalf("%d gles=%t: have %q, want %q", tt.version, tt.gles, have, tt.want)
		}
	}
}

func TestNewShaderSystemRejectsUnsupportedContext(t *testing.T) {
	_, err := NewShaderSystem(&ShaderSystemConfig{ContextVersion: 11}, rendertest.NewDevice())
	if !errors.Is(err, core.ErrUnsupportedContext) {
		t.Fatalf("have %v, want %v", err, core.ErrUnsupportedContext)
	}
}

func TestNewProgram(t *testing.T) {
	ss, dev, logs := newTestShaders(t, 43, false)

	p := ss.NewProgram(testVertex, testFragment, []string{"a_position", "a_color"})
	if p == 0 {
		t.Fatalf("program creation failed: %v", *logs)
	}
	if len(ss.Programs) != 1 || ss.Programs[0] != p {
		t.Fatalf("program not tracked")
	}

	shaders := dev.Find("CreateShader")
	if len(shaders) != 2 {
		t.Fatalf("have %d shaders, want 2", len(shaders))
	}
	vs := dev.Sources[shaders[0].Args[1].(uint32)]
	fs := dev.Sources[shaders[1].Args[1].(uint32)]
	if !strings.HasPrefix(vs, "#version 430 core\n") || !strings.HasPrefix(fs, "#version 430 core\n") {
		t.Fatalf("missing version line")
	}
	if !strings.Contains(vs, "#define main _user_main") || !strings.Contains(vs, "_user_main();") {
		t.Fatalf("vertex main is not wrapped:\n%s", vs)
	}
	if strings.Contains(fs, "_user_main") {
		t.Fatalf("fragment main must not be wrapped")
	}

	attribs := dev.Find("BindAttribLocation")
	if len(attribs) != 2 || attribs[1].Args[1].(uint32) != 1 || attribs[1].Args[2].(string) != "a_color" {
		t.Fatalf("have %v", attribs)
	}
	if dev.Count("DeleteShader") != 2 {
		t.Fatalf("shaders not released after linking")
	}
}

func TestLegacyPrelude(t *testing.T) {
	ss, dev, _ := newTestShaders(t, 20, true)
	ss.NewProgram(testVertex, testFragment, nil)
	vs := dev.Sources[dev.Find("CreateShader")[0].Args[1].(uint32)]
	if !strings.Contains(vs, "#define in attribute") {
		t.Fatalf("legacy contexts need the attribute prelude:\n%s", vs)
	}
}

func TestCompileFailureReturnsZero(t *testing.T) {
	ss, dev, logs := newTestShaders(t, 43, false)
	dev.FailCompile[metadata.ShaderStageFragment] = true

	if p := ss.NewProgram(testVertex, "garbage", nil); p != 0 {
		t.Fatalf("have program %d, want 0", p)
	}
	if len(*logs) != 1 || (*logs)[0].severity != core.SeverityError || !strings.Contains((*logs)[0].msg, "syntax error") {
		t.Fatalf("have logs %v", *logs)
	}
	if dev.Count("CreateProgram") != 0 || len(ss.Programs) != 0 {
		t.Fatalf("failed compile still produced a program")
	}
	// both shader objects are released
	if dev.Count("DeleteShader") != 2 {
		t.Fatalf("have %d shader deletions, want 2", dev.Count("DeleteShader"))
	}
}

func TestLinkFailureReturnsZero(t *testing.T) {
	ss, dev, logs := newTestShaders(t, 43, false)
	dev.FailLink = true

	if p := ss.NewProgram(testVertex, testFragment, nil); p != 0 {
		t.Fatalf("have program %d, want 0", p)
	}
	if dev.Count("DeleteProgram") != 1 || len(*logs) != 1 {
		t.Fatalf("link failure not reported and cleaned up")
	}
}

func TestComputeProgram(t *testing.T) {
	ss, dev, _ := newTestShaders(t, 43, false)
	src := "#version 430\nlayout(local_size_x = 1) in;\nvoid main() {}\n"
	p := ss.NewComputeProgram(src)
	if p == 0 {
		t.Fatalf("compute program failed")
	}
	if dev.Sources[dev.Find("CreateShader")[0].Args[1].(uint32)] != src {
		t.Fatalf("compute source must be used as is")
	}

	noCompute, _, _ := newTestShaders(t, 33, false)
	if p := noCompute.NewComputeProgram(src); p != 0 {
		t.Fatalf("have %d without compute support, want 0", p)
	}
}

func TestCompilerReleasedOnNextFrame(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	rc.ShaderSystem.NewProgram(testVertex, testFragment, nil)

	rc.Frame()
	rc.Frame()
	if n := dev.Count("ReleaseShaderCompiler"); n != 1 {
		t.Fatalf("have %d releases, want 1", n)
	}

	dev.HasCompiler = false
	rc.ShaderSystem.NewProgram(testVertex, testFragment, nil)
	rc.Frame()
	if n := dev.Count("ReleaseShaderCompiler"); n != 1 {
		t.Fatalf("released a compiler the device does not have")
	}
}

func TestDeleteProgram(t *testing.T) {
	ss, dev, _ := newTestShaders(t, 43, false)
	a := ss.NewProgram(testVertex, testFragment, nil)
	b := ss.NewProgram(testVertex, testFragment, nil)

	ss.DeleteProgram(a)
	if len(ss.Programs) != 1 || ss.Programs[0] != b {
		t.Fatalf("have %v", ss.Programs)
	}
	ss.DeleteProgram(a)
	if dev.Count("DeleteProgram") != 1 {
		t.Fatalf("unknown programs must not be deleted")
	}
}

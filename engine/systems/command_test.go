package systems

import (
	"testing"

	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
	"github.com/spaghettifunk/tinyfx/engine/renderer/rendertest"
)

func TestSubmitResetsPendingUnlessRetained(t *testing.T) {
	rc := newTestContext(t, rendertest.NewDevice())
	cmd := rc.CommandSystem

	cmd.SetState(metadata.StateRGBWrite)
	cmd.SetScissor(1, 2, 3, 4)
	cmd.Submit(0, 1, true)
	if p := cmd.Pending(); p.Flags != metadata.StateRGBWrite || !p.UseScissor {
		t.Fatalf("retained pending command lost its state: %+v", p)
	}

	cmd.SubmitOrdered(0, 1, 42, false)
	if p := cmd.Pending(); p.Flags != metadata.StateDefault || p.UseScissor || p.Depth != 0 {
		t.Fatalf("pending command not reset: %+v", p)
	}

	draws := rc.ViewSystem.Get(0).Draws
	if len(draws) != 2 {
		t.Fatalf("have %d draws, want 2", len(draws))
	}
	if draws[1].Depth != 42 || draws[1].Program != 1 {
		t.Fatalf("have depth %d program %d, want 42 and 1", draws[1].Depth, draws[1].Program)
	}
	if draws[0].Scissor != (metadata.Rect{X: 1, Y: 2, W: 3, H: 4}) {
		t.Fatalf("have scissor %+v", draws[0].Scissor)
	}
}

func TestTouchQueuesDefaultCommand(t *testing.T) {
	rc := newTestContext(t, rendertest.NewDevice())
	cmd := rc.CommandSystem

	cmd.SetState(metadata.StateBlendAlpha)
	cmd.Touch(9)

	draws := rc.ViewSystem.Get(9).Draws
	if len(draws) != 1 {
		t.Fatalf("have %d draws, want 1", len(draws))
	}
	if draws[0].Flags != metadata.StateDefault || draws[0].Program != 0 {
		t.Fatalf("have %+v, want a default command", draws[0])
	}
	if cmd.Pending().Flags != metadata.StateDefault {
		t.Fatalf("touch kept the pending state")
	}
}

func TestDispatchRecordsThreads(t *testing.T) {
	rc := newTestContext(t, rendertest.NewDevice())
	cmd := rc.CommandSystem
	buf := rc.BufferSystem.NewBuffer(nil, 64, nil, metadata.UsageDynamic)

	cmd.SetBuffer(buf, 2, true)
	cmd.Dispatch(4, 11, 8, 4, 1)

	jobs := rc.ViewSystem.Get(4).Jobs
	if len(jobs) != 1 {
		t.Fatalf("have %d jobs, want 1", len(jobs))
	}
	j := jobs[0]
	if j.ThreadsX != 8 || j.ThreadsY != 4 || j.ThreadsZ != 1 {
		t.Fatalf("have threads %d,%d,%d", j.ThreadsX, j.ThreadsY, j.ThreadsZ)
	}
	if j.Buffers[2] != buf || !j.BufferWrite[2] {
		t.Fatalf("storage binding not recorded")
	}
	if cmd.Pending().Buffers[2] != nil {
		t.Fatalf("dispatch kept the pending bindings")
	}
}

func TestSetVerticesKeepsIndexCount(t *testing.T) {
	rc := newTestContext(t, rendertest.NewDevice())
	cmd := rc.CommandSystem
	vbo := rc.BufferSystem.NewBuffer(triangle(), 36, positionFormat(), metadata.UsageStatic)
	ibo := rc.BufferSystem.NewBuffer(make([]byte, 12), 12, nil, metadata.UsageStatic)

	cmd.SetIndices(ibo, 6)
	cmd.SetVertices(vbo, 3)
	if p := cmd.Pending(); p.Indices != 6 {
		t.Fatalf("have %d indices, want 6", p.Indices)
	}
}

func TestSetTransientBuffer(t *testing.T) {
	rc := newTestContext(t, rendertest.NewDevice())
	tb := rc.BufferSystem.NewTransient(positionFormat(), 3)
	copy(tb.Data, triangle())

	rc.CommandSystem.SetTransientBuffer(tb)
	p := rc.CommandSystem.Pending()
	if !p.UseVBO || !p.UseTVB || p.Indices != 3 || p.VBO != rc.BufferSystem.Transient() {
		t.Fatalf("have %+v", p)
	}
}

func TestSetTextureBindsActiveImage(t *testing.T) {
	dev := rendertest.NewDevice()
	dev.Locations["s_albedo"] = 5
	rc := newTestContext(t, dev)

	tex := rc.TextureSystem.NewTexture(4, 4, nil, metadata.FormatRGBA8, metadata.TextureCPUWritable)
	sampler := metadata.NewUniform("s_albedo", metadata.UniformInt, 1)
	rc.CommandSystem.SetTexture(sampler, tex, 3)
	rc.CommandSystem.Submit(0, 1, false)

	d := rc.ViewSystem.Get(0).Draws[0]
	if d.Textures[3].Image != tex.Images[0] {
		t.Fatalf("have image %d, want %d", d.Textures[3].Image, tex.Images[0])
	}
	if len(d.Uniforms) != 1 || d.Uniforms[0].Data[0] != 3 {
		t.Fatalf("sampler uniform: have %v, want slot 3", d.Uniforms)
	}
}

func TestViewConfigurationIsSticky(t *testing.T) {
	rc := newTestContext(t, rendertest.NewDevice())
	vs := rc.ViewSystem

	vs.Configure(3, WithClearColor(0x102030ff), WithName("shadow"))
	vs.Configure(3, WithDepthTest(metadata.DepthTestLT))
	v := vs.Get(3)
	if v.Flags&metadata.ViewClearColor == 0 || v.Flags&metadata.ViewDepthTestLT == 0 {
		t.Fatalf("have flags %b", v.Flags)
	}
	if v.ClearColor != 0x102030ff || v.Name != "shadow" {
		t.Fatalf("have %+v", v)
	}

	vs.Configure(3, WithDepthTest(metadata.DepthTestGT))
	if v.Flags&metadata.ViewDepthTestMask != metadata.ViewDepthTestGT {
		t.Fatalf("depth test modes must be exclusive, have %b", v.Flags)
	}

	rc.CommandSystem.Touch(3)
	rc.Frame()
	if v.ClearColor != 0x102030ff {
		t.Fatalf("configuration lost after a frame")
	}

	rc.Reset(testWidth, testHeight, metadata.ResetNone)
	if v.Flags != 0 || v.Name != "" {
		t.Fatalf("Reset kept view configuration: %+v", v)
	}
}

func TestViewDimensions(t *testing.T) {
	rc := newTestContext(t, rendertest.NewDevice())
	vs := rc.ViewSystem

	if w, h := vs.Dimensions(0); w != testWidth || h != testHeight {
		t.Fatalf("have %dx%d, want the backbuffer", w, h)
	}
	canvas := rc.TextureSystem.NewCanvas(128, 64, metadata.FormatRGBA8D16, 0)
	vs.Configure(1, WithCanvas(canvas, 0))
	if vs.Width(1) != 128 || vs.Height(1) != 64 {
		t.Fatalf("have %dx%d, want 128x64", vs.Width(1), vs.Height(1))
	}
	if vs.Target(2) != vs.Backbuffer() {
		t.Fatalf("unconfigured views render to the backbuffer")
	}
}

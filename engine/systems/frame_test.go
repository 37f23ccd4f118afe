package systems

import (
	"testing"

	"github.com/spaghettifunk/tinyfx/engine/renderer"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
	"github.com/spaghettifunk/tinyfx/engine/renderer/rendertest"
)

func TestFrameEndToEnd(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	vbo := rc.BufferSystem.NewBuffer(triangle(), 36, positionFormat(), metadata.UsageStatic)
	dev.ResetCalls()

	rc.ViewSystem.Configure(0, WithClearColor(0xFF0000FF), WithClearDepth(1.0))
	p1, p2 := metadata.Program(21), metadata.Program(22)
	for _, p := range []metadata.Program{p1, p2} {
		rc.CommandSystem.SetVertices(vbo, 3)
		rc.CommandSystem.Submit(0, p, false)
	}
	stats := rc.Frame()

	if stats.Draws != 2 {
		t.Fatalf("have %d draws, want 2", stats.Draws)
	}
	binds := map[uint32]int{}
	for _, c := range dev.Find("UseProgram") {
		binds[c.Args[0].(uint32)]++
	}
	if binds[uint32(p1)] != 1 || binds[uint32(p2)] != 1 {
		t.Fatalf("have program binds %v, want one per program", binds)
	}

	clears := dev.Find("Clear")
	if len(clears) != 1 || clears[0].Args[0].(metadata.ClearMask) != metadata.ClearColor|metadata.ClearDepth {
		t.Fatalf("have clears %v", clears)
	}
	cc := dev.Find("ClearColor")
	if len(cc) != 1 {
		t.Fatalf("have %d clear colours, want 1", len(cc))
	}
	r, g, b, a := cc[0].Args[0].(float32), cc[0].Args[1].(float32), cc[0].Args[2].(float32), cc[0].Args[3].(float32)
	if r != 1 || g != 0 || b != 0 || a != 1 {
		t.Fatalf("have clear colour %v,%v,%v,%v, want red", r, g, b, a)
	}
	if cd := dev.Find("ClearDepth"); len(cd) != 1 || cd[0].Args[0].(float32) != 1.0 {
		t.Fatalf("have clear depth %v", cd)
	}
	clear := dev.Index("Clear", 0)
	firstDraw := dev.Index("DrawArraysInstanced", 0)
	if clear < 0 || firstDraw < 0 || clear > firstDraw {
		t.Fatalf("clear at %d, first draw at %d: clear must come first", clear, firstDraw)
	}
	if n := dev.Count("DrawArraysInstanced"); n != 2 {
		t.Fatalf("have %d draw calls, want 2", n)
	}
	d := dev.Find("DrawArraysInstanced")[0]
	if d.Args[0].(metadata.PrimitiveMode) != metadata.PrimitiveTriangles || d.Args[2].(int32) != 3 || d.Args[3].(int32) != 1 {
		t.Fatalf("have %v", d)
	}
}

func TestFrameDrainsQueuesAndArenas(t *testing.T) {
	dev := rendertest.NewDevice()
	dev.Locations["u_a"] = 0
	rc := newTestContext(t, dev)
	src := rc.TextureSystem.NewCanvas(32, 32, metadata.FormatRGBA8, 0)

	u := metadata.NewUniform("u_a", metadata.UniformVec4, 1)
	rc.ViewSystem.Configure(1, WithCanvas(src, 0))
	for id := uint8(0); id < 4; id++ {
		rc.CommandSystem.SetUniform(u, []float32{1, 2, 3, 4}, -1)
		rc.CommandSystem.Submit(id, 1, false)
		rc.CommandSystem.Dispatch(id, 2, 1, 1, 1)
	}
	rc.ViewSystem.Blit(0, 1, 0, 0, 32, 32)
	rc.BufferSystem.NewTransient(positionFormat(), 3)

	if rc.UniformSystem.Cursor() == 0 {
		t.Fatalf("arena unused before the frame")
	}
	stats := rc.Frame()
	if stats.Draws != 4 || stats.Dispatches != 4 || stats.Blits != 1 {
		t.Fatalf("have %+v", stats)
	}

	for id := uint8(0); id < 4; id++ {
		v := rc.ViewSystem.Get(id)
		if len(v.Draws) != 0 || len(v.Jobs) != 0 || len(v.Blits) != 0 {
			t.Fatalf("view %d not drained", id)
		}
	}
	if rc.UniformSystem.Cursor() != 0 || rc.UniformSystem.Pending() != 0 {
		t.Fatalf("uniform arena not reset: cursor %d, pending %d", rc.UniformSystem.Cursor(), rc.UniformSystem.Pending())
	}
	if rc.BufferSystem.TransientOffset() != 0 {
		t.Fatalf("transient cursor not reset")
	}

	// baseline state restored last
	calls := dev.Calls
	tail := calls[len(calls)-2:]
	if tail[0].Name != "Disable" || tail[0].Args[0].(metadata.Capability) != metadata.CapScissorTest || tail[1].Name != "ColorMask" {
		t.Fatalf("have tail %v", tail)
	}
}

func TestIdenticalDrawsIssueNoStateCalls(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)

	var marks []int
	cb := func() { marks = append(marks, dev.Mark()) }
	rc.CommandSystem.SetCallback(cb)
	rc.CommandSystem.SetState(metadata.StateDefault)
	rc.CommandSystem.Submit(0, 1, true)
	rc.CommandSystem.Submit(0, 1, true)
	rc.CommandSystem.Submit(0, 1, false)
	rc.Frame()

	if len(marks) != 3 {
		t.Fatalf("have %d callbacks, want 3", len(marks))
	}
	between := dev.Calls[marks[0]:marks[2]]
	if n := countState(between); n != 0 {
		t.Fatalf("have %d state calls between identical draws: %v", n, between)
	}
	if n := rendertest.CountIn(between, "UseProgram"); n != 0 {
		t.Fatalf("program rebound %d times", n)
	}
}

func TestStateDiffTouchesOnlyChangedGroups(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)

	var marks []int
	cb := func() { marks = append(marks, dev.Mark()) }
	cmd := rc.CommandSystem
	cmd.SetCallback(cb)
	cmd.SetState(metadata.StateDefault)
	cmd.Submit(0, 1, false)

	cmd.SetCallback(cb)
	cmd.SetState(metadata.StateRGBWrite | metadata.StateAlphaWrite | metadata.StateDepthWrite |
		metadata.StateCullCW | metadata.StateMSAA | metadata.StateBlendAlpha)
	cmd.Submit(0, 1, false)
	rc.Frame()

	between := dev.Calls[marks[0]:marks[1]]
	want := map[string]int{"Enable": 2, "FrontFace": 1, "BlendFunc": 1}
	for name, n := range want {
		if have := rendertest.CountIn(between, name); have != n {
			t.Fatalf("have %d %s calls, want %d: %v", have, name, n, between)
		}
	}
	for _, name := range []string{"DepthMask", "ColorMask", "Disable"} {
		if have := rendertest.CountIn(between, name); have != 0 {
			t.Fatalf("unchanged group issued %s: %v", name, between)
		}
	}
}

func TestFirstDrawOfViewSetsEveryGroup(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)

	var mark int
	rc.CommandSystem.SetCallback(func() { mark = dev.Mark() })
	rc.CommandSystem.Submit(0, 1, false)
	start := dev.Mark()
	rc.Frame()

	vp := dev.Index("Viewport", start)
	calls := dev.Calls[vp:mark]
	for _, name := range []string{"DepthMask", "FrontFace", "ColorMask"} {
		if rendertest.CountIn(calls, name) == 0 {
			t.Fatalf("first draw did not set %s: %v", name, calls)
		}
	}
	disabledBlend := false
	for _, c := range calls {
		if c.Name == "Disable" && c.Args[0].(metadata.Capability) == metadata.CapBlend {
			disabledBlend = true
		}
	}
	if !disabledBlend {
		t.Fatalf("first draw did not disable blending")
	}
}

func TestProgramBindsCoalesce(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)

	for _, p := range []metadata.Program{1, 1, 2, 2, 1} {
		rc.CommandSystem.Submit(0, p, false)
	}
	rc.Frame()

	var seq []uint32
	for _, c := range dev.Find("UseProgram") {
		seq = append(seq, c.Args[0].(uint32))
	}
	want := []uint32{1, 2, 1}
	if !equalWords(seq, want) {
		t.Fatalf("have binds %v, want %v", seq, want)
	}
}

func TestComputeBarriers(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	buf := rc.BufferSystem.NewBuffer(nil, 256, nil, metadata.UsageDynamic)
	cmd := rc.CommandSystem

	cmd.SetBuffer(buf, 0, true)
	cmd.Dispatch(0, 9, 16, 1, 1)
	cmd.SetBuffer(buf, 0, false)
	cmd.Dispatch(0, 9, 16, 1, 1)
	cmd.SetBuffer(buf, 0, false)
	cmd.Dispatch(0, 9, 16, 1, 1)
	stats := rc.Frame()

	if stats.Dispatches != 3 || stats.Draws != 0 {
		t.Fatalf("have %+v", stats)
	}
	barriers := dev.Find("MemoryBarrier")
	if len(barriers) != 1 || barriers[0].Args[0].(metadata.BarrierBits) != metadata.BarrierShaderStorage {
		t.Fatalf("have barriers %v, want exactly one storage barrier", barriers)
	}
	first := dev.Index("DispatchCompute", 0)
	second := dev.Index("DispatchCompute", first+1)
	barrier := dev.Index("MemoryBarrier", 0)
	if barrier < first || barrier > second {
		t.Fatalf("barrier at %d, dispatches at %d and %d", barrier, first, second)
	}
	if buf.Dirty {
		t.Fatalf("buffer still dirty after being read")
	}
	if n := dev.Count("UseProgram"); n != 1 {
		t.Fatalf("have %d program binds, want 1", n)
	}
	// every unused slot is unbound
	if n := dev.Count("BindBufferBase"); n != 3*metadata.MaxSlots {
		t.Fatalf("have %d storage binds, want %d", n, 3*metadata.MaxSlots)
	}
}

func TestDirtyVertexBufferGetsBarrier(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	vbo := rc.BufferSystem.NewBuffer(nil, 36, positionFormat(), metadata.UsageDynamic)

	// a compute job writes the vertices, then a draw reads them
	rc.CommandSystem.SetBuffer(vbo, 0, true)
	rc.CommandSystem.Dispatch(0, 4, 1, 1, 1)
	rc.CommandSystem.SetVertices(vbo, 3)
	rc.CommandSystem.Submit(0, 5, false)
	rc.Frame()

	barriers := dev.Find("MemoryBarrier")
	if len(barriers) != 1 || barriers[0].Args[0].(metadata.BarrierBits) != metadata.BarrierVertexAttribArray {
		t.Fatalf("have %v", barriers)
	}
	if vbo.Dirty {
		t.Fatalf("vertex buffer still dirty")
	}
}

func TestDrawReadsComputeOutputAfterBarrier(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	ssbo := rc.BufferSystem.NewBuffer(nil, 16, nil, metadata.UsageDynamic)
	vbo := rc.BufferSystem.NewBuffer(triangle(), 36, positionFormat(), metadata.UsageStatic)
	cmd := rc.CommandSystem

	cmd.SetBuffer(ssbo, 0, true)
	cmd.Dispatch(0, 9, 1, 1, 1)
	cmd.SetBuffer(ssbo, 0, false)
	cmd.SetVertices(vbo, 3)
	cmd.Submit(0, 5, false)
	cmd.SetVertices(vbo, 3)
	cmd.Submit(0, 5, false)
	rc.Frame()

	dispatch := dev.Index("DispatchCompute", 0)
	draw := dev.Index("DrawArraysInstanced", dispatch)
	barriers := dev.Find("MemoryBarrier")
	if len(barriers) != 1 || barriers[0].Args[0].(metadata.BarrierBits) != metadata.BarrierShaderStorage {
		t.Fatalf("have barriers %v, want exactly one storage barrier", barriers)
	}
	if barrier := dev.Index("MemoryBarrier", 0); barrier < dispatch || barrier > draw {
		t.Fatalf("barrier at %d, dispatch at %d, draw at %d", barrier, dispatch, draw)
	}
	if ssbo.Dirty {
		t.Fatalf("buffer still dirty after the draw read it")
	}

	// only the reading draw binds, and it leaves the other slots alone
	var binds []rendertest.Call
	for _, c := range dev.Since(dispatch) {
		if c.Name == "BindBufferBase" {
			binds = append(binds, c)
		}
	}
	if len(binds) != 1 {
		t.Fatalf("have %d storage binds after the dispatch, want 1", len(binds))
	}
	if slot, id := binds[0].Args[1].(uint32), binds[0].Args[2].(uint32); slot != 0 || id != ssbo.ID {
		t.Fatalf("have bind of %d at slot %d, want %d at slot 0", id, slot, ssbo.ID)
	}
}

func TestStaleAttributesAreDisabled(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)

	wide := &metadata.VertexFormat{}
	wide.Add(0, 3, false, metadata.ComponentFloat)
	wide.Add(1, 2, false, metadata.ComponentFloat)
	wide.Add(2, 1, false, metadata.ComponentSkip)
	wide.Add(3, 4, true, metadata.ComponentUByte)
	wide.End()
	a := rc.BufferSystem.NewBuffer(nil, 3*int(wide.Stride), wide, metadata.UsageStatic)
	b := rc.BufferSystem.NewBuffer(triangle(), 36, positionFormat(), metadata.UsageStatic)

	var marks []int
	cb := func() { marks = append(marks, dev.Mark()) }
	rc.CommandSystem.SetCallback(cb)
	rc.CommandSystem.SetVertices(a, 3)
	rc.CommandSystem.Submit(0, 1, false)
	rc.CommandSystem.SetCallback(cb)
	rc.CommandSystem.SetVertices(b, 3)
	rc.CommandSystem.Submit(0, 1, false)
	rc.Frame()

	first := dev.Calls[marks[0]:marks[1]]
	ptrs := []rendertest.Call{}
	for _, c := range first {
		if c.Name == "VertexAttribPointer" {
			ptrs = append(ptrs, c)
		}
	}
	if len(ptrs) != 3 {
		t.Fatalf("have %d attributes, want 3 (padding is skipped)", len(ptrs))
	}
	// the ubyte colour follows the skipped byte and is packed to index 2
	if ptrs[2].Args[0].(uint32) != 2 || ptrs[2].Args[5].(int) != 21 {
		t.Fatalf("have %v", ptrs[2])
	}

	second := dev.Since(marks[1])
	var disabled []uint32
	for _, c := range second {
		if c.Name == "DisableVertexAttribArray" {
			disabled = append(disabled, c.Args[0].(uint32))
		}
	}
	if !equalWords(disabled, []uint32{1, 2}) {
		t.Fatalf("have disabled %v, want [1 2]", disabled)
	}
}

func TestAttributesStayTrackedAcrossFrames(t *testing.T) {
	wide := &metadata.VertexFormat{}
	wide.Add(0, 3, false, metadata.ComponentFloat)
	wide.Add(1, 2, false, metadata.ComponentFloat)
	wide.Add(2, 4, true, metadata.ComponentUByte)
	wide.End()

	base := rendertest.NewDevice()
	ext := rendertest.NewExtendedDevice()
	tests := []struct {
		name string
		dev  renderer.Device
		rec  *rendertest.Device
		want []uint32
	}{
		// the arrays of the first frame are still enabled in the second
		{"no vertex arrays", base, base, []uint32{1, 2}},
		// every frame starts from a fresh vertex array
		{"vertex arrays", ext, ext.Device, nil},
	}
	for _, tt := range tests {
		rc := newTestContext(t, tt.dev)
		a := rc.BufferSystem.NewBuffer(nil, 3*int(wide.Stride), wide, metadata.UsageStatic)
		b := rc.BufferSystem.NewBuffer(triangle(), 36, positionFormat(), metadata.UsageStatic)

		rc.CommandSystem.SetVertices(a, 3)
		rc.CommandSystem.Submit(0, 1, false)
		rc.Frame()

		start := tt.rec.Mark()
		rc.CommandSystem.SetVertices(b, 3)
		rc.CommandSystem.Submit(0, 1, false)
		rc.Frame()

		var disabled []uint32
		for _, c := range tt.rec.Since(start) {
			if c.Name == "DisableVertexAttribArray" {
				disabled = append(disabled, c.Args[0].(uint32))
			}
		}
		if !equalWords(disabled, tt.want) {
			t.Fatalf("%s: have disabled %v, want %v", tt.name, disabled, tt.want)
		}
	}
}

func TestIndexedDraw(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	vbo := rc.BufferSystem.NewBuffer(triangle(), 36, positionFormat(), metadata.UsageStatic)
	ibo := rc.BufferSystem.NewBuffer(make([]byte, 6), 6, nil, metadata.UsageStatic)

	rc.CommandSystem.SetState(metadata.StateDefault | metadata.StateDrawLineLoop)
	rc.CommandSystem.SetVertices(vbo, 3)
	rc.CommandSystem.SetIndices(ibo, 3)
	rc.CommandSystem.Submit(0, 1, false)
	rc.Frame()

	d := dev.Find("DrawElementsInstanced")
	if len(d) != 1 {
		t.Fatalf("have %d indexed draws, want 1", len(d))
	}
	if d[0].Args[0].(metadata.PrimitiveMode) != metadata.PrimitiveLineLoop || d[0].Args[1].(int32) != 3 {
		t.Fatalf("have %v", d[0])
	}
	if dev.Count("DrawArraysInstanced") != 0 {
		t.Fatalf("indexed draw also drew arrays")
	}
}

func TestTransientDrawUsesOffset(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	format := positionFormat()

	rc.BufferSystem.NewTransient(format, 1)
	tb := rc.BufferSystem.NewTransient(format, 3)
	copy(tb.Data, triangle())
	rc.CommandSystem.SetTransientBuffer(tb)
	rc.CommandSystem.Submit(0, 1, false)
	rc.Frame()

	up := dev.Find("BufferSubData")
	if len(up) != 1 || up[0].Args[1].(int) != 0 || len(up[0].Args[2].([]byte)) != 48 {
		t.Fatalf("have uploads %v, want one 48 byte flush", up)
	}
	ptr := dev.Find("VertexAttribPointer")
	if len(ptr) != 1 || ptr[0].Args[5].(int) != 12 {
		t.Fatalf("have %v, want offset 12", ptr)
	}
}

func TestIncompleteCanvasIsSkipped(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	dev.Incomplete = true
	canvas := rc.TextureSystem.NewCanvas(64, 64, metadata.FormatRGBA8D16, 0)
	if canvas.Allocated != 0 {
		t.Fatalf("have %d attachments on an incomplete canvas", canvas.Allocated)
	}

	rc.ViewSystem.Configure(2, WithCanvas(canvas, 0), WithClearColor(0xffffffff))
	rc.CommandSystem.Touch(2)
	start := dev.Mark()
	stats := rc.Frame()

	// the touch is counted although nothing reaches the device
	if stats.Draws != 1 {
		t.Fatalf("have %d draws, want 1", stats.Draws)
	}
	calls := dev.Since(start)
	if rendertest.CountIn(calls, "Viewport") != 0 || rendertest.CountIn(calls, "Clear") != 0 {
		t.Fatalf("skipped view touched the device: %v", calls)
	}
	if len(rc.ViewSystem.Get(2).Draws) != 0 {
		t.Fatalf("skipped view not drained")
	}
}

func TestScissor(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)

	rc.ViewSystem.Configure(0, WithScissor(10, 20, 30, 40))
	rc.CommandSystem.Submit(0, 1, false)
	rc.CommandSystem.SetScissor(0, 0, 5, 5)
	rc.CommandSystem.Submit(0, 1, false)
	rc.CommandSystem.Submit(0, 1, false)
	rc.Frame()

	var rects [][4]int32
	for _, c := range dev.Find("Scissor") {
		rects = append(rects, [4]int32{c.Args[0].(int32), c.Args[1].(int32), c.Args[2].(int32), c.Args[3].(int32)})
	}
	want := [][4]int32{
		{10, testHeight - 20 - 40, 30, 40},
		{0, testHeight - 5, 5, 5},
		{10, testHeight - 20 - 40, 30, 40},
	}
	if len(rects) != len(want) {
		t.Fatalf("have %v, want %v", rects, want)
	}
	for i := range want {
		if rects[i] != want[i] {
			t.Fatalf("scissor %d: have %v, want %v", i, rects[i], want[i])
		}
	}
}

func TestCallbackDoesNotResendScissor(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	calls := 0

	// callbacks leave the scissor as they found it, so it is not sent again
	rc.ViewSystem.Configure(0, WithScissor(10, 20, 30, 40))
	rc.CommandSystem.SetCallback(func() { calls++ })
	rc.CommandSystem.Submit(0, 1, false)
	rc.CommandSystem.SetCallback(func() { calls++ })
	rc.CommandSystem.Submit(0, 1, false)
	rc.Frame()

	if calls != 2 {
		t.Fatalf("have %d callbacks, want 2", calls)
	}
	if n := dev.Count("Scissor"); n != 1 {
		t.Fatalf("have %d scissor calls, want 1", n)
	}
}

func TestCanvasViewAndMips(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	canvas := rc.TextureSystem.NewCanvas(256, 256, metadata.FormatRGBA8D24, metadata.TextureGenMips)
	if canvas.Allocated != 2 || !canvas.Mipmaps {
		t.Fatalf("have %+v", canvas)
	}

	rc.ViewSystem.Configure(0, WithCanvas(canvas, 0))
	rc.CommandSystem.Touch(0)
	rc.CommandSystem.Touch(1)
	start := dev.Mark()
	rc.Frame()
	calls := dev.Since(start)

	var fbos []uint32
	for _, c := range calls {
		if c.Name == "BindFramebuffer" {
			fbos = append(fbos, c.Args[0].(uint32))
		}
	}
	if !equalWords(fbos, []uint32{canvas.FBO, 0}) {
		t.Fatalf("have framebuffers %v", fbos)
	}
	if n := rendertest.CountIn(calls, "GenerateMipmap"); n != 1 {
		t.Fatalf("have %d mip regenerations, want 1", n)
	}
}

func TestCubeCanvasFace(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	cube := rc.TextureSystem.NewCubeCanvas(64, metadata.FormatRG11B10F, 0)
	if !cube.Cube || cube.Allocated != 2 || len(cube.Images) != 2 {
		t.Fatalf("have %+v", cube)
	}

	rc.ViewSystem.Configure(5, WithCanvas(cube, 3))
	rc.CommandSystem.Touch(5)
	start := dev.Mark()
	rc.Frame()

	var faces []rendertest.Call
	for _, c := range dev.Since(start) {
		if c.Name == "FramebufferTexture2D" {
			faces = append(faces, c)
		}
	}
	if len(faces) != 2 {
		t.Fatalf("have %v", faces)
	}
	for i, c := range faces {
		if c.Args[1].(metadata.TextureTarget) != metadata.CubeFace(3) || c.Args[2].(uint32) != cube.Images[i] {
			t.Fatalf("have %v", c)
		}
	}
}

func TestTexturesBoundBeforeCallback(t *testing.T) {
	dev := rendertest.NewDevice()
	rc := newTestContext(t, dev)
	tex := rc.TextureSystem.NewTexture(2, 2, make([]byte, 16), metadata.FormatRGBA8, 0)
	sampler := metadata.NewUniform("s_tex", metadata.UniformInt, 1)

	var mark int
	rc.CommandSystem.SetCallback(func() { mark = dev.Mark() })
	rc.CommandSystem.SetTexture(sampler, tex, 1)
	rc.CommandSystem.Submit(0, 1, false)
	start := dev.Mark()
	rc.Frame()

	active := dev.Index("ActiveTexture", start)
	if active < 0 || active > mark {
		t.Fatalf("texture bound at %d, callback at %d", active, mark)
	}
	if dev.Calls[active].Args[0].(uint32) != 1 {
		t.Fatalf("have unit %v, want 1", dev.Calls[active].Args[0])
	}
	bind := dev.Calls[active+1]
	if bind.Name != "BindTexture" || bind.Args[1].(uint32) != tex.Images[0] {
		t.Fatalf("have %v", bind)
	}
}

func TestExtendedDevicePaths(t *testing.T) {
	dev := rendertest.NewExtendedDevice()
	rc := newTestContext(t, dev)
	canvas := rc.TextureSystem.NewCanvas(32, 32, metadata.FormatRGBA8, 0)

	tb := rc.BufferSystem.NewTransient(positionFormat(), 3)
	copy(tb.Data, triangle())
	rc.ViewSystem.Configure(1, WithCanvas(canvas, 0), WithName("offscreen"))
	rc.CommandSystem.Touch(1)
	rc.ViewSystem.Blit(0, 1, 0, 0, 32, 16)
	rc.CommandSystem.SetTransientBuffer(tb)
	rc.CommandSystem.Submit(0, 1, false)
	dev.Pending = []uint32{0x0502}
	stats := rc.Frame()

	if stats.Blits != 1 {
		t.Fatalf("have %d blits, want 1", stats.Blits)
	}
	blits := dev.Find("BlitFramebuffer")
	if len(blits) != 1 {
		t.Fatalf("have %d blits executed, want 1", len(blits))
	}
	if src, dst := blits[0].Args[0].(uint32), blits[0].Args[1].(uint32); src != canvas.FBO || dst != 0 {
		t.Fatalf("have blit %d -> %d", src, dst)
	}
	if r := blits[0].Args[2].([4]int32); r != [4]int32{0, 16, 32, 32} {
		t.Fatalf("have source rect %v", r)
	}

	if dev.Count("MapBufferRange") != 1 || dev.Count("BufferSubData") != 0 {
		t.Fatalf("transient flush did not use the mapping")
	}
	if string(dev.Mapped) != string(triangle()) {
		t.Fatalf("mapped bytes differ from the transient data")
	}
	if dev.Count("CreateVertexArray") != 1 || dev.Count("DeleteVertexArray") != 1 {
		t.Fatalf("vertex array not created and deleted once")
	}

	var labels []string
	for _, c := range dev.Find("PushDebugGroup") {
		labels = append(labels, c.Args[1].(string))
	}
	want := []string{"Update Resources", "View 0", "offscreen (1)"}
	if len(labels) != len(want) {
		t.Fatalf("have groups %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("have groups %v, want %v", labels, want)
		}
	}
	if dev.Count("PushDebugGroup") != dev.Count("PopDebugGroup") {
		t.Fatalf("unbalanced debug groups")
	}
	if len(dev.Pending) != 0 {
		t.Fatalf("device errors not drained")
	}
}

package systems

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/spaghettifunk/tinyfx/engine/renderer"
	"github.com/spaghettifunk/tinyfx/engine/renderer/metadata"
	"github.com/spaghettifunk/tinyfx/engine/renderer/rendertest"
)

const (
	testWidth  = 640
	testHeight = 480
)

func testConfig() *RenderContextConfig {
	return &RenderContextConfig{
		ContextVersion:      43,
		UniformBufferSize:   4096,
		TransientBufferSize: 4096,
	}
}

// newTestContext returns a context driving dev, reset for a 640x480 output.
func newTestContext(t *testing.T, dev renderer.Device) *RenderContext {
	t.Helper()
	rc, err := NewRenderContext(testConfig(), dev)
	if err != nil {
		t.Fatalf("NewRenderContext: %v", err)
	}
	rc.Reset(testWidth, testHeight, metadata.ResetNone)
	return rc
}

func floatBits(v ...float32) []uint32 {
	out := make([]uint32, len(v))
	for i, f := range v {
		out[i] = math.Float32bits(f)
	}
	return out
}

func equalWords(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// positionFormat is three floats per vertex.
func positionFormat() *metadata.VertexFormat {
	f := &metadata.VertexFormat{}
	f.Add(0, 3, false, metadata.ComponentFloat)
	f.End()
	return f
}

func triangle() []byte {
	verts := []float32{
		-1, -1, 0,
		1, -1, 0,
		0, 1, 0,
	}
	out := make([]byte, 4*len(verts))
	for i, v := range verts {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// stateCalls are the device calls driven by draw state bits.
var stateCalls = map[string]bool{
	"DepthMask": true,
	"Enable":    true,
	"Disable":   true,
	"FrontFace": true,
	"BlendFunc": true,
	"ColorMask": true,
}

func countState(calls []rendertest.Call) int {
	n := 0
	for _, c := range calls {
		if stateCalls[c.Name] {
			n++
		}
	}
	return n
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected a panic", name)
		}
	}()
	fn()
}

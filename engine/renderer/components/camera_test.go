package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraViewInvertsPlacement(t *testing.T) {
	c := NewCamera()
	if !c.View().ApproxEqual(mgl32.Ident4()) {
		t.Fatalf("fresh camera view is not identity:\n%v", c.View())
	}

	c.SetPosition(mgl32.Vec3{1, 2, 3})
	c.Yaw(0.5)
	// the camera's own position ends up at the origin in view space
	origin := c.View().Mul4x1(mgl32.Vec4{1, 2, 3, 1})
	if !origin.Vec3().ApproxEqualThreshold(mgl32.Vec3{}, 1e-5) {
		t.Fatalf("have %v", origin)
	}
}

func TestCameraMoveForwardFollowsYaw(t *testing.T) {
	c := NewCamera()
	c.MoveForward(2)
	if !c.Position().ApproxEqualThreshold(mgl32.Vec3{0, 0, -2}, 1e-5) {
		t.Fatalf("have %v", c.Position())
	}

	c.Reset()
	c.Yaw(mgl32.DegToRad(90))
	c.MoveForward(1)
	if !c.Position().ApproxEqualThreshold(mgl32.Vec3{-1, 0, 0}, 1e-5) {
		t.Fatalf("have %v", c.Position())
	}
}

func TestCameraPitchIsClamped(t *testing.T) {
	c := NewCamera()
	c.Pitch(10)
	if c.EulerRotation()[0] != pitchLimit {
		t.Fatalf("have %f, want %f", c.EulerRotation()[0], pitchLimit)
	}
	c.Pitch(-20)
	if c.EulerRotation()[0] != -pitchLimit {
		t.Fatalf("have %f, want %f", c.EulerRotation()[0], -pitchLimit)
	}
}

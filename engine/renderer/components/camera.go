package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tinyfx/engine/math"
)

// 89 degrees, past it the view flips
const pitchLimit float32 = 1.55334306

/**
 * @brief Camera produces the view matrix handed to a view's transform.
 * Position and rotation are private so the matrix is only rebuilt when one
 * of them changed.
 */
type Camera struct {
	position mgl32.Vec3
	/** @brief Euler angles in radians: pitch, yaw, roll. */
	eulerRotation mgl32.Vec3
	isDirty       bool
	viewMatrix    mgl32.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.eulerRotation = mgl32.Vec3{}
	c.position = mgl32.Vec3{}
	c.isDirty = false
	c.viewMatrix = mgl32.Ident4()
}

func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.position = position
	c.isDirty = true
}

func (c *Camera) EulerRotation() mgl32.Vec3 {
	return c.eulerRotation
}

func (c *Camera) SetEulerRotation(rotation mgl32.Vec3) {
	c.eulerRotation = rotation
	c.isDirty = true
}

// world is the camera's placement: translation after rotation.
func (c *Camera) world() mgl32.Mat4 {
	rotation := mgl32.AnglesToQuat(c.eulerRotation[0], c.eulerRotation[1], c.eulerRotation[2], mgl32.XYZ).Mat4()
	return mgl32.Translate3D(c.position[0], c.position[1], c.position[2]).Mul4(rotation)
}

// View returns the inverse of the camera placement.
func (c *Camera) View() mgl32.Mat4 {
	if c.isDirty {
		c.viewMatrix = c.world().Inv()
		c.isDirty = false
	}
	return c.viewMatrix
}

// direction rotates a camera space axis into world space.
func (c *Camera) direction(axis mgl32.Vec3) mgl32.Vec3 {
	return mgl32.AnglesToQuat(c.eulerRotation[0], c.eulerRotation[1], c.eulerRotation[2], mgl32.XYZ).Rotate(axis)
}

func (c *Camera) Forward() mgl32.Vec3 {
	return c.direction(mgl32.Vec3{0, 0, -1})
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.direction(mgl32.Vec3{1, 0, 0})
}

func (c *Camera) move(direction mgl32.Vec3, amount float32) {
	c.position = c.position.Add(direction.Mul(amount))
	c.isDirty = true
}

func (c *Camera) MoveForward(amount float32)  { c.move(c.Forward(), amount) }
func (c *Camera) MoveBackward(amount float32) { c.move(c.Forward(), -amount) }
func (c *Camera) MoveLeft(amount float32)     { c.move(c.Right(), -amount) }
func (c *Camera) MoveRight(amount float32)    { c.move(c.Right(), amount) }
func (c *Camera) MoveUp(amount float32)       { c.move(mgl32.Vec3{0, 1, 0}, amount) }
func (c *Camera) MoveDown(amount float32)     { c.move(mgl32.Vec3{0, 1, 0}, -amount) }

func (c *Camera) Yaw(amount float32) {
	c.eulerRotation[1] += amount
	c.isDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.eulerRotation[0] = math.Clamp(c.eulerRotation[0]+amount, -pitchLimit, pitchLimit)
	c.isDirty = true
}

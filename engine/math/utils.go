package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// UnpackRGBA splits a 0xRRGGBBAA colour into normalized components.
func UnpackRGBA(color uint32) (r, g, b, a float32) {
	r = float32((color>>24)&0xff) / 255.0
	g = float32((color>>16)&0xff) / 255.0
	b = float32((color>>8)&0xff) / 255.0
	a = float32(color&0xff) / 255.0
	return r, g, b, a
}

// PackRGBA is the inverse of UnpackRGBA. Components are clamped to [0, 1].
func PackRGBA(r, g, b, a float32) uint32 {
	c := func(v float32) uint32 {
		return uint32(Clamp(v, 0, 1)*255.0 + 0.5)
	}
	return c(r)<<24 | c(g)<<16 | c(b)<<8 | c(a)
}

// FlipY converts a top-left origin rectangle to the bottom-left origin used by
// the device. The result is clamped so it never goes below zero.
func FlipY(y, h, targetHeight int32) int32 {
	return Clamp(targetHeight-y-h, 0, targetHeight)
}

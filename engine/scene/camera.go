package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	FovY  = math.Pi / 2
	ZNear = 0.1
	ZFar  = 10
)

// Camera is a perspective camera looking at a fixed point. Projection
// depends on the viewport aspect; view on eye/target only.
type Camera struct {
	Eye, Target, Up mgl32.Vec3
	FovY            float32
	Near, Far       float32

	aspect float32
	proj   mgl32.Mat4
	view   mgl32.Mat4
	dirty  bool
}

// NewCamera looks from (2, 2, 2) at the origin.
func NewCamera(width, height int) *Camera {
	c := &Camera{
		Eye:    mgl32.Vec3{2, 2, 2},
		Target: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   FovY,
		Near:   ZNear,
		Far:    ZFar,
	}
	c.SetViewportPixels(width, height)
	return c
}

// SetViewportPixels updates the aspect ratio. A degenerate size (minimized
// window) keeps the previous aspect.
func (c *Camera) SetViewportPixels(w, h int) {
	if w <= 0 || h <= 0 {
		if c.aspect == 0 {
			c.aspect = 1
			c.dirty = true
		}
		return
	}
	c.aspect = float32(w) / float32(h)
	c.dirty = true
}

func (c *Camera) Aspect() float32 { return c.aspect }

func (c *Camera) Projection() mgl32.Mat4 {
	if c.dirty {
		c.Recalculate()
	}
	return c.proj
}

func (c *Camera) View() mgl32.Mat4 {
	if c.dirty {
		c.Recalculate()
	}
	return c.view
}

func (c *Camera) Recalculate() {
	c.proj = mgl32.Perspective(c.FovY, c.aspect, c.Near, c.Far)
	c.view = mgl32.LookAtV(c.Eye, c.Target, c.Up)
	c.dirty = false
}

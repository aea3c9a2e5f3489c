package gfx

import (
	"fmt"
	"log/slog"
)

// Context is the single owned handle to the graphics context. Everything
// that touches the GPU takes it explicitly, so call order is visible at the
// call site. It also tracks which pipeline scope is currently open.
type Context struct {
	dev Device
	log *slog.Logger

	pass    *Pass
	shading *shadingScope
	render  *RenderGate
}

// NewContext wraps a device. The device must be current on the calling thread.
func NewContext(dev Device) *Context {
	return &Context{dev: dev, log: slog.Default()}
}

// SetLogger replaces the logger used for device diagnostics.
func (c *Context) SetLogger(l *slog.Logger) {
	if l != nil {
		c.log = l
	}
}

// drainStale clears device errors left by earlier calls so they are not
// charged to op. They are still logged.
func (c *Context) drainStale(op string) {
	if err := c.dev.Err(); err != nil {
		c.log.Warn("stale device error dropped", "before", op, "err", err)
	}
}

// Device exposes the underlying command surface.
func (c *Context) Device() Device { return c.dev }

// BackBuffer returns the default framebuffer at the given drawable size.
func (c *Context) BackBuffer(width, height int) (Framebuffer, error) {
	if width < 0 || height < 0 {
		return Framebuffer{}, fmt.Errorf("gfx: invalid back buffer size %dx%d", width, height)
	}
	return Framebuffer{id: 0, width: int32(width), height: int32(height), valid: true}, nil
}

// InPass reports whether a pass is open.
func (c *Context) InPass() bool { return c.pass != nil }

// Framebuffer is a presentation target. It is a plain value: a resize
// produces a new one and the old value is dropped.
type Framebuffer struct {
	id            uint32
	width, height int32
	valid         bool
}

// Size returns the drawable size in pixels.
func (f Framebuffer) Size() (int, int) { return int(f.width), int(f.height) }

// Valid reports whether f was obtained from a context.
func (f Framebuffer) Valid() bool { return f.valid }

func (f Framebuffer) String() string {
	return fmt.Sprintf("fb#%d(%dx%d)", f.id, f.width, f.height)
}

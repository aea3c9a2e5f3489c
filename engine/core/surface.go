package core

import (
	"iter"

	"github.com/hubastard/trisurf/engine/gfx"
)

// EventSource yields the events queued since the last call. It never
// blocks waiting for new events.
type EventSource interface {
	Events() iter.Seq[Event]
}

// Surface owns the window and its presentation target.
type Surface interface {
	EventSource
	// BackBuffer returns a target sized to the current drawable area.
	BackBuffer() (gfx.Framebuffer, error)
	SwapBuffers()
}

// Scene is the fixed content the driver renders every frame.
type Scene[U any] struct {
	Program  *gfx.Program[U]
	Tesses   []*gfx.Tess
	Pipeline gfx.PipelineState
	Render   gfx.RenderState

	// Uniforms writes per-frame uniform values while the program is bound.
	Uniforms func(w gfx.UniformWriter, u *U)
	// Resized runs after every target (re)acquisition.
	Resized func(width, height int)
}

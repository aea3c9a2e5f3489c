package core

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hubastard/trisurf/engine/gfx"
	"github.com/hubastard/trisurf/engine/profiler"
)

// State of the frame loop.
type State uint8

const (
	Running State = iota
	ResizePending
	Terminating
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case ResizePending:
		return "resize-pending"
	case Terminating:
		return "terminating"
	default:
		return "unknown"
	}
}

// DriverOptions tunes a FrameDriver.
type DriverOptions struct {
	ExitKey Key // released to quit; KeyUnknown disables it
	Logger  *slog.Logger
}

// FrameDriver runs the frame loop: drain events, reacquire the target after
// a resize, render one pass, present. Everything happens on the calling
// thread, which must own the graphics context.
type FrameDriver[U any] struct {
	ctx     *gfx.Context
	surface Surface
	scene   Scene[U]
	exitKey Key
	log     *slog.Logger
	input   *Input

	state      State
	target     gfx.Framebuffer
	frames     uint64
	reacquires uint64
	err        error
}

// NewFrameDriver acquires the initial target. The driver starts Running.
func NewFrameDriver[U any](ctx *gfx.Context, surface Surface, scene Scene[U], opts DriverOptions) (*FrameDriver[U], error) {
	if scene.Program == nil {
		return nil, errors.New("frame driver: scene has no program")
	}
	d := &FrameDriver[U]{
		ctx:     ctx,
		surface: surface,
		scene:   scene,
		exitKey: opts.ExitKey,
		log:     opts.Logger,
		input:   NewInput(),
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	target, err := surface.BackBuffer()
	if err != nil {
		return nil, fmt.Errorf("acquire back buffer: %w", err)
	}
	d.setTarget(target)
	return d, nil
}

func (d *FrameDriver[U]) State() State { return d.state }

// Target returns the live presentation target.
func (d *FrameDriver[U]) Target() gfx.Framebuffer { return d.target }

// Frames returns the number of presented frames.
func (d *FrameDriver[U]) Frames() uint64 { return d.frames }

// Reacquires returns how many times the target was replaced after a resize.
func (d *FrameDriver[U]) Reacquires() uint64 { return d.reacquires }

// Input returns the key and pointer state seen so far.
func (d *FrameDriver[U]) Input() *Input { return d.input }

// Err returns the error that stopped the loop, if any.
func (d *FrameDriver[U]) Err() error { return d.err }

// Run steps until the loop terminates and returns the fatal error, or nil
// on a clean shutdown.
func (d *FrameDriver[U]) Run() error {
	for d.state != Terminating {
		d.Step()
	}
	d.log.Info("frame loop exit", "frames", d.frames)
	return d.err
}

// Step runs one iteration. Once Terminating, it does nothing.
func (d *FrameDriver[U]) Step() error {
	if d.state == Terminating {
		return d.err
	}
	defer profiler.Start("FrameDriver.Step")()

	d.drainEvents()

	if d.state == ResizePending {
		if err := d.reacquire(); err != nil {
			d.fail(err)
			return d.err
		}
	}
	if d.state == Terminating {
		return nil
	}

	if err := d.renderPass(); err != nil {
		d.fail(fmt.Errorf("render pass: %w", err))
		return d.err
	}
	d.surface.SwapBuffers()
	d.frames++
	return nil
}

func (d *FrameDriver[U]) drainEvents() {
	for ev := range d.surface.Events() {
		d.input.Handle(ev)
		switch e := ev.(type) {
		case EventCloseRequested:
			d.terminate("close requested")
		case EventKey:
			if e.Action != ActionRelease {
				continue
			}
			if e.Key == d.exitKey && d.exitKey != KeyUnknown {
				d.terminate("exit key released")
				continue
			}
			name := e.Name
			if name == "" {
				name = e.Key.String()
			}
			d.log.Info("key released", "key", name, "scancode", e.Scancode)
		case EventResize:
			if d.state == Running {
				d.state = ResizePending
			}
			d.log.Debug("framebuffer resized", "width", e.W, "height", e.H)
		}
	}
}

func (d *FrameDriver[U]) terminate(reason string) {
	if d.state != Terminating {
		d.log.Info("terminating", "reason", reason)
	}
	d.state = Terminating
}

func (d *FrameDriver[U]) fail(err error) {
	d.err = err
	d.state = Terminating
	d.log.Error("frame loop failed", "err", err)
}

// reacquire drops the old target before asking for the new one; two live
// targets for the same drawable are never held.
func (d *FrameDriver[U]) reacquire() error {
	d.target = gfx.Framebuffer{}
	target, err := d.surface.BackBuffer()
	if err != nil {
		return fmt.Errorf("reacquire back buffer: %w", err)
	}
	d.setTarget(target)
	d.reacquires++
	d.state = Running
	w, h := target.Size()
	d.log.Debug("back buffer reacquired", "width", w, "height", h)
	return nil
}

func (d *FrameDriver[U]) setTarget(t gfx.Framebuffer) {
	d.target = t
	if d.scene.Resized != nil {
		w, h := t.Size()
		d.scene.Resized(w, h)
	}
}

// renderPass is open pass > bind program > set uniforms > draw each tess >
// close. Deferred ends close every scope even if a draw panics.
func (d *FrameDriver[U]) renderPass() (err error) {
	defer profiler.Start("FrameDriver.renderPass")()

	pass := d.ctx.BeginPass(d.target, d.scene.Pipeline)
	defer func() {
		if endErr := pass.End(); err == nil {
			err = endErr
		}
	}()

	sh := gfx.Shade(pass, d.scene.Program)
	defer sh.End()
	if d.scene.Uniforms != nil {
		d.scene.Uniforms(sh, sh.Uniforms())
	}

	rg := sh.Render(d.scene.Render)
	defer rg.End()
	for _, t := range d.scene.Tesses {
		rg.Draw(t)
	}
	return nil
}

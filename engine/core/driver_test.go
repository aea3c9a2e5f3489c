package core_test

import (
	"bytes"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"testing"

	"github.com/hubastard/trisurf/engine/core"
	"github.com/hubastard/trisurf/engine/gfx"
	"github.com/hubastard/trisurf/engine/gfx/gfxtest"
	"github.com/hubastard/trisurf/engine/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSurface hands out one queued batch of events per Events call.
type fakeSurface struct {
	ctx      *gfx.Context
	w, h     int
	batches  [][]core.Event
	acquires int
	failNext error
	swaps    int
}

func (s *fakeSurface) push(evs ...core.Event) { s.batches = append(s.batches, evs) }

func (s *fakeSurface) Events() iter.Seq[core.Event] {
	return func(yield func(core.Event) bool) {
		if len(s.batches) == 0 {
			return
		}
		batch := s.batches[0]
		s.batches = s.batches[1:]
		for _, ev := range batch {
			if r, ok := ev.(core.EventResize); ok {
				s.w, s.h = r.W, r.H
			}
			if !yield(ev) {
				return
			}
		}
	}
}

func (s *fakeSurface) BackBuffer() (gfx.Framebuffer, error) {
	s.acquires++
	if err := s.failNext; err != nil {
		s.failNext = nil
		return gfx.Framebuffer{}, err
	}
	return s.ctx.BackBuffer(s.w, s.h)
}

func (s *fakeSurface) SwapBuffers() { s.swaps++ }

type tint struct {
	Time gfx.Uniform[float32]
}

type harness struct {
	rec     *gfxtest.Recorder
	surface *fakeSurface
	driver  *core.FrameDriver[tint]
	sizes   [][2]int
	logs    bytes.Buffer
	frame   float32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{rec: gfxtest.New()}
	h.rec.Uniforms = []gfx.UniformInfo{{Name: "time", Type: gfx.UniformFloat}}
	ctx := gfx.NewContext(h.rec)
	h.surface = &fakeSurface{ctx: ctx, w: 96, h: 54}

	built, err := gfx.CompileProgram[tint](ctx, mesh.VertexSemantics, "vs", "fs")
	require.NoError(t, err)
	tri, err := mesh.NewTriangle(ctx)
	require.NoError(t, err)

	sc := core.Scene[tint]{
		Program:  built.IgnoreWarnings(),
		Tesses:   []*gfx.Tess{tri},
		Pipeline: gfx.DefaultPipelineState().WithClearColor([4]float32{0.8, 1, 0.6, 1}),
		Uniforms: func(w gfx.UniformWriter, u *tint) {
			u.Time.Set(w, h.frame)
		},
		Resized: func(w, ht int) { h.sizes = append(h.sizes, [2]int{w, ht}) },
	}
	h.driver, err = core.NewFrameDriver(ctx, h.surface, sc, core.DriverOptions{
		ExitKey: core.KeyEscape,
		Logger:  slog.New(slog.NewTextHandler(&h.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)
	h.rec.Reset()
	return h
}

func TestStepPresentsOneFrame(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.driver.Step())

	assert.Equal(t, core.Running, h.driver.State())
	assert.Equal(t, uint64(1), h.driver.Frames())
	assert.Equal(t, 1, h.surface.swaps)
	assert.Equal(t, 1, h.rec.Count("DrawArrays(triangles, 0, 3)"))
	assert.Equal(t, 1, h.rec.Count("Uniform1f(0, 0)"))
	assert.Equal(t, [][2]int{{96, 54}}, h.sizes)
}

func TestResizeReacquiresTarget(t *testing.T) {
	h := newHarness(t)
	h.surface.push(core.EventResize{W: 200, H: 100})

	require.NoError(t, h.driver.Step())

	assert.Equal(t, uint64(1), h.driver.Reacquires())
	w, ht := h.driver.Target().Size()
	assert.Equal(t, [2]int{200, 100}, [2]int{w, ht})
	assert.Equal(t, core.Running, h.driver.State())
	assert.Contains(t, h.rec.Calls, "Viewport(0, 0, 200, 100)")
	assert.Equal(t, [][2]int{{96, 54}, {200, 100}}, h.sizes)
	assert.Equal(t, 1, h.surface.swaps)
}

func TestResizesCoalesce(t *testing.T) {
	h := newHarness(t)
	h.surface.push(
		core.EventResize{W: 100, H: 100},
		core.EventResize{W: 150, H: 120},
		core.EventResize{W: 300, H: 200},
	)

	require.NoError(t, h.driver.Step())

	assert.Equal(t, 2, h.surface.acquires)
	assert.Equal(t, uint64(1), h.driver.Reacquires())
	assert.Contains(t, h.rec.Calls, "Viewport(0, 0, 300, 200)")
	assert.Equal(t, 1, h.rec.Count("Viewport"))
}

func TestZeroSizeTargetStillRenders(t *testing.T) {
	h := newHarness(t)
	h.surface.push(core.EventResize{W: 0, H: 0})

	require.NoError(t, h.driver.Step())
	assert.Contains(t, h.rec.Calls, "Viewport(0, 0, 0, 0)")
	assert.Equal(t, 1, h.surface.swaps)
}

func TestCloseStopsBeforeDrawing(t *testing.T) {
	h := newHarness(t)
	h.surface.push(core.EventCloseRequested{}, core.EventResize{W: 10, H: 10})

	require.NoError(t, h.driver.Step())

	assert.Equal(t, core.Terminating, h.driver.State())
	assert.Empty(t, h.rec.Calls)
	assert.Zero(t, h.surface.swaps)
	assert.Zero(t, h.driver.Reacquires())

	// Termination is final.
	h.surface.push(core.EventResize{W: 20, H: 20})
	require.NoError(t, h.driver.Step())
	assert.Equal(t, core.Terminating, h.driver.State())
	assert.Empty(t, h.rec.Calls)
}

func TestExitKeyOnRelease(t *testing.T) {
	h := newHarness(t)
	h.surface.push(
		core.EventKey{Key: core.KeyEscape, Scancode: 9, Action: core.ActionPress},
		core.EventKey{Key: core.KeyW, Scancode: 25, Action: core.ActionPress},
	)
	require.NoError(t, h.driver.Step())
	assert.Equal(t, core.Running, h.driver.State())
	assert.True(t, h.driver.Input().IsKeyDown(core.KeyEscape))

	h.surface.push(core.EventKey{Key: core.KeyW, Scancode: 25, Action: core.ActionRelease})
	require.NoError(t, h.driver.Step())
	assert.Equal(t, core.Running, h.driver.State())
	assert.Contains(t, h.logs.String(), "key released")
	assert.Contains(t, h.logs.String(), "key=w scancode=25")
	assert.False(t, h.driver.Input().IsKeyDown(core.KeyW))

	h.surface.push(core.EventKey{Key: core.KeyEscape, Scancode: 9, Action: core.ActionRelease})
	require.NoError(t, h.driver.Step())
	assert.Equal(t, core.Terminating, h.driver.State())
	assert.Equal(t, 2, h.surface.swaps)
}

func TestKeyEchoUsesPlatformName(t *testing.T) {
	h := newHarness(t)
	h.surface.push(core.EventKey{Key: core.KeyUnknown, Name: "j", Scancode: 44, Action: core.ActionRelease})

	require.NoError(t, h.driver.Step())
	assert.Contains(t, h.logs.String(), "key=j scancode=44")
	assert.NotContains(t, h.logs.String(), "key=unknown")
}

func TestPassFailureIsNotPresented(t *testing.T) {
	h := newHarness(t)
	h.rec.FailDraw = 2

	require.NoError(t, h.driver.Step())
	err := h.driver.Step()

	var pe *gfx.PassError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, core.Terminating, h.driver.State())
	assert.Equal(t, 1, h.surface.swaps)
	assert.Equal(t, uint64(1), h.driver.Frames())
	assert.Equal(t, err, h.driver.Err())
	// Both frames closed every scope.
	assert.Equal(t, 2, h.rec.Count("UseProgram(0)"))
}

func TestReacquireFailureIsFatal(t *testing.T) {
	h := newHarness(t)
	lost := errors.New("surface lost")
	h.surface.failNext = lost
	h.surface.push(core.EventResize{W: 64, H: 64})

	err := h.driver.Step()

	require.ErrorIs(t, err, lost)
	assert.ErrorContains(t, err, "reacquire back buffer")
	assert.Equal(t, core.Terminating, h.driver.State())
	assert.Zero(t, h.rec.Draws())
	assert.Zero(t, h.surface.swaps)
	assert.False(t, h.driver.Target().Valid())
}

func TestFramesAreDeterministic(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.driver.Step())
	first := slices.Clone(h.rec.Calls)
	h.rec.Reset()
	require.NoError(t, h.driver.Step())

	assert.Equal(t, first, h.rec.Calls)
}

func TestRunCleanExit(t *testing.T) {
	h := newHarness(t)
	h.surface.push()
	h.surface.push()
	h.surface.push(core.EventCloseRequested{})

	require.NoError(t, h.driver.Run())
	assert.Equal(t, uint64(2), h.driver.Frames())
	assert.Contains(t, h.logs.String(), "frame loop exit")
}

func TestNewFrameDriverErrors(t *testing.T) {
	rec := gfxtest.New()
	ctx := gfx.NewContext(rec)
	surface := &fakeSurface{ctx: ctx, w: 1, h: 1}

	_, err := core.NewFrameDriver(ctx, surface, core.Scene[tint]{}, core.DriverOptions{})
	assert.Error(t, err)

	built, err := gfx.CompileProgram[tint](ctx, mesh.VertexSemantics, "vs", "fs")
	require.NoError(t, err)
	surface.failNext = errors.New("no window")
	_, err = core.NewFrameDriver(ctx, surface, core.Scene[tint]{Program: built.Program}, core.DriverOptions{})
	assert.ErrorContains(t, err, "acquire back buffer: no window")
}

// Package gfxtest provides a recording gfx.Device for tests.
package gfxtest

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/trisurf/engine/gfx"
)

// ShaderFunc inspects shader source and returns what the fake compiler
// reports for it.
type ShaderFunc func(stage gfx.Stage, src string) (log string, ok bool)

// Recorder implements gfx.Device by appending one line per call to Calls.
// Program introspection is driven by the Uniforms and Attributes tables.
type Recorder struct {
	Calls []string

	// Compile decides compile results; nil compiles everything cleanly.
	Compile ShaderFunc

	// LinkLog and LinkFail shape the link result.
	LinkLog  string
	LinkFail bool

	// Uniforms are the active uniforms of every linked program.
	Uniforms []gfx.UniformInfo

	// Attributes maps active attribute names to locations; nil means every
	// bound attribute is active at its bound location.
	Attributes map[string]int32

	// FailDraw makes the Nth draw call (1-based) raise a device error.
	FailDraw int

	// FailBuffer makes the Nth buffer upload (1-based) run out of memory.
	FailBuffer int

	next    uint32
	draws   int
	buffers int
	pending error
	bound   map[uint32]map[string]int32
	live    map[uint32]string
}

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		bound: make(map[uint32]map[string]int32),
		live:  make(map[uint32]string),
	}
}

var _ gfx.Device = (*Recorder)(nil)

func (r *Recorder) rec(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

func (r *Recorder) alloc(kind string) uint32 {
	r.next++
	r.live[r.next] = kind
	return r.next
}

func (r *Recorder) free(id uint32) { delete(r.live, id) }

// Reset forgets recorded calls but keeps object state.
func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }

// Count returns how many recorded calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Index returns the position of the first call starting with prefix at or
// after from, or -1.
func (r *Recorder) Index(prefix string, from int) int {
	for i := from; i < len(r.Calls); i++ {
		if strings.HasPrefix(r.Calls[i], prefix) {
			return i
		}
	}
	return -1
}

// Live returns the number of objects not yet deleted.
func (r *Recorder) Live() int { return len(r.live) }

// Draws returns the number of draw calls seen.
func (r *Recorder) Draws() int { return r.draws }

func (r *Recorder) CreateVertexArray() uint32 {
	id := r.alloc("vao")
	r.rec("CreateVertexArray() = %d", id)
	return id
}

func (r *Recorder) BindVertexArray(vao uint32) { r.rec("BindVertexArray(%d)", vao) }

func (r *Recorder) DeleteVertexArray(vao uint32) {
	r.free(vao)
	r.rec("DeleteVertexArray(%d)", vao)
}

func (r *Recorder) CreateBuffer(kind gfx.BufferKind, data []byte) uint32 {
	id := r.alloc("buffer")
	name := "vertex"
	if kind == gfx.IndexBuffer {
		name = "index"
	}
	r.rec("CreateBuffer(%s, %d bytes) = %d", name, len(data), id)
	r.buffers++
	if r.FailBuffer > 0 && r.buffers == r.FailBuffer {
		r.Raise(errors.New("GL_OUT_OF_MEMORY"))
	}
	return id
}

func (r *Recorder) DeleteBuffer(buf uint32) {
	r.free(buf)
	r.rec("DeleteBuffer(%d)", buf)
}

func (r *Recorder) VertexAttribPointer(index uint32, components int32, scalar gfx.ScalarType, normalized bool, stride int32, offset int) {
	r.rec("VertexAttribPointer(%d, %d, %s, %t, %d, %d)", index, components, scalar, normalized, stride, offset)
}

func (r *Recorder) CompileShader(stage gfx.Stage, src string) (uint32, string, bool) {
	log, ok := "", true
	if r.Compile != nil {
		log, ok = r.Compile(stage, src)
	}
	if !ok {
		r.rec("CompileShader(%s) failed", stage)
		return 0, log, false
	}
	id := r.alloc("shader")
	r.rec("CompileShader(%s) = %d", stage, id)
	return id, log, true
}

func (r *Recorder) DeleteShader(shader uint32) {
	r.free(shader)
	r.rec("DeleteShader(%d)", shader)
}

func (r *Recorder) CreateProgram(shaders ...uint32) uint32 {
	id := r.alloc("program")
	r.bound[id] = make(map[string]int32)
	r.rec("CreateProgram(%v) = %d", shaders, id)
	return id
}

func (r *Recorder) BindAttribLocation(program, index uint32, name string) {
	r.bound[program][name] = int32(index)
	r.rec("BindAttribLocation(%d, %d, %s)", program, index, name)
}

func (r *Recorder) LinkProgram(program uint32) (string, bool) {
	r.rec("LinkProgram(%d)", program)
	return r.LinkLog, !r.LinkFail
}

func (r *Recorder) DeleteProgram(program uint32) {
	r.free(program)
	delete(r.bound, program)
	r.rec("DeleteProgram(%d)", program)
}

func (r *Recorder) AttribLocation(program uint32, name string) int32 {
	if r.Attributes != nil {
		if loc, ok := r.Attributes[name]; ok {
			return loc
		}
		return -1
	}
	if loc, ok := r.bound[program][name]; ok {
		return loc
	}
	return -1
}

func (r *Recorder) ActiveUniforms(uint32) []gfx.UniformInfo {
	return slices.Clone(r.Uniforms)
}

func (r *Recorder) UniformLocation(_ uint32, name string) int32 {
	for i, u := range r.Uniforms {
		if u.Name == name {
			return int32(i)
		}
	}
	return -1
}

func (r *Recorder) UseProgram(program uint32) { r.rec("UseProgram(%d)", program) }

func (r *Recorder) Uniform1f(loc int32, v float32) { r.rec("Uniform1f(%d, %g)", loc, v) }

func (r *Recorder) Uniform1i(loc int32, v int32) { r.rec("Uniform1i(%d, %d)", loc, v) }

func (r *Recorder) Uniform2f(loc int32, v mgl32.Vec2) { r.rec("Uniform2f(%d, %v)", loc, v) }

func (r *Recorder) Uniform3f(loc int32, v mgl32.Vec3) { r.rec("Uniform3f(%d, %v)", loc, v) }

func (r *Recorder) Uniform4f(loc int32, v mgl32.Vec4) { r.rec("Uniform4f(%d, %v)", loc, v) }

func (r *Recorder) UniformMatrix4f(loc int32, m mgl32.Mat4) { r.rec("UniformMatrix4f(%d, %v)", loc, m) }

func (r *Recorder) BindFramebuffer(fb uint32) { r.rec("BindFramebuffer(%d)", fb) }

func (r *Recorder) Viewport(x, y, w, h int32) { r.rec("Viewport(%d, %d, %d, %d)", x, y, w, h) }

func (r *Recorder) ClearColor(red, g, b, a float32) { r.rec("ClearColor(%g, %g, %g, %g)", red, g, b, a) }

func (r *Recorder) Clear(color, depth bool) { r.rec("Clear(%t, %t)", color, depth) }

func (r *Recorder) SetDepthTest(fn gfx.DepthFunc) { r.rec("SetDepthTest(%d)", fn) }

func (r *Recorder) SetBlending(mode gfx.Blending) { r.rec("SetBlending(%d)", mode) }

func (r *Recorder) DrawArrays(mode gfx.Mode, first, count int32) {
	r.draw()
	r.rec("DrawArrays(%s, %d, %d)", mode, first, count)
}

func (r *Recorder) DrawElements(mode gfx.Mode, count int32, index gfx.IndexType, offset int) {
	r.draw()
	r.rec("DrawElements(%s, %d, %d, %d)", mode, count, index.Size(), offset)
}

func (r *Recorder) draw() {
	r.draws++
	if r.FailDraw > 0 && r.draws == r.FailDraw {
		r.Raise(errors.New("GL_INVALID_OPERATION"))
	}
}

// Raise queues err as the pending device error unless one is pending.
func (r *Recorder) Raise(err error) {
	if r.pending == nil {
		r.pending = err
	}
}

func (r *Recorder) Err() error {
	err := r.pending
	r.pending = nil
	return err
}

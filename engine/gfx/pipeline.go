package gfx

// PipelineState configures the start of a pass.
type PipelineState struct {
	Clear      bool // clear the color buffer to ClearColor
	ClearColor [4]float32
	ClearDepth bool
}

// DefaultPipelineState clears color (opaque black) and depth.
func DefaultPipelineState() PipelineState {
	return PipelineState{Clear: true, ClearColor: [4]float32{0, 0, 0, 1}, ClearDepth: true}
}

// WithClearColor returns a copy of s clearing to c.
func (s PipelineState) WithClearColor(c [4]float32) PipelineState {
	s.Clear = true
	s.ClearColor = c
	return s
}

// DepthFunc selects the depth test. The zero value is the default test.
type DepthFunc uint8

const (
	DepthLess DepthFunc = iota
	DepthLessOrEqual
	DepthAlways
	DepthOff
)

// Blending selects the blend equation. The zero value disables blending.
type Blending uint8

const (
	BlendNone Blending = iota
	BlendAlpha
	BlendAdditive
)

// RenderState configures draws inside a render scope. The zero value means
// default depth test and no blending.
type RenderState struct {
	DepthTest DepthFunc
	Blending  Blending
}

// Pass is an open rendering pass against one framebuffer. Scopes nest as
// Pass > Shading > RenderGate; ending an outer scope ends the inner ones.
type Pass struct {
	ctx    *Context
	target Framebuffer
	draws  int
	ended  bool
	err    error
}

// BeginPass binds target, sets the viewport to its full size and applies
// the clear policy. Only one pass may be open.
func (c *Context) BeginPass(target Framebuffer, st PipelineState) *Pass {
	if c.pass != nil {
		panic("gfx: pass already open")
	}
	if !target.valid {
		panic("gfx: pass on an unacquired framebuffer")
	}
	// Errors raised before the pass are not its failure.
	c.drainStale("pass")

	p := &Pass{ctx: c, target: target}
	c.pass = p

	c.dev.BindFramebuffer(target.id)
	c.dev.Viewport(0, 0, target.width, target.height)
	if st.Clear {
		cc := st.ClearColor
		c.dev.ClearColor(cc[0], cc[1], cc[2], cc[3])
	}
	if st.Clear || st.ClearDepth {
		c.dev.Clear(st.Clear, st.ClearDepth)
	}
	return p
}

// Target returns the framebuffer the pass renders to.
func (p *Pass) Target() Framebuffer { return p.target }

// Draws returns the number of draw calls submitted so far.
func (p *Pass) Draws() int { return p.draws }

// End closes the pass and reports any device error raised while it was
// open. A failed pass must not be presented. Calling End again returns the
// same result.
func (p *Pass) End() error {
	if p.ended {
		return p.err
	}
	c := p.ctx
	if c.shading != nil {
		c.shading.End()
	}
	p.ended = true
	c.pass = nil
	if err := c.dev.Err(); err != nil {
		p.err = &PassError{Target: p.target, Err: err}
	}
	return p.err
}

// UniformWriter is satisfied by an open shading scope.
type UniformWriter interface {
	scope() *shadingScope
}

type shadingScope struct {
	ctx     *Context
	pass    *Pass
	program uint32
	sem     *Semantics
	ended   bool
}

func (s *shadingScope) scope() *shadingScope { return s }

func (s *shadingScope) mustBeOpen(op string) {
	if s.ended || s.ctx.shading != s {
		panic("gfx: " + op + " outside an active shading scope")
	}
}

// Render opens a render scope with the given state.
func (s *shadingScope) Render(st RenderState) *RenderGate {
	s.mustBeOpen("render")
	if s.ctx.render != nil {
		panic("gfx: render scope already open")
	}
	s.ctx.dev.SetDepthTest(st.DepthTest)
	s.ctx.dev.SetBlending(st.Blending)
	r := &RenderGate{shading: s}
	s.ctx.render = r
	return r
}

// End unbinds the program. Safe to call twice.
func (s *shadingScope) End() {
	if s.ended {
		return
	}
	if s.ctx.render != nil {
		s.ctx.render.End()
	}
	s.ended = true
	s.ctx.shading = nil
	s.ctx.dev.UseProgram(0)
}

// Shading is a bound program inside a pass. Uniform writes are only valid
// while it is open.
type Shading[U any] struct {
	*shadingScope
	prog *Program[U]
}

// Shade binds prog inside pass p.
func Shade[U any](p *Pass, prog *Program[U]) *Shading[U] {
	c := p.ctx
	if p.ended || c.pass != p {
		panic("gfx: shade outside an active pass")
	}
	if c.shading != nil {
		panic("gfx: a program is already bound")
	}
	if prog.destroyed {
		panic("gfx: shade with a destroyed program")
	}
	s := &Shading[U]{
		shadingScope: &shadingScope{ctx: c, pass: p, program: prog.id, sem: prog.sem},
		prog:         prog,
	}
	c.shading = s.shadingScope
	c.dev.UseProgram(prog.id)
	return s
}

// Uniforms returns the bound program's uniform interface.
func (s *Shading[U]) Uniforms() *U { return s.prog.iface }

// RenderGate issues draws with a fixed render state.
type RenderGate struct {
	shading *shadingScope
	ended   bool
}

// Draw renders the whole tess.
func (r *RenderGate) Draw(t *Tess) { r.DrawView(t.View()) }

// DrawView renders a range of a tess. Drawing outside an open render scope,
// or geometry built against other semantics than the bound program, panics.
func (r *RenderGate) DrawView(v TessView) {
	s := r.shading
	if r.ended || s.ctx.render != r {
		panic("gfx: draw outside an active render scope")
	}
	t := v.tess
	if t == nil || t.destroyed {
		panic("gfx: draw of a destroyed tess")
	}
	if t.sem != s.sem {
		panic("gfx: tess and program use different vertex semantics")
	}
	v.draw(s.ctx.dev)
	s.pass.draws++
}

// End closes the render scope. Safe to call twice.
func (r *RenderGate) End() {
	if r.ended {
		return
	}
	r.ended = true
	r.shading.ctx.render = nil
}

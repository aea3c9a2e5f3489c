package gfx

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformValue lists the Go types a uniform can carry.
type UniformValue interface {
	float32 | int32 | mgl32.Vec2 | mgl32.Vec3 | mgl32.Vec4 | mgl32.Mat4
}

// Uniform is a typed slot of a program's uniform interface. Its location is
// resolved once when the program is compiled; Set is an indexed upload.
//
// Declare uniforms as exported fields of an interface struct:
//
//	type Interface struct {
//		Projection gfx.Uniform[mgl32.Mat4] `uniform:"projection,unbound"`
//	}
type Uniform[T UniformValue] struct {
	name    string
	program uint32
	loc     int32
	unbound bool
}

// Name returns the shader-side name.
func (u *Uniform[T]) Name() string { return u.name }

// Active reports whether the linked program uses the uniform.
func (u *Uniform[T]) Active() bool { return u.loc >= 0 }

// Set uploads v. It must be called while the owning program is bound. A
// uniform the program does not use is silently skipped.
func (u *Uniform[T]) Set(w UniformWriter, v T) {
	s := w.scope()
	s.mustBeOpen("set uniform " + u.name)
	if s.program != u.program {
		panic(fmt.Sprintf("gfx: uniform %q set while another program is bound", u.name))
	}
	if u.loc < 0 {
		return
	}
	dev := s.ctx.dev
	switch x := any(v).(type) {
	case float32:
		dev.Uniform1f(u.loc, x)
	case int32:
		dev.Uniform1i(u.loc, x)
	case mgl32.Vec2:
		dev.Uniform2f(u.loc, x)
	case mgl32.Vec3:
		dev.Uniform3f(u.loc, x)
	case mgl32.Vec4:
		dev.Uniform4f(u.loc, x)
	case mgl32.Mat4:
		dev.UniformMatrix4f(u.loc, x)
	}
}

func (u *Uniform[T]) resolve(program uint32, name string, loc int32, unbound bool) {
	u.program, u.name, u.loc, u.unbound = program, name, loc, unbound
}

func (u *Uniform[T]) declaredType() UniformType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return UniformFloat
	case int32:
		return UniformInt
	case mgl32.Vec2:
		return UniformVec2
	case mgl32.Vec3:
		return UniformVec3
	case mgl32.Vec4:
		return UniformVec4
	case mgl32.Mat4:
		return UniformMat4
	}
	return UniformUnknown
}

type uniformSlot interface {
	resolve(program uint32, name string, loc int32, unbound bool)
	declaredType() UniformType
}

// WarningKind classifies non-fatal program diagnostics.
type WarningKind uint8

const (
	WarnCompilerLog WarningKind = iota + 1
	WarnInactiveUniform
	WarnInactiveAttribute
)

// ProgramWarning is a diagnostic that does not stop the build.
type ProgramWarning struct {
	Kind  WarningKind
	Stage Stage
	Name  string
	Log   string
}

func (w ProgramWarning) String() string {
	switch w.Kind {
	case WarnCompilerLog:
		return fmt.Sprintf("%s stage: %s", w.Stage, w.Log)
	case WarnInactiveUniform:
		return fmt.Sprintf("uniform %q is not used by the program", w.Name)
	case WarnInactiveAttribute:
		return fmt.Sprintf("vertex attribute %q is not used by the program", w.Name)
	default:
		return "unknown warning"
	}
}

// BuiltProgram is a compiled program together with its warnings.
type BuiltProgram[U any] struct {
	Program  *Program[U]
	Warnings []ProgramWarning
}

// IgnoreWarnings drops the warnings and returns the program.
func (b *BuiltProgram[U]) IgnoreWarnings() *Program[U] { return b.Program }

// Program is a linked shader program with uniform interface U.
type Program[U any] struct {
	ctx       *Context
	id        uint32
	sem       *Semantics
	iface     *U
	destroyed bool
}

// Interface returns the resolved uniform interface.
func (p *Program[U]) Interface() *U { return p.iface }

// Semantics returns the vertex semantics the program was linked against.
func (p *Program[U]) Semantics() *Semantics { return p.sem }

// Destroy deletes the program. Safe to call twice.
func (p *Program[U]) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.ctx.dev.DeleteProgram(p.id)
}

// CompileProgram compiles and links a vertex/fragment pair, binds every
// semantic to its slot and resolves uniform interface U.
func CompileProgram[U any](ctx *Context, sem *Semantics, vertexSrc, fragmentSrc string) (*BuiltProgram[U], error) {
	dev := ctx.dev
	var warnings []ProgramWarning
	ctx.drainStale("program compile")

	vs, log, ok := dev.CompileShader(StageVertex, vertexSrc)
	if !ok {
		return nil, &StageError{Stage: StageVertex, Log: log}
	}
	warnings = appendLog(warnings, StageVertex, log)

	fs, log, ok := dev.CompileShader(StageFragment, fragmentSrc)
	if !ok {
		dev.DeleteShader(vs)
		return nil, &StageError{Stage: StageFragment, Log: log}
	}
	warnings = appendLog(warnings, StageFragment, log)

	prog := dev.CreateProgram(vs, fs)
	for _, a := range sem.attrs {
		dev.BindAttribLocation(prog, a.Index, a.Name)
	}
	log, ok = dev.LinkProgram(prog)
	dev.DeleteShader(vs)
	dev.DeleteShader(fs)
	if !ok {
		dev.DeleteProgram(prog)
		return nil, &StageError{Stage: StageLink, Log: log}
	}
	warnings = appendLog(warnings, StageLink, log)
	if err := dev.Err(); err != nil {
		dev.DeleteProgram(prog)
		return nil, &DeviceError{Op: "program link", Err: err}
	}

	for _, a := range sem.attrs {
		switch loc := dev.AttribLocation(prog, a.Name); {
		case loc < 0:
			warnings = append(warnings, ProgramWarning{Kind: WarnInactiveAttribute, Stage: StageLink, Name: a.Name})
		case uint32(loc) != a.Index:
			dev.DeleteProgram(prog)
			return nil, &StageError{
				Stage: StageLink,
				Log:   fmt.Sprintf("attribute %q is at location %d, semantics declare %d", a.Name, loc, a.Index),
			}
		}
	}

	iface, uw, err := resolveInterface[U](dev, prog)
	if err != nil {
		dev.DeleteProgram(prog)
		return nil, err
	}
	warnings = append(warnings, uw...)
	if err := dev.Err(); err != nil {
		dev.DeleteProgram(prog)
		return nil, &DeviceError{Op: "uniform lookup", Err: err}
	}

	return &BuiltProgram[U]{
		Program:  &Program[U]{ctx: ctx, id: prog, sem: sem, iface: iface},
		Warnings: warnings,
	}, nil
}

func appendLog(ws []ProgramWarning, stage Stage, log string) []ProgramWarning {
	log = strings.TrimSpace(strings.TrimRight(log, "\x00"))
	if log == "" {
		return ws
	}
	return append(ws, ProgramWarning{Kind: WarnCompilerLog, Stage: stage, Log: log})
}

// resolveInterface walks the exported Uniform fields of U and binds each to
// its location in the linked program.
func resolveInterface[U any](dev Device, prog uint32) (*U, []ProgramWarning, error) {
	iface := new(U)
	rv := reflect.ValueOf(iface).Elem()
	if rv.Kind() != reflect.Struct {
		return nil, nil, &UniformError{Kind: BadInterface, Field: rv.Type().String(), Msg: "uniform interface must be a struct"}
	}

	active := make(map[string]UniformType)
	for _, info := range dev.ActiveUniforms(prog) {
		active[info.Name] = info.Type
	}

	var warnings []ProgramWarning
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag, tagged := f.Tag.Lookup("uniform")
		if tag == "-" {
			continue
		}
		if !f.IsExported() {
			if tagged {
				return nil, nil, &UniformError{Kind: BadInterface, Field: f.Name, Msg: "field is unexported"}
			}
			continue
		}
		slot, ok := rv.Field(i).Addr().Interface().(uniformSlot)
		if !ok {
			if tagged {
				return nil, nil, &UniformError{Kind: BadInterface, Field: f.Name, Msg: "field is not a gfx.Uniform"}
			}
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = lowerFirst(f.Name)
		}
		unbound := opts == "unbound"

		loc := int32(-1)
		if got, ok := active[name]; ok {
			want := slot.declaredType()
			if got != want {
				return nil, nil, &UniformError{Kind: TypeMismatch, Name: name, Field: f.Name, Want: want, Got: got}
			}
			loc = dev.UniformLocation(prog, name)
		}
		if loc < 0 && !unbound {
			warnings = append(warnings, ProgramWarning{Kind: WarnInactiveUniform, Stage: StageLink, Name: name})
		}
		slot.resolve(prog, name, loc, unbound)
	}
	return iface, warnings, nil
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

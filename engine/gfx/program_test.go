package gfx_test

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/trisurf/engine/gfx"
	"github.com/hubastard/trisurf/engine/gfx/gfxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cameraUniforms struct {
	Projection gfx.Uniform[mgl32.Mat4] `uniform:"projection,unbound"`
	View       gfx.Uniform[mgl32.Mat4] `uniform:"view,unbound"`
}

type timeUniforms struct {
	Time  gfx.Uniform[float32]
	Tint  gfx.Uniform[mgl32.Vec4] `uniform:"u_tint"`
	Debug bool                    `uniform:"-"`
	notes string
}

type badField struct {
	Scale float32 `uniform:"scale"`
}

type hiddenUniform struct {
	scale gfx.Uniform[float32] `uniform:"scale"`
}

func failStage(stage gfx.Stage, log string) gfxtest.ShaderFunc {
	return func(s gfx.Stage, _ string) (string, bool) {
		if s == stage {
			return log, false
		}
		return "", true
	}
}

func TestCompileVertexFailure(t *testing.T) {
	rec, ctx := newContext()
	rec.Compile = failStage(gfx.StageVertex, "0:1: syntax error")

	_, err := gfx.CompileProgram[noUniforms](ctx, testSemantics, "vs", "fs")

	var se *gfx.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, gfx.StageVertex, se.Stage)
	assert.Contains(t, err.Error(), "syntax error")
	assert.Zero(t, rec.Count("CreateProgram"))
	assert.Zero(t, rec.Live())
}

func TestCompileFragmentFailure(t *testing.T) {
	rec, ctx := newContext()
	rec.Compile = failStage(gfx.StageFragment, "0:3: undeclared identifier")

	_, err := gfx.CompileProgram[noUniforms](ctx, testSemantics, "vs", "fs")

	var se *gfx.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, gfx.StageFragment, se.Stage)
	assert.Equal(t, 1, rec.Count("DeleteShader"))
	assert.Zero(t, rec.Live())
}

func TestLinkFailure(t *testing.T) {
	rec, ctx := newContext()
	rec.LinkFail = true
	rec.LinkLog = "varying mismatch"

	_, err := gfx.CompileProgram[noUniforms](ctx, testSemantics, "vs", "fs")

	var se *gfx.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, gfx.StageLink, se.Stage)
	assert.Equal(t, "varying mismatch", se.Log)
	assert.Zero(t, rec.Live())
}

func TestCompileBindsSemantics(t *testing.T) {
	rec, ctx := newContext()
	compile[noUniforms](t, ctx)

	link := rec.Index("LinkProgram", 0)
	require.Positive(t, link)
	assert.Less(t, rec.Index("BindAttribLocation(3, 0, position)", 0), link)
	assert.Less(t, rec.Index("BindAttribLocation(3, 1, color)", 0), link)
	// Shaders are released once linked.
	assert.Equal(t, 2, rec.Count("DeleteShader"))
	assert.Equal(t, 1, rec.Live())
}

func TestWarnings(t *testing.T) {
	rec, ctx := newContext()
	rec.Compile = func(s gfx.Stage, _ string) (string, bool) {
		if s == gfx.StageVertex {
			return "warning: implicit conversion\x00", true
		}
		return "", true
	}
	rec.Attributes = map[string]int32{"position": 0}

	built, err := gfx.CompileProgram[timeUniforms](ctx, testSemantics, "vs", "fs")
	require.NoError(t, err)

	var kinds []gfx.WarningKind
	for _, w := range built.Warnings {
		kinds = append(kinds, w.Kind)
	}
	assert.ElementsMatch(t, []gfx.WarningKind{
		gfx.WarnCompilerLog,
		gfx.WarnInactiveAttribute,
		gfx.WarnInactiveUniform,
		gfx.WarnInactiveUniform,
	}, kinds)
	assert.Equal(t, "vertex stage: warning: implicit conversion", built.Warnings[0].String())

	prog := built.IgnoreWarnings()
	assert.Same(t, built.Program, prog)
	assert.Equal(t, "time", prog.Interface().Time.Name())
	assert.Equal(t, "u_tint", prog.Interface().Tint.Name())
}

func TestUnboundUniformIsSilentNoOp(t *testing.T) {
	rec, ctx := newContext()
	built, err := gfx.CompileProgram[cameraUniforms](ctx, testSemantics, "vs", "fs")
	require.NoError(t, err)
	assert.Empty(t, built.Warnings)

	prog := built.IgnoreWarnings()
	assert.False(t, prog.Interface().Projection.Active())

	pass := ctx.BeginPass(backBuffer(t, ctx, 4, 3), gfx.PipelineState{})
	sh := gfx.Shade(pass, prog)
	sh.Uniforms().Projection.Set(sh, mgl32.Ident4())
	sh.Uniforms().View.Set(sh, mgl32.Ident4())
	sh.End()
	require.NoError(t, pass.End())

	assert.Zero(t, rec.Count("Uniform"))
}

func TestUniformUpload(t *testing.T) {
	rec, ctx := newContext()
	rec.Uniforms = []gfx.UniformInfo{
		{Name: "u_tint", Type: gfx.UniformVec4},
		{Name: "time", Type: gfx.UniformFloat},
	}
	prog := compile[timeUniforms](t, ctx)
	u := prog.Interface()
	require.True(t, u.Time.Active())

	pass := ctx.BeginPass(backBuffer(t, ctx, 4, 3), gfx.PipelineState{})
	sh := gfx.Shade(pass, prog)
	sh.Uniforms().Time.Set(sh, 1.5)
	sh.Uniforms().Tint.Set(sh, mgl32.Vec4{1, 0, 0, 1})
	sh.End()
	require.NoError(t, pass.End())

	assert.Equal(t, 1, rec.Count("Uniform1f(1, 1.5)"))
	assert.Equal(t, 1, rec.Count("Uniform4f(0, [1 0 0 1])"))
}

func TestUniformTypeMismatch(t *testing.T) {
	rec, ctx := newContext()
	rec.Uniforms = []gfx.UniformInfo{{Name: "projection", Type: gfx.UniformVec4}}

	_, err := gfx.CompileProgram[cameraUniforms](ctx, testSemantics, "vs", "fs")

	require.ErrorIs(t, err, gfx.ErrTypeMismatch)
	var ue *gfx.UniformError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "projection", ue.Name)
	assert.Equal(t, gfx.UniformMat4, ue.Want)
	assert.Equal(t, gfx.UniformVec4, ue.Got)
	assert.Zero(t, rec.Live())
}

func TestAttributeLocationMismatch(t *testing.T) {
	rec, ctx := newContext()
	rec.Attributes = map[string]int32{"position": 0, "color": 3}

	_, err := gfx.CompileProgram[noUniforms](ctx, testSemantics, "vs", "fs")

	var se *gfx.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, gfx.StageLink, se.Stage)
	assert.Contains(t, se.Log, `"color"`)
	assert.Zero(t, rec.Live())
}

func TestBadInterface(t *testing.T) {
	t.Run("not a uniform", func(t *testing.T) {
		_, ctx := newContext()
		_, err := gfx.CompileProgram[badField](ctx, testSemantics, "vs", "fs")
		var ue *gfx.UniformError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, gfx.BadInterface, ue.Kind)
		assert.Equal(t, "Scale", ue.Field)
	})
	t.Run("unexported", func(t *testing.T) {
		_, ctx := newContext()
		_, err := gfx.CompileProgram[hiddenUniform](ctx, testSemantics, "vs", "fs")
		var ue *gfx.UniformError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, gfx.BadInterface, ue.Kind)
	})
	t.Run("not a struct", func(t *testing.T) {
		rec, ctx := newContext()
		_, err := gfx.CompileProgram[int](ctx, testSemantics, "vs", "fs")
		var ue *gfx.UniformError
		require.ErrorAs(t, err, &ue)
		assert.Zero(t, rec.Live())
	})
}

func TestUniformSetOutsideScopePanics(t *testing.T) {
	rec, ctx := newContext()
	rec.Uniforms = []gfx.UniformInfo{{Name: "time", Type: gfx.UniformFloat}}
	prog := compile[timeUniforms](t, ctx)

	pass := ctx.BeginPass(backBuffer(t, ctx, 4, 3), gfx.PipelineState{})
	sh := gfx.Shade(pass, prog)
	sh.End()

	assert.Panics(t, func() { prog.Interface().Time.Set(sh, 1) })
	require.NoError(t, pass.End())
}

func TestUniformOfOtherProgramPanics(t *testing.T) {
	rec, ctx := newContext()
	rec.Uniforms = []gfx.UniformInfo{{Name: "time", Type: gfx.UniformFloat}}
	a := compile[timeUniforms](t, ctx)
	b := compile[timeUniforms](t, ctx)

	pass := ctx.BeginPass(backBuffer(t, ctx, 4, 3), gfx.PipelineState{})
	sh := gfx.Shade(pass, b)
	assert.Panics(t, func() { a.Interface().Time.Set(sh, 1) })
	sh.End()
	require.NoError(t, pass.End())
}

func TestProgramDestroy(t *testing.T) {
	rec, ctx := newContext()
	prog := compile[noUniforms](t, ctx)
	prog.Destroy()
	prog.Destroy()
	assert.Equal(t, 1, rec.Count("DeleteProgram"))
	assert.Zero(t, rec.Live())
}

func TestCompileReportsDeviceError(t *testing.T) {
	rec, ctx := newContext()
	rec.Compile = func(s gfx.Stage, _ string) (string, bool) {
		if s == gfx.StageFragment {
			rec.Raise(errors.New("GL_INVALID_VALUE"))
		}
		return "", true
	}

	_, err := gfx.CompileProgram[noUniforms](ctx, testSemantics, "vs", "fs")

	var de *gfx.DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "program link", de.Op)
	assert.Zero(t, rec.Live())
}

func TestUnmappedUniformTypeIsMismatch(t *testing.T) {
	rec, ctx := newContext()
	// A mat3 or ivec2 in the shader reports no mapped type.
	rec.Uniforms = []gfx.UniformInfo{{Name: "view", Type: gfx.UniformUnknown}}

	_, err := gfx.CompileProgram[cameraUniforms](ctx, testSemantics, "vs", "fs")

	require.ErrorIs(t, err, gfx.ErrTypeMismatch)
	assert.Zero(t, rec.Live())
}

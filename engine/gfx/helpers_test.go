package gfx_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/hubastard/trisurf/engine/gfx"
	"github.com/hubastard/trisurf/engine/gfx/gfxtest"
	"github.com/stretchr/testify/require"
)

var testSemantics = gfx.MustSemantics(
	gfx.Attribute{Name: "position", Index: 0, Components: 2, Scalar: gfx.Float32},
	gfx.Attribute{Name: "color", Index: 1, Components: 3, Scalar: gfx.Uint8, Normalized: true},
)

type pos [2]float32

func (pos) Semantic() string { return "position" }

func (p pos) AppendAttribute(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(p[0]))
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(p[1]))
}

type rgb [3]uint8

func (rgb) Semantic() string { return "color" }

func (c rgb) AppendAttribute(dst []byte) []byte { return append(dst, c[:]...) }

type normal [3]float32

func (normal) Semantic() string { return "normal" }

func (n normal) AppendAttribute(dst []byte) []byte { return dst }

type vert struct {
	P pos
	C rgb
}

func (vert) VertexAttributes() []string { return []string{"position", "color"} }

func (v vert) AppendVertex(dst []byte) []byte { return v.C.AppendAttribute(v.P.AppendAttribute(dst)) }

// swappedVert has the right size but encodes color first.
type swappedVert struct {
	P pos
	C rgb
}

func (swappedVert) VertexAttributes() []string { return []string{"color", "position"} }

func (v swappedVert) AppendVertex(dst []byte) []byte { return v.P.AppendAttribute(v.C.AppendAttribute(dst)) }

// positionOnly leaves out color.
type positionOnly pos

func (positionOnly) VertexAttributes() []string { return []string{"position"} }

func (p positionOnly) AppendVertex(dst []byte) []byte { return pos(p).AppendAttribute(dst) }

var triangle = []vert{
	{pos{-0.5, -0.5}, rgb{125, 0, 0}},
	{pos{0.5, -0.5}, rgb{0, 125, 0}},
	{pos{0, 0.5}, rgb{0, 0, 125}},
}

type noUniforms struct{}

func newContext() (*gfxtest.Recorder, *gfx.Context) {
	rec := gfxtest.New()
	return rec, gfx.NewContext(rec)
}

func buildTriangle(t *testing.T, ctx *gfx.Context) *gfx.Tess {
	t.Helper()
	tess, err := gfx.NewTessBuilder(ctx, testSemantics).
		SetVertices(gfx.Interleave(triangle)).
		Build()
	require.NoError(t, err)
	return tess
}

func compile[U any](t *testing.T, ctx *gfx.Context) *gfx.Program[U] {
	t.Helper()
	built, err := gfx.CompileProgram[U](ctx, testSemantics, "vs", "fs")
	require.NoError(t, err)
	return built.IgnoreWarnings()
}

func backBuffer(t *testing.T, ctx *gfx.Context, w, h int) gfx.Framebuffer {
	t.Helper()
	fb, err := ctx.BackBuffer(w, h)
	require.NoError(t, err)
	return fb
}

// drawOnce runs one full pass drawing each view.
func drawOnce[U any](t *testing.T, ctx *gfx.Context, prog *gfx.Program[U], views ...gfx.TessView) error {
	t.Helper()
	pass := ctx.BeginPass(backBuffer(t, ctx, 4, 3), gfx.PipelineState{})
	sh := gfx.Shade(pass, prog)
	rg := sh.Render(gfx.RenderState{})
	for _, v := range views {
		rg.DrawView(v)
	}
	rg.End()
	sh.End()
	return pass.End()
}

// Package mesh declares the vertex format shared by the scene's geometry and
// shaders, plus the static geometry itself.
package mesh

import (
	"encoding/binary"
	"math"

	"github.com/hubastard/trisurf/engine/gfx"
)

// VertexSemantics: position is a vec2 at slot 0, color a normalized
// unsigned byte triple at slot 1.
var VertexSemantics = gfx.MustSemantics(
	gfx.Attribute{Name: "position", Index: 0, Components: 2, Scalar: gfx.Float32},
	gfx.Attribute{Name: "color", Index: 1, Components: 3, Scalar: gfx.Uint8, Normalized: true},
)

// VertexPosition is a 2D position.
type VertexPosition [2]float32

func (VertexPosition) Semantic() string { return "position" }

func (p VertexPosition) AppendAttribute(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(p[0]))
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(p[1]))
}

// VertexRGB is an 8-bit color, read as [0, 1] floats by the shader.
type VertexRGB [3]uint8

func (VertexRGB) Semantic() string { return "color" }

func (c VertexRGB) AppendAttribute(dst []byte) []byte { return append(dst, c[0], c[1], c[2]) }

// Vertex is the interleaved record.
type Vertex struct {
	Position VertexPosition
	Color    VertexRGB
}

func (Vertex) VertexAttributes() []string { return []string{"position", "color"} }

func (v Vertex) AppendVertex(dst []byte) []byte {
	dst = v.Position.AppendAttribute(dst)
	return v.Color.AppendAttribute(dst)
}

// Triangle is one half-intensity RGB triangle.
var Triangle = []Vertex{
	{Position: VertexPosition{-0.5, -0.5}, Color: VertexRGB{125, 0, 0}},
	{Position: VertexPosition{0.5, -0.5}, Color: VertexRGB{0, 125, 0}},
	{Position: VertexPosition{0, 0.5}, Color: VertexRGB{0, 0, 125}},
}

// Deinterleaved geometry: two triangles over a position array and a longer
// color array sharing one index list.
var (
	QuadPositions = []VertexPosition{
		{1, -1},
		{1, 1},
		{-1, -1},
		{-1, 1},
		{0, 0},
	}
	QuadColors = []VertexRGB{
		{0, 255, 0},
		{0, 0, 255},
		{255, 0, 0},
		{255, 51, 255},
		{51, 255, 255},
		{51, 51, 255},
	}
	QuadIndices = []uint8{
		0, 1, 2, // First triangle.
		3, 4, 0, // Second triangle.
	}
)

// NewTriangle uploads the interleaved triangle.
func NewTriangle(ctx *gfx.Context) (*gfx.Tess, error) {
	return gfx.NewTessBuilder(ctx, VertexSemantics).
		SetVertices(gfx.Interleave(Triangle)).
		SetMode(gfx.ModeTriangle).
		Build()
}

// NewDeinterleaved uploads the two indexed triangles.
func NewDeinterleaved(ctx *gfx.Context) (*gfx.Tess, error) {
	return gfx.NewTessBuilder(ctx, VertexSemantics).
		SetIndices(gfx.Indices(QuadIndices)).
		SetAttributes(gfx.Attributes(QuadPositions)).
		SetAttributes(gfx.Attributes(QuadColors)).
		SetMode(gfx.ModeTriangle).
		Build()
}

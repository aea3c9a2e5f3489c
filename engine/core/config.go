package core

import "github.com/hubastard/trisurf/engine/colors"

// Geometry layouts the scene can draw.
const (
	GeometryInterleaved   = "interleaved"
	GeometryDeinterleaved = "deinterleaved"
	GeometryBoth          = "both"
)

// Config for the engine run.
type Config struct {
	Title      string
	Width      int
	Height     int
	VSync      bool
	ClearColor [4]float32 // RGBA
	ExitKey    Key

	VertexShader   string // asset name
	FragmentShader string // asset name
	ShaderDir      string // optional directory overriding embedded shaders

	Geometry string
	LogLevel string
}

// DefaultConfig opens a small window with the classic hello-triangle
// settings.
func DefaultConfig() Config {
	return Config{
		Title:          "Hello, world; from OpenGL 3.3!",
		Width:          96,
		Height:         54,
		VSync:          true,
		ClearColor:     colors.Mint,
		ExitKey:        KeyEscape,
		VertexShader:   "simple.vert",
		FragmentShader: "simple.frag",
		Geometry:       GeometryDeinterleaved,
		LogLevel:       "info",
	}
}

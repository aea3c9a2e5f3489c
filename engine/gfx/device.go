package gfx

import "github.com/go-gl/mathgl/mgl32"

// Device is the raw GPU command surface. Every call happens on the thread
// that owns the graphics context, in program order. The gl subpackage
// implements it over OpenGL 3.3 core; gfxtest records it for tests.
type Device interface {
	// Buffers & vertex arrays
	CreateVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	CreateBuffer(kind BufferKind, data []byte) uint32
	DeleteBuffer(buf uint32)
	VertexAttribPointer(index uint32, components int32, scalar ScalarType, normalized bool, stride int32, offset int)

	// Shaders & programs
	CompileShader(stage Stage, src string) (shader uint32, infoLog string, ok bool)
	DeleteShader(shader uint32)
	CreateProgram(shaders ...uint32) uint32
	BindAttribLocation(program, index uint32, name string)
	LinkProgram(program uint32) (infoLog string, ok bool)
	DeleteProgram(program uint32)
	AttribLocation(program uint32, name string) int32
	ActiveUniforms(program uint32) []UniformInfo
	UniformLocation(program uint32, name string) int32
	UseProgram(program uint32)

	// Uniform uploads
	Uniform1f(loc int32, v float32)
	Uniform1i(loc int32, v int32)
	Uniform2f(loc int32, v mgl32.Vec2)
	Uniform3f(loc int32, v mgl32.Vec3)
	Uniform4f(loc int32, v mgl32.Vec4)
	UniformMatrix4f(loc int32, m mgl32.Mat4)

	// Framebuffer & state
	BindFramebuffer(fb uint32)
	Viewport(x, y, w, h int32)
	ClearColor(r, g, b, a float32)
	Clear(color, depth bool)
	SetDepthTest(fn DepthFunc)
	SetBlending(mode Blending)

	// Draws
	DrawArrays(mode Mode, first, count int32)
	DrawElements(mode Mode, count int32, index IndexType, offset int)

	// Err returns and clears the first pending device error, if any.
	Err() error
}

// BufferKind selects the binding point of a buffer object.
type BufferKind uint8

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
)

// ScalarType is the element type of a vertex attribute.
type ScalarType uint8

const (
	Float32 ScalarType = iota
	Uint8
	Uint16
	Uint32
	Int32
)

// Size returns the byte size of one scalar.
func (s ScalarType) Size() int {
	switch s {
	case Uint8:
		return 1
	case Uint16:
		return 2
	default:
		return 4
	}
}

func (s ScalarType) String() string {
	switch s {
	case Float32:
		return "float32"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Int32:
		return "int32"
	default:
		return "unknown"
	}
}

// IndexType is the element type of an index buffer.
type IndexType uint8

const (
	IndexUint8 IndexType = iota
	IndexUint16
	IndexUint32
)

// Size returns the byte size of one index.
func (t IndexType) Size() int {
	switch t {
	case IndexUint8:
		return 1
	case IndexUint16:
		return 2
	default:
		return 4
	}
}

// Stage identifies a step of program construction.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
	StageLink
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageLink:
		return "link"
	default:
		return "unknown"
	}
}

// UniformType is the GLSL type of an active uniform.
type UniformType uint8

const (
	UniformUnknown UniformType = iota
	UniformFloat
	UniformInt
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat4
)

func (t UniformType) String() string {
	switch t {
	case UniformFloat:
		return "float"
	case UniformInt:
		return "int"
	case UniformVec2:
		return "vec2"
	case UniformVec3:
		return "vec3"
	case UniformVec4:
		return "vec4"
	case UniformMat4:
		return "mat4"
	default:
		return "unknown"
	}
}

// UniformInfo describes one active uniform of a linked program.
type UniformInfo struct {
	Name string
	Type UniformType
}

package glbackend

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/trisurf/engine/gfx"
)

// Device implements gfx.Device on OpenGL 3.3 core. The GL context must be
// current on the calling thread and gl.Init must have run.
type Device struct{}

func NewDevice() *Device { return &Device{} }

var _ gfx.Device = (*Device)(nil)

// Info reports the driver strings.
func (d *Device) Info() (vendor, renderer, version string) {
	return gl.GoStr(gl.GetString(gl.VENDOR)), gl.GoStr(gl.GetString(gl.RENDERER)), gl.GoStr(gl.GetString(gl.VERSION))
}

// --- Buffers & vertex arrays ---

func (d *Device) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

// CreateBuffer uploads data as a static buffer and leaves it bound, so the
// attribute pointers (or the VAO's element binding) that follow refer to it.
func (d *Device) CreateBuffer(kind gfx.BufferKind, data []byte) uint32 {
	target := uint32(gl.ARRAY_BUFFER)
	if kind == gfx.IndexBuffer {
		target = gl.ELEMENT_ARRAY_BUFFER
	}
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(target, buf)
	if len(data) == 0 {
		gl.BufferData(target, 0, nil, gl.STATIC_DRAW)
	} else {
		gl.BufferData(target, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	}
	return buf
}

func (d *Device) DeleteBuffer(buf uint32) { gl.DeleteBuffers(1, &buf) }

func (d *Device) VertexAttribPointer(index uint32, components int32, scalar gfx.ScalarType, normalized bool, stride int32, offset int) {
	gl.EnableVertexAttribArray(index)
	if scalar != gfx.Float32 && !normalized {
		// Integral attributes reach the shader as ivec/uvec.
		gl.VertexAttribIPointerWithOffset(index, components, glScalar(scalar), stride, uintptr(offset))
		return
	}
	gl.VertexAttribPointerWithOffset(index, components, glScalar(scalar), normalized, stride, uintptr(offset))
}

// --- Shaders & programs ---

func (d *Device) CompileShader(stage gfx.Stage, src string) (uint32, string, bool) {
	shaderType := uint32(gl.VERTEX_SHADER)
	if stage == gfx.StageFragment {
		shaderType = gl.FRAGMENT_SHADER
	}
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(terminate(src))
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	log := shaderLog(sh)
	if status == gl.FALSE {
		gl.DeleteShader(sh)
		return 0, log, false
	}
	return sh, log, true
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram(shaders ...uint32) uint32 {
	prog := gl.CreateProgram()
	for _, sh := range shaders {
		gl.AttachShader(prog, sh)
	}
	return prog
}

func (d *Device) BindAttribLocation(program, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(terminate(name)))
}

func (d *Device) LinkProgram(program uint32) (string, bool) {
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return programLog(program), status != gl.FALSE
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(terminate(name)))
}

func (d *Device) ActiveUniforms(program uint32) []gfx.UniformInfo {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	if count == 0 || maxLen == 0 {
		return nil
	}
	out := make([]gfx.UniformInfo, 0, count)
	buf := make([]uint8, maxLen)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, uint32(i), maxLen, &length, &size, &xtype, &buf[0])
		name := strings.TrimSuffix(string(buf[:length]), "[0]")
		out = append(out, gfx.UniformInfo{Name: name, Type: uniformType(xtype)})
	}
	return out
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(terminate(name)))
}

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

// --- Uniform uploads ---

func (d *Device) Uniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }

func (d *Device) Uniform1i(loc int32, v int32) { gl.Uniform1i(loc, v) }

func (d *Device) Uniform2f(loc int32, v mgl32.Vec2) { gl.Uniform2f(loc, v[0], v[1]) }

func (d *Device) Uniform3f(loc int32, v mgl32.Vec3) { gl.Uniform3f(loc, v[0], v[1], v[2]) }

func (d *Device) Uniform4f(loc int32, v mgl32.Vec4) { gl.Uniform4f(loc, v[0], v[1], v[2], v[3]) }

func (d *Device) UniformMatrix4f(loc int32, m mgl32.Mat4) { gl.UniformMatrix4fv(loc, 1, false, &m[0]) }

// --- Framebuffer & state ---

func (d *Device) BindFramebuffer(fb uint32) { gl.BindFramebuffer(gl.FRAMEBUFFER, fb) }

func (d *Device) Viewport(x, y, w, h int32) { gl.Viewport(x, y, w, h) }

func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *Device) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(mask)
}

func (d *Device) SetDepthTest(fn gfx.DepthFunc) {
	switch fn {
	case gfx.DepthOff:
		gl.Disable(gl.DEPTH_TEST)
		return
	case gfx.DepthLessOrEqual:
		gl.DepthFunc(gl.LEQUAL)
	case gfx.DepthAlways:
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.DepthFunc(gl.LESS)
	}
	gl.Enable(gl.DEPTH_TEST)
}

func (d *Device) SetBlending(mode gfx.Blending) {
	switch mode {
	case gfx.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	case gfx.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE)
	default:
		gl.Disable(gl.BLEND)
	}
}

// --- Draws ---

func (d *Device) DrawArrays(mode gfx.Mode, first, count int32) {
	gl.DrawArrays(glMode(mode), first, count)
}

func (d *Device) DrawElements(mode gfx.Mode, count int32, index gfx.IndexType, offset int) {
	gl.DrawElementsWithOffset(glMode(mode), count, glIndex(index), uintptr(offset))
}

// Err drains the GL error queue and returns the first error.
func (d *Device) Err() error {
	var first uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == 0 {
			first = code
		}
	}
	if first == 0 {
		return nil
	}
	return fmt.Errorf("gl error %s", errorName(first))
}

// --- helpers ---

func terminate(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func shaderLog(sh uint32) string {
	var logLen int32
	gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
	if logLen <= 1 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen))
	gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func programLog(prog uint32) string {
	var logLen int32
	gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
	if logLen <= 1 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen))
	gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func glScalar(s gfx.ScalarType) uint32 {
	switch s {
	case gfx.Uint8:
		return gl.UNSIGNED_BYTE
	case gfx.Uint16:
		return gl.UNSIGNED_SHORT
	case gfx.Uint32:
		return gl.UNSIGNED_INT
	case gfx.Int32:
		return gl.INT
	default:
		return gl.FLOAT
	}
}

func glIndex(t gfx.IndexType) uint32 {
	switch t {
	case gfx.IndexUint8:
		return gl.UNSIGNED_BYTE
	case gfx.IndexUint16:
		return gl.UNSIGNED_SHORT
	default:
		return gl.UNSIGNED_INT
	}
}

func glMode(m gfx.Mode) uint32 {
	switch m {
	case gfx.ModeTriangleStrip:
		return gl.TRIANGLE_STRIP
	case gfx.ModeTriangleFan:
		return gl.TRIANGLE_FAN
	case gfx.ModeLine:
		return gl.LINES
	case gfx.ModeLineStrip:
		return gl.LINE_STRIP
	case gfx.ModePoint:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func uniformType(xtype uint32) gfx.UniformType {
	switch xtype {
	case gl.FLOAT:
		return gfx.UniformFloat
	case gl.INT, gl.BOOL, gl.SAMPLER_2D:
		return gfx.UniformInt
	case gl.FLOAT_VEC2:
		return gfx.UniformVec2
	case gl.FLOAT_VEC3:
		return gfx.UniformVec3
	case gl.FLOAT_VEC4:
		return gfx.UniformVec4
	case gl.FLOAT_MAT4:
		return gfx.UniformMat4
	default:
		return gfx.UniformUnknown
	}
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("0x%x", code)
	}
}

package scene

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/trisurf/engine/assets"
	"github.com/hubastard/trisurf/engine/core"
	"github.com/hubastard/trisurf/engine/gfx"
	"github.com/hubastard/trisurf/engine/mesh"
)

// ShaderInterface is the uniform set every scene program may use. Both
// matrices are unbound: a shader that ignores them still links.
type ShaderInterface struct {
	Projection gfx.Uniform[mgl32.Mat4] `uniform:"projection,unbound"`
	View       gfx.Uniform[mgl32.Mat4] `uniform:"view,unbound"`
}

// Scene holds the GPU resources of the hard-coded scene.
type Scene struct {
	Camera  *Camera
	Program *gfx.Program[ShaderInterface]
	Tesses  []*gfx.Tess

	clear [4]float32
}

// Load compiles the configured shaders and uploads the configured geometry.
func Load(ctx *gfx.Context, cfg core.Config, log *slog.Logger) (*Scene, error) {
	if log == nil {
		log = slog.Default()
	}
	vs, err := assets.LoadShader(cfg.ShaderDir, cfg.VertexShader)
	if err != nil {
		return nil, err
	}
	fs, err := assets.LoadShader(cfg.ShaderDir, cfg.FragmentShader)
	if err != nil {
		return nil, err
	}

	built, err := gfx.CompileProgram[ShaderInterface](ctx, mesh.VertexSemantics, vs, fs)
	if err != nil {
		return nil, fmt.Errorf("compile shader program: %w", err)
	}
	for _, w := range built.Warnings {
		log.Debug("shader warning ignored", "warning", w.String())
	}

	s := &Scene{
		Camera:  NewCamera(cfg.Width, cfg.Height),
		Program: built.IgnoreWarnings(),
		clear:   cfg.ClearColor,
	}

	var builders []func(*gfx.Context) (*gfx.Tess, error)
	switch cfg.Geometry {
	case core.GeometryDeinterleaved:
		builders = append(builders, mesh.NewDeinterleaved)
	case core.GeometryBoth:
		builders = append(builders, mesh.NewDeinterleaved, mesh.NewTriangle)
	default:
		builders = append(builders, mesh.NewTriangle)
	}
	for _, build := range builders {
		t, err := build(ctx)
		if err != nil {
			s.Destroy()
			return nil, fmt.Errorf("build geometry: %w", err)
		}
		s.Tesses = append(s.Tesses, t)
	}
	return s, nil
}

// Frame describes the scene to the frame driver.
func (s *Scene) Frame() core.Scene[ShaderInterface] {
	return core.Scene[ShaderInterface]{
		Program:  s.Program,
		Tesses:   s.Tesses,
		Pipeline: gfx.DefaultPipelineState().WithClearColor(s.clear),
		Render:   gfx.RenderState{},
		Uniforms: s.setUniforms,
		Resized:  s.Camera.SetViewportPixels,
	}
}

// The camera does not move; its matrices change only when the aspect does.
func (s *Scene) setUniforms(w gfx.UniformWriter, u *ShaderInterface) {
	u.Projection.Set(w, s.Camera.Projection())
	u.View.Set(w, s.Camera.View())
}

// Destroy releases geometry, then the program.
func (s *Scene) Destroy() {
	for _, t := range s.Tesses {
		t.Destroy()
	}
	s.Tesses = nil
	s.Program.Destroy()
}

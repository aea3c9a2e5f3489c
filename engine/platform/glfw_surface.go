package platform

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/trisurf/engine/core"
	"github.com/hubastard/trisurf/engine/gfx"
	glbackend "github.com/hubastard/trisurf/engine/gfx/gl"
)

// GLFWSurface implements core.Surface. Callbacks append to an event queue
// that Events drains after a non-blocking poll.
type GLFWSurface struct {
	w      *glfw.Window
	ctx    *gfx.Context
	queue  []core.Event
	closed bool
}

// Must be called on main thread before any GL calls.
func NewGLFWSurface(cfg core.Config, log *slog.Logger) (*GLFWSurface, error) {
	if log == nil {
		log = slog.Default()
	}
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	// GL 3.3 core profile (Mac requires forward-compatible flag).
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 0)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	dev := glbackend.NewDevice()
	vendor, renderer, version := dev.Info()
	log.Info("graphics surface created", "vendor", vendor, "renderer", renderer, "version", version)

	s := &GLFWSurface{w: win, ctx: gfx.NewContext(dev)}
	s.ctx.SetLogger(log)

	// Callbacks -> translate to core.Event
	win.SetCloseCallback(func(*glfw.Window) { s.push(core.EventCloseRequested{}) })
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		s.push(core.EventResize{W: w, H: h})
	})
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		s.push(core.EventMouseMove{X: x, Y: y})
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		k := translateKey(key)
		s.push(core.EventKey{
			Key:      k,
			Name:     keyLabel(k, key, glfw.GetKeyName(key, scancode)),
			Scancode: scancode,
			Action:   translateAction(action),
			Mods:     translateMods(mods),
		})
	})

	return s, nil
}

func (s *GLFWSurface) push(ev core.Event) { s.queue = append(s.queue, ev) }

// Context returns the graphics context bound to this window.
func (s *GLFWSurface) Context() *gfx.Context { return s.ctx }

// Events polls the platform once and yields the queued events, removing
// each as it is consumed. Events that arrive while iterating are kept for
// the next call.
func (s *GLFWSurface) Events() iter.Seq[core.Event] {
	if !s.closed {
		glfw.PollEvents()
	}
	return func(yield func(core.Event) bool) {
		n := len(s.queue)
		i := 0
		defer func() {
			s.queue = append(s.queue[:0], s.queue[i:]...)
		}()
		for i < n {
			ev := s.queue[i]
			i++
			if !yield(ev) {
				return
			}
		}
	}
}

// BackBuffer returns the default framebuffer at the current size.
func (s *GLFWSurface) BackBuffer() (gfx.Framebuffer, error) {
	if s.closed {
		return gfx.Framebuffer{}, errors.New("surface destroyed")
	}
	w, h := s.w.GetFramebufferSize()
	return s.ctx.BackBuffer(w, h)
}

func (s *GLFWSurface) SwapBuffers() { s.w.SwapBuffers() }

// Destroy closes the window and terminates GLFW.
func (s *GLFWSurface) Destroy() {
	if s.closed {
		return
	}
	s.closed = true
	s.w.Destroy()
	glfw.Terminate()
}

func translateKey(k glfw.Key) core.Key {
	switch k {
	case glfw.KeyEscape:
		return core.KeyEscape
	case glfw.KeySpace:
		return core.KeySpace
	case glfw.KeyEnter:
		return core.KeyEnter
	case glfw.KeyTab:
		return core.KeyTab
	case glfw.KeyW:
		return core.KeyW
	case glfw.KeyA:
		return core.KeyA
	case glfw.KeyS:
		return core.KeyS
	case glfw.KeyD:
		return core.KeyD
	case glfw.KeyQ:
		return core.KeyQ
	case glfw.KeyP:
		return core.KeyP
	case glfw.KeyF11:
		return core.KeyF11
	default:
		return core.KeyUnknown
	}
}

var namedKeys = map[glfw.Key]string{
	glfw.KeyLeft:         "left",
	glfw.KeyRight:        "right",
	glfw.KeyUp:           "up",
	glfw.KeyDown:         "down",
	glfw.KeyBackspace:    "backspace",
	glfw.KeyDelete:       "delete",
	glfw.KeyInsert:       "insert",
	glfw.KeyHome:         "home",
	glfw.KeyEnd:          "end",
	glfw.KeyPageUp:       "pageup",
	glfw.KeyPageDown:     "pagedown",
	glfw.KeyCapsLock:     "capslock",
	glfw.KeyLeftShift:    "lshift",
	glfw.KeyRightShift:   "rshift",
	glfw.KeyLeftControl:  "lctrl",
	glfw.KeyRightControl: "rctrl",
	glfw.KeyLeftAlt:      "lalt",
	glfw.KeyRightAlt:     "ralt",
	glfw.KeyLeftSuper:    "lsuper",
	glfw.KeyRightSuper:   "rsuper",
	glfw.KeyF1:           "f1",
	glfw.KeyF2:           "f2",
	glfw.KeyF3:           "f3",
	glfw.KeyF4:           "f4",
	glfw.KeyF5:           "f5",
	glfw.KeyF6:           "f6",
	glfw.KeyF7:           "f7",
	glfw.KeyF8:           "f8",
	glfw.KeyF9:           "f9",
	glfw.KeyF10:          "f10",
	glfw.KeyF12:          "f12",
}

// keyLabel names a key for logs. printable is glfw's layout-aware name,
// empty for non-printable keys.
func keyLabel(k core.Key, raw glfw.Key, printable string) string {
	if k != core.KeyUnknown {
		return k.String()
	}
	if printable != "" {
		return strings.ToLower(printable)
	}
	if n, ok := namedKeys[raw]; ok {
		return n
	}
	return fmt.Sprintf("key%d", int(raw))
}

func translateAction(a glfw.Action) core.Action {
	switch a {
	case glfw.Press:
		return core.ActionPress
	case glfw.Repeat:
		return core.ActionRepeat
	default:
		return core.ActionRelease
	}
}

func translateMods(m glfw.ModifierKey) core.Mod {
	var out core.Mod
	if m&glfw.ModShift != 0 {
		out |= core.ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= core.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		out |= core.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		out |= core.ModSuper
	}
	return out
}

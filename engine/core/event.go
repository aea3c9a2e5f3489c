package core

import "strings"

// Event model. Surfaces translate platform callbacks into these values.
type Event interface{ isEvent() }

// EventCloseRequested is sent when the user asks to close the window.
type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

// EventResize reports a new framebuffer size in pixels.
type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

// EventKey reports a key transition. Name is the platform's name for the
// key and is set even when Key is KeyUnknown.
type EventKey struct {
	Key      Key
	Name     string
	Scancode int
	Action   Action
	Mods     Mod
}

func (EventKey) isEvent() {}

type EventMouseMove struct{ X, Y float64 }

func (EventMouseMove) isEvent() {}

// Action is what happened to a key.
type Action int

const (
	ActionRelease Action = iota
	ActionPress
	ActionRepeat
)

func (a Action) String() string {
	switch a {
	case ActionRelease:
		return "release"
	case ActionPress:
		return "press"
	case ActionRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// Key/mod enums (subset; add as needed).
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyEnter
	KeyTab
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyP
	KeyF11
)

var keyNames = map[Key]string{
	KeyUnknown: "unknown",
	KeyEscape:  "escape",
	KeySpace:   "space",
	KeyEnter:   "enter",
	KeyTab:     "tab",
	KeyW:       "w",
	KeyA:       "a",
	KeyS:       "s",
	KeyD:       "d",
	KeyQ:       "q",
	KeyP:       "p",
	KeyF11:     "f11",
}

func (k Key) String() string {
	if n, ok := keyNames[k]; ok {
		return n
	}
	return "unknown"
}

// ParseKey maps a key name (case-insensitive) to a Key.
func ParseKey(name string) (Key, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range keyNames {
		if n == name && k != KeyUnknown {
			return k, true
		}
	}
	return KeyUnknown, false
}

type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)
